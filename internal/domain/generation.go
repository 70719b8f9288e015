package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/Notifuse/ampmailer/pkg/ampdoc"
	"github.com/asaskevich/govalidator"
)

// Default text inputs used when the corresponding field is left blank
const (
	DefaultCTAURL       = "https://example.com"
	DefaultQuizQuestion = "Which style do you like most?"
)

// DefaultQuizOptionLabels are the four quiz option labels used by default
var DefaultQuizOptionLabels = [4]string{"Classic", "Modern", "Minimal", "Bold"}

// TextInputs holds the free-text fields of a generation request
type TextInputs struct {
	CTAURL           string    `json:"cta_url"`
	QuizQuestion     string    `json:"quiz_question"`
	QuizOptionLabels [4]string `json:"quiz_option_labels"`
}

// DefaultTextInputs returns the text inputs a blank form starts from
func DefaultTextInputs() TextInputs {
	return TextInputs{
		CTAURL:           DefaultCTAURL,
		QuizQuestion:     DefaultQuizQuestion,
		QuizOptionLabels: DefaultQuizOptionLabels,
	}
}

// WithDefaults fills blank fields with their defaults
func (t TextInputs) WithDefaults() TextInputs {
	def := DefaultTextInputs()
	if strings.TrimSpace(t.CTAURL) == "" {
		t.CTAURL = def.CTAURL
	}
	if strings.TrimSpace(t.QuizQuestion) == "" {
		t.QuizQuestion = def.QuizQuestion
	}
	for i := range t.QuizOptionLabels {
		if strings.TrimSpace(t.QuizOptionLabels[i]) == "" {
			t.QuizOptionLabels[i] = def.QuizOptionLabels[i]
		}
	}
	return t
}

// Validate checks the text inputs after defaults have been applied
func (t TextInputs) Validate() error {
	if !govalidator.IsURL(t.CTAURL) {
		return NewValidationError(fmt.Sprintf("cta_url is not a valid url: %q", t.CTAURL))
	}
	for i, label := range t.QuizOptionLabels {
		if strings.Contains(label, "{{") {
			return NewValidationError(fmt.Sprintf("quiz option %d must not contain template markers", i+1))
		}
	}
	if strings.Contains(t.QuizQuestion, "{{") || strings.Contains(t.CTAURL, "{{") {
		return NewValidationError("text inputs must not contain template markers")
	}
	return nil
}

// ImageUpload is an image file supplied for a slot
type ImageUpload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// GenerationRequest is the immutable input of one generation pass
type GenerationRequest struct {
	Text    TextInputs
	Uploads map[SlotID]*ImageUpload
}

// Upload returns the upload for slot or nil when none was supplied
func (r GenerationRequest) Upload(slot SlotID) *ImageUpload {
	if r.Uploads == nil {
		return nil
	}
	u := r.Uploads[slot]
	if u == nil || len(u.Data) == 0 {
		return nil
	}
	return u
}

// NoteLevel classifies a status note
type NoteLevel string

const (
	NoteLevelSuccess NoteLevel = "success"
	NoteLevelWarning NoteLevel = "warning"
	NoteLevelInfo    NoteLevel = "info"
)

// StatusNote is a user-facing message emitted while resolving a slot
type StatusNote struct {
	Slot    SlotID    `json:"slot"`
	Level   NoteLevel `json:"level"`
	Message string    `json:"message"`
}

// SlotResolution is the outcome of resolving one image slot
type SlotResolution struct {
	Slot   SlotID        `json:"slot"`
	Asset  ResolvedAsset `json:"asset"`
	Real   bool          `json:"real"`
	Hosted bool          `json:"hosted"`
	Note   StatusNote    `json:"note"`
}

// GenerationResult is the output of one generation pass
type GenerationResult struct {
	Document              string                   `json:"document"`
	Fallback              string                   `json:"fallback"`
	Tokens                map[string]string        `json:"tokens"`
	Assets                map[SlotID]ResolvedAsset `json:"assets"`
	ElidedPlaceholders    []string                 `json:"elided_placeholders,omitempty"`
	ConformanceErrors     []string                 `json:"conformance_errors"`
	Advisories            []ampdoc.ImageAdvisory   `json:"advisories,omitempty"`
	UnresolvedTokens      []string                 `json:"unresolved_tokens,omitempty"`
	Notes                 []StatusNote             `json:"notes"`
	AMPTemplateFound      bool                     `json:"amp_template_found"`
	FallbackTemplateFound bool                     `json:"fallback_template_found"`
	CanSend               bool                     `json:"can_send"`
	GeneratedAt           time.Time                `json:"generated_at"`
}

// SessionView is what the API hands back to the client: the latest
// generation and, after a send, its outcome
type SessionView struct {
	Generation *GenerationResult `json:"generation"`
	LastSend   *SendResult       `json:"last_send,omitempty"`
}

// MaxUploadSize caps the size of one image upload
const MaxUploadSize = 10 << 20

// Validate checks the text inputs and upload sizes
func (r GenerationRequest) Validate() error {
	if err := r.Text.Validate(); err != nil {
		return err
	}
	for slot, u := range r.Uploads {
		if u != nil && len(u.Data) > MaxUploadSize {
			return NewValidationError(fmt.Sprintf("%s upload exceeds %d bytes", slot, MaxUploadSize))
		}
	}
	return nil
}
