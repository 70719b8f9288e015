package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/ampdoc"
	"github.com/Notifuse/ampmailer/pkg/emailerror"
	"github.com/Notifuse/ampmailer/pkg/imagedim"
	"github.com/Notifuse/ampmailer/pkg/logger"
	"github.com/Notifuse/ampmailer/pkg/tracing"
)

// DiagnosticIdentifier is the public id of the hosting test pixel
const DiagnosticIdentifier = "diag-pixel"

const (
	defaultSendListLimit = 20
	maxSendListLimit     = 100
)

// SendSettings carries the sender identity and send limits
type SendSettings struct {
	From             domain.Sender
	DefaultRecipient string
	Timeout          time.Duration
	// Missing lists settings the send strategy still needs; sending is
	// refused while it is not empty
	Missing []string
}

// GeneratorService implements domain.GeneratorService
type GeneratorService struct {
	templates  domain.TemplateLoader
	resolver   *AssetResolver
	host       domain.ImageHost
	sender     domain.EmailSendClient
	sendLog    domain.SendLogRepository
	slots      []domain.ImageSlot
	settings   SendSettings
	classifier *emailerror.Classifier
	logger     logger.Logger
	now        func() time.Time
}

// NewGeneratorService creates the service. host, sender and sendLog may be nil.
func NewGeneratorService(
	templates domain.TemplateLoader,
	resolver *AssetResolver,
	host domain.ImageHost,
	sender domain.EmailSendClient,
	sendLog domain.SendLogRepository,
	slots []domain.ImageSlot,
	settings SendSettings,
	logger logger.Logger,
) (*GeneratorService, error) {
	if err := domain.ValidateSlots(slots); err != nil {
		return nil, fmt.Errorf("invalid image slots: %w", err)
	}
	return &GeneratorService{
		templates:  templates,
		resolver:   resolver,
		host:       host,
		sender:     sender,
		sendLog:    sendLog,
		slots:      slots,
		settings:   settings,
		classifier: emailerror.NewClassifier(),
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *GeneratorService) sendReady() bool {
	return s.sender != nil && len(s.settings.Missing) == 0
}

// Status reports template availability and the configured collaborators
func (s *GeneratorService) Status(ctx context.Context) (*domain.ServiceStatus, error) {
	set, err := s.templates.Load(ctx)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Template loading reported errors: %v", err))
	}
	if set == nil {
		set = &domain.TemplateSet{}
	}

	status := &domain.ServiceStatus{
		AMPTemplateFound:      set.AMPFound,
		FallbackTemplateFound: set.FallbackFound,
		Host:                  domain.HostKindNone,
		SendConfigured:        s.sendReady(),
		DefaultRecipient:      s.settings.DefaultRecipient,
		Slots:                 s.slots,
		Vocabulary:            domain.TokenVocabulary,
	}
	if s.host != nil {
		status.Host = s.host.Kind()
	}
	if s.sender != nil {
		status.SendStrategy = s.sender.Kind()
	}
	return status, nil
}

// Generate runs one generation pass: resolve assets, substitute tokens,
// elide placeholder blocks and check the result
func (s *GeneratorService) Generate(ctx context.Context, req domain.GenerationRequest) (result *domain.GenerationResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "GeneratorService", "Generate")
	defer func() { tracing.EndSpan(span, err) }()

	req, err = s.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	set, notes := s.loadTemplates(ctx)
	return s.render(ctx, req, set, notes)
}

// prepareRequest applies text defaults and runs the checks that need no I/O
func (s *GeneratorService) prepareRequest(req domain.GenerationRequest) (domain.GenerationRequest, error) {
	req.Text = req.Text.WithDefaults()
	if err := req.Validate(); err != nil {
		return req, err
	}
	if err := s.validateUploads(req); err != nil {
		return req, err
	}
	return req, nil
}

// loadTemplates never fails: problems become warning notes and an
// incomplete set
func (s *GeneratorService) loadTemplates(ctx context.Context) (*domain.TemplateSet, []domain.StatusNote) {
	var notes []domain.StatusNote

	set, loadErr := s.templates.Load(ctx)
	if loadErr != nil {
		s.logger.Warn(fmt.Sprintf("Template loading reported errors: %v", loadErr))
		notes = append(notes, domain.StatusNote{Level: domain.NoteLevelWarning, Message: fmt.Sprintf("Template problem: %v", loadErr)})
	}
	if set == nil {
		set = &domain.TemplateSet{}
	}
	if !set.Complete() {
		notes = append(notes, domain.StatusNote{
			Level:   domain.NoteLevelWarning,
			Message: fmt.Sprintf("Templates missing: %s and %s (or %s) must exist. Sending is disabled.", domain.AMPTemplateFile, domain.FallbackTemplateFile, domain.FallbackTemplateMJMLFile),
		})
	}
	return set, notes
}

func (s *GeneratorService) render(ctx context.Context, req domain.GenerationRequest, set *domain.TemplateSet, notes []domain.StatusNote) (*domain.GenerationResult, error) {
	resolutions, err := s.resolver.ResolveAll(ctx, s.slots, req)
	if err != nil {
		return nil, err
	}

	assets := make(map[domain.SlotID]domain.ResolvedAsset, len(resolutions))
	var placeholders []string
	for i, res := range resolutions {
		assets[res.Slot] = res.Asset
		notes = append(notes, res.Note)
		if !res.Real {
			placeholders = append(placeholders, s.slots[i].PlaceholderURL)
		}
	}

	tokens := domain.BuildTokenMapping(req.Text, s.slots, assets).Strings()

	doc := ampdoc.Elide(ampdoc.Substitute(set.AMP, tokens), placeholders)
	fallback := ampdoc.Elide(ampdoc.Substitute(set.Fallback, tokens), placeholders)

	advisories, auditErr := ampdoc.AuditImages(doc)
	if auditErr != nil {
		s.logger.Warn(fmt.Sprintf("Failed to audit images: %v", auditErr))
	}

	unresolved := ampdoc.UnresolvedTokens(doc)
	if len(unresolved) > 0 {
		notes = append(notes, domain.StatusNote{
			Level:   domain.NoteLevelWarning,
			Message: fmt.Sprintf("Unresolved tokens left in the document: %s", strings.Join(unresolved, ", ")),
		})
	}

	result := &domain.GenerationResult{
		Document:              doc,
		Fallback:              fallback,
		Tokens:                tokens,
		Assets:                assets,
		ElidedPlaceholders:    placeholders,
		ConformanceErrors:     ampdoc.CheckConformance(doc),
		Advisories:            advisories,
		UnresolvedTokens:      unresolved,
		Notes:                 notes,
		AMPTemplateFound:      set.AMPFound,
		FallbackTemplateFound: set.FallbackFound,
		CanSend:               set.Complete() && s.sendReady(),
		GeneratedAt:           s.now().UTC(),
	}

	tracing.AddAttribute(ctx, "elided", len(placeholders))
	tracing.AddAttribute(ctx, "conformance_errors", len(result.ConformanceErrors))
	tracing.RecordGeneration(ctx, len(result.ConformanceErrors))
	s.logger.WithFields(map[string]interface{}{
		"conformance_errors": len(result.ConformanceErrors),
		"elided":             len(placeholders),
		"unresolved":         len(unresolved),
	}).Debug("Generated AMP document")

	return result, nil
}

// validateUploads rejects vector uploads for slots that only take raster images
func (s *GeneratorService) validateUploads(req domain.GenerationRequest) error {
	for _, slot := range s.slots {
		u := req.Upload(slot.ID)
		if u == nil || slot.AcceptsVector {
			continue
		}
		if imagedim.Format(u.Data) == "svg" {
			return domain.NewValidationError(fmt.Sprintf("%s does not accept SVG images", slot.ID))
		}
	}
	return nil
}

// Send generates the document and sends it with the configured strategy
func (s *GeneratorService) Send(ctx context.Context, req domain.GenerationRequest, opts domain.SendOptions) (view *domain.SessionView, err error) {
	ctx, span := tracing.StartSpan(ctx, "GeneratorService", "Send")
	defer func() { tracing.EndSpan(span, err) }()

	if s.sender == nil {
		return nil, domain.NewValidationError("email sending is not configured")
	}
	if len(s.settings.Missing) > 0 {
		return nil, domain.NewValidationError(fmt.Sprintf("email sending is missing settings: %s", strings.Join(s.settings.Missing, ", ")))
	}

	to := strings.TrimSpace(opts.To)
	if to == "" {
		to = s.settings.DefaultRecipient
	}
	sendReq := domain.SendEmailRequest{
		From:      s.settings.From,
		To:        to,
		Subject:   strings.TrimSpace(opts.Subject),
		Preheader: strings.TrimSpace(opts.Preheader),
	}
	if err := sendReq.Validate(); err != nil {
		return nil, err
	}
	req, err = s.prepareRequest(req)
	if err != nil {
		return nil, err
	}

	// templates are checked before render so a refused send uploads nothing
	set, notes := s.loadTemplates(ctx)
	if !set.Complete() {
		return nil, domain.ErrTemplatesMissing
	}
	gen, err := s.render(ctx, req, set, notes)
	if err != nil {
		return nil, err
	}
	sendReq.AMPHTML = gen.Document
	sendReq.HTML = gen.Fallback

	sendCtx := ctx
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	started := s.now()
	result, err := s.sender.Send(sendCtx, sendReq)
	if err != nil {
		return nil, err
	}
	tracing.AddAttribute(ctx, "strategy", string(result.Strategy))
	tracing.AddAttribute(ctx, "success", result.Success)
	tracing.RecordSend(ctx, string(result.Strategy), result.Success, float64(s.now().Sub(started).Milliseconds()))

	log := s.logger.WithFields(map[string]interface{}{
		"strategy":    string(result.Strategy),
		"recipient":   result.Recipient,
		"status_code": result.StatusCode,
	})
	if result.Success {
		log.Info("Test email sent")
	} else {
		classified := s.classifier.Classify(errors.New(firstNonEmpty(result.Error, result.Body, "send failed")), result.StatusCode, result.Strategy)
		result.ErrorType = string(classified.Type)
		log.WithField("error_type", result.ErrorType).Warn(fmt.Sprintf("Test email failed: %s", result.Error))
	}

	if s.sendLog != nil {
		entry := domain.NewSendLogEntry(uuid.NewString(), result, sendReq.Subject, documentSHA(gen.Document))
		if err := s.sendLog.Record(ctx, entry); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to record send attempt: %v", err))
		}
	}

	return &domain.SessionView{Generation: gen, LastSend: result}, nil
}

// DiagnoseHosting uploads a 1x1 PNG to the configured host
func (s *GeneratorService) DiagnoseHosting(ctx context.Context) (*domain.HostingDiagnosis, error) {
	diag := &domain.HostingDiagnosis{Host: domain.HostKindNone, Identifier: DiagnosticIdentifier}
	if s.host == nil {
		diag.Error = "no image host configured"
		return diag, nil
	}
	diag.Host = s.host.Kind()

	pixel, err := diagnosticPixel()
	if err != nil {
		return nil, err
	}

	uctx := ctx
	if s.resolver != nil && s.resolver.timeout > 0 {
		var cancel context.CancelFunc
		uctx, cancel = context.WithTimeout(ctx, s.resolver.timeout)
		defer cancel()
	}

	res, err := s.host.Upload(uctx, pixel, DiagnosticIdentifier)
	if err != nil {
		diag.Error = err.Error()
		var te *domain.TransportError
		if errors.As(err, &te) {
			diag.StatusCode = te.StatusCode
			if te.Body != "" {
				diag.Error = fmt.Sprintf("%s: %s", err.Error(), te.Body)
			}
		}
		s.logger.WithField("host", string(diag.Host)).Warn(fmt.Sprintf("Hosting diagnosis failed: %v", err))
		return diag, nil
	}

	diag.Success = true
	diag.URL = res.URL
	diag.Width = res.Width
	diag.Height = res.Height
	return diag, nil
}

// ListSends returns the latest send attempts, newest first
func (s *GeneratorService) ListSends(ctx context.Context, limit int) ([]*domain.SendLogEntry, error) {
	if s.sendLog == nil {
		return []*domain.SendLogEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultSendListLimit
	}
	if limit > maxSendListLimit {
		limit = maxSendListLimit
	}
	entries, err := s.sendLog.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sends: %w", err)
	}
	return entries, nil
}

func documentSHA(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])
}

func diagnosticPixel() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		return nil, fmt.Errorf("failed to encode diagnostic pixel: %w", err)
	}
	return buf.Bytes(), nil
}
