package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextInputs_WithDefaults(t *testing.T) {
	in := TextInputs{
		CTAURL:           "  ",
		QuizQuestion:     "Pick one",
		QuizOptionLabels: [4]string{"A", "", "C", ""},
	}

	out := in.WithDefaults()

	assert.Equal(t, DefaultCTAURL, out.CTAURL)
	assert.Equal(t, "Pick one", out.QuizQuestion)
	assert.Equal(t, [4]string{"A", "Modern", "C", "Bold"}, out.QuizOptionLabels)
	// the receiver is a copy
	assert.Equal(t, "  ", in.CTAURL)
}

func TestTextInputs_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(t *TextInputs)
		wantErr bool
	}{
		{name: "defaults", mutate: func(t *TextInputs) {}},
		{name: "custom cta", mutate: func(t *TextInputs) { t.CTAURL = "https://shop.example/sale" }},
		{name: "bad cta", mutate: func(t *TextInputs) { t.CTAURL = "not a url" }, wantErr: true},
		{name: "marker in label", mutate: func(t *TextInputs) { t.QuizOptionLabels[2] = "{{cta_url}}" }, wantErr: true},
		{name: "marker in question", mutate: func(t *TextInputs) { t.QuizQuestion = "{{x}}" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultTextInputs()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerationRequest_Upload(t *testing.T) {
	req := GenerationRequest{
		Uploads: map[SlotID]*ImageUpload{
			SlotLogo: {Filename: "logo.png", Data: []byte{1}},
			SlotHero: {Filename: "empty.png"},
		},
	}

	assert.NotNil(t, req.Upload(SlotLogo))
	assert.Nil(t, req.Upload(SlotHero))
	assert.Nil(t, GenerationRequest{}.Upload(SlotLogo))
}

func TestGenerationRequest_Validate(t *testing.T) {
	req := GenerationRequest{
		Text: DefaultTextInputs(),
		Uploads: map[SlotID]*ImageUpload{
			SlotHero: {Data: make([]byte, MaxUploadSize+1)},
		},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hero upload exceeds")

	req.Uploads = nil
	assert.NoError(t, req.Validate())
}
