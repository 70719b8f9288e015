package domain

import (
	"context"
)

//go:generate mockgen -destination mocks/mock_template_loader.go -package mocks github.com/Notifuse/ampmailer/internal/domain TemplateLoader

// Template file names looked up in the templates directory
const (
	AMPTemplateFile          = "AMP_Template.html"
	FallbackTemplateFile     = "Fallback_Template.html"
	FallbackTemplateMJMLFile = "Fallback_Template.mjml"
)

// TemplateSet is the pair of templates one generation pass works on.
// A missing template is reported through its Found flag and left empty.
type TemplateSet struct {
	AMP           string `json:"-"`
	Fallback      string `json:"-"`
	AMPFound      bool   `json:"amp_found"`
	FallbackFound bool   `json:"fallback_found"`
}

// Complete reports whether both templates were found
func (t *TemplateSet) Complete() bool {
	return t != nil && t.AMPFound && t.FallbackFound
}

// TemplateLoader supplies the AMP and fallback templates
type TemplateLoader interface {
	Load(ctx context.Context) (*TemplateSet, error)
}
