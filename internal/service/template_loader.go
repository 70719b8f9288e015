package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	mjmlgo "github.com/Boostport/mjml-go"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/pkg/logger"
)

// mjmlCompileFunc compiles MJML markup to HTML
type mjmlCompileFunc func(ctx context.Context, mjml string) (string, error)

// FileTemplateLoader reads the templates from a directory on every Load.
// The fallback may be authored as HTML or as MJML, HTML taking precedence.
type FileTemplateLoader struct {
	dir     string
	compile mjmlCompileFunc
	logger  logger.Logger
}

// NewFileTemplateLoader creates a loader for dir
func NewFileTemplateLoader(dir string, logger logger.Logger) *FileTemplateLoader {
	return &FileTemplateLoader{
		dir: dir,
		compile: func(ctx context.Context, mjml string) (string, error) {
			return mjmlgo.ToHTML(ctx, mjml)
		},
		logger: logger,
	}
}

// Load returns the template set. Missing files only clear the Found flags;
// an error means a file exists but could not be read or compiled, in which
// case the set still carries whatever was loaded.
func (l *FileTemplateLoader) Load(ctx context.Context) (*domain.TemplateSet, error) {
	set := &domain.TemplateSet{}
	var errs []error

	amp, found, err := l.read(domain.AMPTemplateFile)
	if err != nil {
		errs = append(errs, err)
	}
	set.AMP, set.AMPFound = amp, found

	fallback, found, err := l.read(domain.FallbackTemplateFile)
	if err != nil {
		errs = append(errs, err)
	}
	if found {
		set.Fallback, set.FallbackFound = fallback, true
	} else if err == nil {
		source, mjmlFound, err := l.read(domain.FallbackTemplateMJMLFile)
		if err != nil {
			errs = append(errs, err)
		}
		if mjmlFound {
			html, err := l.compile(ctx, source)
			if err != nil {
				l.logger.WithField("file", domain.FallbackTemplateMJMLFile).Error(fmt.Sprintf("Failed to compile MJML fallback: %v", err))
				errs = append(errs, fmt.Errorf("failed to compile %s: %w", domain.FallbackTemplateMJMLFile, err))
			} else {
				set.Fallback, set.FallbackFound = html, true
			}
		}
	}

	if !set.AMPFound {
		l.logger.WithField("dir", l.dir).Warn(fmt.Sprintf("%s not found", domain.AMPTemplateFile))
	}
	if !set.FallbackFound {
		l.logger.WithField("dir", l.dir).Warn("Fallback template not found")
	}

	return set, errors.Join(errs...)
}

func (l *FileTemplateLoader) read(name string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), true, nil
}
