// Command ampgen builds an AMP email from the templates directory without
// running the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Notifuse/ampmailer/config"
	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/internal/service"
	"github.com/Notifuse/ampmailer/pkg/cache"
	"github.com/Notifuse/ampmailer/pkg/logger"
	"github.com/Notifuse/ampmailer/pkg/tracing"
)

type options struct {
	templatesDir string
	images       map[domain.SlotID]*string
	text         domain.TextInputs
	out          string
	fallbackOut  string
	upload       bool
	strict       bool
	logLevel     string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{images: make(map[domain.SlotID]*string)}

	fs := flag.NewFlagSet("ampgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.templatesDir, "templates", "templates", "directory holding AMP_Template.html and the fallback template")
	for _, slot := range domain.DefaultSlots {
		opts.images[slot.ID] = fs.String(string(slot.ID), "", fmt.Sprintf("image file for the %s slot", slot.ID))
	}
	fs.StringVar(&opts.text.CTAURL, "cta-url", "", "call-to-action link")
	fs.StringVar(&opts.text.QuizQuestion, "question", "", "quiz question")
	for i := range opts.text.QuizOptionLabels {
		fs.StringVar(&opts.text.QuizOptionLabels[i], fmt.Sprintf("opt%d", i+1), "", fmt.Sprintf("label of quiz option %d", i+1))
	}
	fs.StringVar(&opts.out, "out", "amp.html", `output file for the AMP document, "-" for stdout`)
	fs.StringVar(&opts.fallbackOut, "fallback-out", "", "output file for the HTML fallback")
	fs.BoolVar(&opts.upload, "upload", false, "upload images to the host configured in the environment")
	fs.BoolVar(&opts.strict, "strict", false, "exit with an error when the document fails the conformance check")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func readUploads(images map[domain.SlotID]*string) (map[domain.SlotID]*domain.ImageUpload, error) {
	uploads := make(map[domain.SlotID]*domain.ImageUpload)
	for slot, path := range images {
		if *path == "" {
			continue
		}
		data, err := os.ReadFile(*path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s image: %w", slot, err)
		}
		uploads[slot] = &domain.ImageUpload{
			Filename:    *path,
			ContentType: http.DetectContentType(data),
			Data:        data,
		}
	}
	return uploads, nil
}

func newImageHost(ctx context.Context, log logger.Logger) (domain.ImageHost, time.Duration, time.Duration, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load configuration: %w", err)
	}
	host, err := service.NewImageHost(ctx, cfg.Hosting, tracing.NewHTTPClient(cfg.Hosting.Timeout), log)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create image host: %w", err)
	}
	return host, cfg.Hosting.CacheTTL, cfg.Hosting.Timeout, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log := logger.NewLoggerWithWriter(stderr, opts.logLevel)

	uploads, err := readUploads(opts.images)
	if err != nil {
		return err
	}

	var host domain.ImageHost
	cacheTTL, timeout := time.Hour, 15*time.Second
	if opts.upload {
		host, cacheTTL, timeout, err = newImageHost(ctx, log)
		if err != nil {
			return err
		}
	}

	uploadCache := cache.NewTTLCache[*domain.UploadResult](time.Minute)
	defer uploadCache.Stop()

	generator, err := service.NewGeneratorService(
		service.NewFileTemplateLoader(opts.templatesDir, log),
		service.NewAssetResolver(host, uploadCache, cacheTTL, timeout, log),
		host,
		nil,
		nil,
		domain.DefaultSlots,
		service.SendSettings{},
		log,
	)
	if err != nil {
		return err
	}

	result, err := generator.Generate(ctx, domain.GenerationRequest{Text: opts.text, Uploads: uploads})
	if err != nil {
		return err
	}

	report(stderr, result)

	if !result.AMPTemplateFound {
		return fmt.Errorf("%s not found in %s", domain.AMPTemplateFile, opts.templatesDir)
	}
	if err := writeOutput(opts.out, result.Document, stdout); err != nil {
		return err
	}
	if opts.fallbackOut != "" && result.FallbackTemplateFound {
		if err := writeOutput(opts.fallbackOut, result.Fallback, stdout); err != nil {
			return err
		}
	}

	if opts.strict && len(result.ConformanceErrors) > 0 {
		return fmt.Errorf("document failed the conformance check with %d error(s)", len(result.ConformanceErrors))
	}
	return nil
}

func report(w io.Writer, result *domain.GenerationResult) {
	for _, note := range result.Notes {
		if note.Slot != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", note.Level, note.Slot, note.Message)
		} else {
			fmt.Fprintf(w, "[%s] %s\n", note.Level, note.Message)
		}
	}
	for _, msg := range result.ConformanceErrors {
		fmt.Fprintf(w, "conformance: %s\n", msg)
	}
	for _, adv := range result.Advisories {
		fmt.Fprintf(w, "advisory: <%s src=%q> %s\n", adv.Tag, adv.Src, adv.Reason)
	}
	for _, token := range result.UnresolvedTokens {
		fmt.Fprintf(w, "unresolved token: %s\n", token)
	}
}

func writeOutput(path, content string, stdout io.Writer) error {
	if path == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, "ampgen:", err)
		}
		os.Exit(1)
	}
}
