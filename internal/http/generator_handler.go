package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Notifuse/ampmailer/internal/domain"
	"github.com/Notifuse/ampmailer/internal/http/middleware"
	"github.com/Notifuse/ampmailer/pkg/logger"
	"github.com/Notifuse/ampmailer/pkg/ratelimiter"
)

// maxFormMemory is the part of a multipart form kept in memory
const maxFormMemory = 32 << 20

// DownloadFilename is the attachment name of the downloaded document
const DownloadFilename = "amp.html"

type GeneratorHandler struct {
	service domain.GeneratorService
	slots   []domain.ImageSlot
	auth    *middleware.AuthConfig
	limiter *ratelimiter.Limiter
	logger  logger.Logger
}

// NewGeneratorHandler creates the handler. jwtSecret protects the send
// endpoint when set; limiter throttles it per client IP.
func NewGeneratorHandler(service domain.GeneratorService, slots []domain.ImageSlot, jwtSecret string, limiter *ratelimiter.Limiter, logger logger.Logger) *GeneratorHandler {
	return &GeneratorHandler{
		service: service,
		slots:   slots,
		auth:    middleware.NewAuthMiddleware(jwtSecret),
		limiter: limiter,
		logger:  logger,
	}
}

func (h *GeneratorHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth()
	rateLimit := middleware.RateLimit(h.limiter)

	mux.HandleFunc("/api/amp.status", h.handleStatus)
	mux.HandleFunc("/api/amp.generate", h.handleGenerate)
	mux.HandleFunc("/api/amp.preview", h.handlePreview)
	mux.HandleFunc("/api/amp.download", h.handleDownload)
	mux.Handle("/api/amp.send", requireAuth(rateLimit(http.HandlerFunc(h.handleSend))))
	mux.Handle("/api/amp.sends", requireAuth(http.HandlerFunc(h.handleListSends)))
	mux.Handle("/api/hosting.diagnose", requireAuth(http.HandlerFunc(h.handleDiagnose)))
	mux.HandleFunc("/healthz", h.handleHealth)
}

func (h *GeneratorHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *GeneratorHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get status")
		WriteJSONError(w, "Failed to get status", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *GeneratorHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, &domain.SessionView{Generation: result})
}

func (h *GeneratorHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	writeHTML(w, result.Document)
}

func (h *GeneratorHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	result, ok := h.generate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, DownloadFilename))
	writeHTML(w, result.Document)
}

// generate runs the shared part of generate, preview and download. It
// writes the error response itself and reports whether to continue.
func (h *GeneratorHandler) generate(w http.ResponseWriter, r *http.Request) (*domain.GenerationResult, bool) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	req, err := h.parseGenerationRequest(w, r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	result, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to generate document")
		return nil, false
	}
	return result, true
}

func (h *GeneratorHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := h.parseGenerationRequest(w, r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := domain.SendOptions{
		To:        r.FormValue("to"),
		Subject:   r.FormValue("subject"),
		Preheader: r.FormValue("preheader"),
	}

	view, err := h.service.Send(r.Context(), req, opts)
	if err != nil {
		h.writeServiceError(w, err, "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *GeneratorHandler) handleListSends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := h.service.ListSends(r.Context(), limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list sends")
		WriteJSONError(w, "Failed to list sends", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sends": entries,
	})
}

func (h *GeneratorHandler) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	diag, err := h.service.DiagnoseHosting(r.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to diagnose hosting")
		WriteJSONError(w, "Failed to diagnose hosting", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, diag)
}

// parseGenerationRequest reads the text fields and one optional file per
// slot from a multipart or urlencoded form
func (h *GeneratorHandler) parseGenerationRequest(w http.ResponseWriter, r *http.Request) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest

	r.Body = http.MaxBytesReader(w, r.Body, int64(len(h.slots)+1)*domain.MaxUploadSize)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return req, fmt.Errorf("invalid form: %w", err)
		}
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("invalid form: %w", err)
		}
	}

	req.Text = domain.TextInputs{
		CTAURL:       r.FormValue("cta_url"),
		QuizQuestion: r.FormValue("quiz_question"),
	}
	for i := range req.Text.QuizOptionLabels {
		req.Text.QuizOptionLabels[i] = r.FormValue(fmt.Sprintf("quiz_opt%d_label", i+1))
	}

	if r.MultipartForm == nil {
		return req, nil
	}

	req.Uploads = make(map[domain.SlotID]*domain.ImageUpload, len(h.slots))
	for _, slot := range h.slots {
		upload, err := readUpload(r, string(slot.ID))
		if err != nil {
			return req, err
		}
		if upload != nil {
			req.Uploads[slot.ID] = upload
		}
	}
	return req, nil
}

func readUpload(r *http.Request, field string) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, domain.MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}
	if len(data) > domain.MaxUploadSize {
		return nil, fmt.Errorf("%s upload exceeds %d bytes", field, domain.MaxUploadSize)
	}

	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *GeneratorHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case domain.IsValidationError(err):
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrTemplatesMissing):
		WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		h.logger.WithField("error", err.Error()).Error(message)
		WriteJSONError(w, message, http.StatusInternalServerError)
	}
}
