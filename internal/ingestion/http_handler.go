package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/auth"
	"github.com/rpattn/leadcrm/internal/domain"
)

// BatchIDHeader carries the batch id of an accepted upload so callers can
// look up its ingestion log entries.
const BatchIDHeader = "X-Ingestion-Batch-ID"

// HandlerOptions configures the upload endpoint.
type HandlerOptions struct {
	MaxUploadBytes  int64
	DefaultTemplate string
	Logger          logrus.FieldLogger
}

// Handler exposes ingestion as an HTTP endpoint.
type Handler struct {
	service         *Service
	maxUploadBytes  int64
	defaultTemplate string
	log             logrus.FieldLogger
}

// NewHTTPHandler wraps the service with a multipart POST endpoint.
func NewHTTPHandler(service *Service, opts HandlerOptions) http.Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = LeadTemplate.Name
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Handler{
		service:         service,
		maxUploadBytes:  opts.MaxUploadBytes,
		defaultTemplate: opts.DefaultTemplate,
		log:             opts.Logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid form data: %v", err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	templateName := strings.TrimSpace(r.FormValue("template"))
	if templateName == "" {
		templateName = h.defaultTemplate
	}
	tmpl, err := TemplateByName(templateName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uploadedBy, _ := auth.ActorFromContext(r.Context())
	req := Request{
		BatchID:    uuid.New(),
		FileName:   header.Filename,
		UploadedBy: uploadedBy,
		Template:   tmpl,
		Data:       file,
	}

	report, err := h.service.Ingest(r.Context(), req)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			h.log.WithError(err).WithField("file", header.Filename).Error("upload failed")
			writeError(w, status, "Failed to process upload")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set(BatchIDHeader, req.BatchID.String())
	writeJSON(w, http.StatusOK, report)
}

// NewLogsHandler lists durable ingestion log entries.
func NewLogsHandler(service *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		filter, err := parseLogFilter(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := service.ListLogs(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list ingestion logs")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

func parseLogFilter(r *http.Request) (domain.IngestionLogFilter, error) {
	query := r.URL.Query()
	filter := domain.IngestionLogFilter{
		FileName: strings.TrimSpace(query.Get("fileName")),
	}
	if raw := strings.TrimSpace(query.Get("batchId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid batchId: %v", err)
		}
		filter.BatchID = &id
	}
	var err error
	if filter.Limit, err = parseNonNegative(query.Get("limit")); err != nil {
		return filter, fmt.Errorf("invalid limit: %v", err)
	}
	if filter.Offset, err = parseNonNegative(query.Get("offset")); err != nil {
		return filter, fmt.Errorf("invalid offset: %v", err)
	}
	return filter, nil
}

func parseNonNegative(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return value, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrMissingHeader),
		errors.Is(err, ErrMalformedInput),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrNoUpload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
