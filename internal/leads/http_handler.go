package leads

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/leadcrm/internal/domain"
	"github.com/rpattn/leadcrm/internal/repository"
)

const maxJSONBody = 1 << 20

// Handler serves the lead and employee REST endpoints.
type Handler struct {
	service *Service
	log     logrus.FieldLogger
}

func NewHandler(service *Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{service: service, log: log}
}

// Register mounts the routes on r, which is expected to be the /api subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/leads", h.list).Methods(http.MethodGet)
	r.HandleFunc("/leads", h.create).Methods(http.MethodPost)
	r.HandleFunc("/leads/export", h.export).Methods(http.MethodGet)
	r.HandleFunc("/leads/assign", h.assign).Methods(http.MethodPost)
	r.HandleFunc("/leads/{id:[0-9]+}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/leads/{id:[0-9]+}/status", h.updateStatus).Methods(http.MethodPut)
	r.HandleFunc("/leads/{id:[0-9]+}/assignee", h.reassign).Methods(http.MethodPut)
	r.HandleFunc("/employees", h.listEmployees).Methods(http.MethodGet)
	r.HandleFunc("/employees/{employeeId}/leads", h.employeeLeads).Methods(http.MethodGet)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, offset, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var dto CreateLeadDTO
	if err := decodeJSON(w, r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto UpdateStatusDTO
	if err := decodeJSON(w, r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.UpdateStatus(r.Context(), id, dto.Status)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) reassign(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var dto ReassignDTO
	if err := decodeJSON(w, r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.Reassign(r.Context(), id, dto.AssignedTo)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var dto AssignLeadsDTO
	if err := decodeJSON(w, r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.service.AssignMany(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updatedCount": updated})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.Employees(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *Handler) employeeLeads(w http.ResponseWriter, r *http.Request) {
	employeeID := strings.TrimSpace(mux.Vars(r)["employeeId"])
	limit, offset, err := parsePaging(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.service.List(r.Context(), domain.LeadFilter{AssignedTo: &employeeID}, limit, offset)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	format, err := ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	fileName := fmt.Sprintf("leads-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	download := &downloadWriter{w: w, contentType: format.ContentType(), fileName: fileName}

	if _, err := h.service.Export(r.Context(), filter, format, download); err != nil {
		if !download.started {
			h.writeServiceError(w, err)
			return
		}
		h.log.WithError(err).Error("lead export failed after the download started")
	}
}

// downloadWriter sets the attachment headers on the first body write, so an
// export that fails before producing bytes can still answer with an error.
type downloadWriter struct {
	w           http.ResponseWriter
	contentType string
	fileName    string
	started     bool
}

func (d *downloadWriter) Write(p []byte) (int, error) {
	if !d.started {
		d.started = true
		d.w.Header().Set("Content-Type", d.contentType)
		d.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.fileName))
		d.w.WriteHeader(http.StatusOK)
	}
	return d.w.Write(p)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var validation *ValidationFailedError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validation.Result.Fields(),
		})
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrUnknownEmployee):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrRejected):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("lead request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseLeadFilter(r *http.Request) (domain.LeadFilter, error) {
	query := r.URL.Query()
	var filter domain.LeadFilter
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := domain.ParseLeadStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if assignee := strings.TrimSpace(query.Get("assignedTo")); assignee != "" {
		filter.AssignedTo = &assignee
	}
	return filter, nil
}

func parsePaging(r *http.Request) (int, int, error) {
	query := r.URL.Query()
	limit, err := optionalInt(query.Get("limit"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit: %v", err)
	}
	offset, err := optionalInt(query.Get("offset"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid offset: %v", err)
	}
	return limit, offset, nil
}

func optionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("must not be negative")
	}
	return value, nil
}

func leadID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid lead id %q", mux.Vars(r)["id"])
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	return nil
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
