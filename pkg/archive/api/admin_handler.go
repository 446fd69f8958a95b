package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/acervo-digital/archive-content/pkg/archive/health"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AdminHandler serves the read/write surface plus the content-health
// report. It carries no authentication of its own.
type AdminHandler struct {
	service    *archive.Service
	aggregator *health.Aggregator
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(service *archive.Service, aggregator *health.Aggregator) *AdminHandler {
	return &AdminHandler{service: service, aggregator: aggregator}
}

// Routes returns the admin routes.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health/content", h.ContentHealth)

	r.Route("/{kind}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Patch("/{id}/status", h.UpdateStatus)
	})
	return r
}

func (h *AdminHandler) module(r *http.Request) (*archive.Module, error) {
	return h.service.Module(archive.Kind(chi.URLParam(r, "kind")))
}

func recordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, archive.NewValidationError(map[string]string{
			"id": "must be a valid UUID",
		})
	}
	return id, nil
}

func adminListQuery(r *http.Request) archive.AdminListQuery {
	q := r.URL.Query()
	query := archive.AdminListQuery{
		ListQuery: listQuery(r),
		Status:    q.Get("status"),
		Slug:      q.Get("slug"),
		Sort:      q.Get("sort"),
	}
	if raw := q.Get("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			query.Featured = &featured
		}
	}
	return query
}

// List returns records of a kind in any status.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := module.AdminList(r.Context(), adminListQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, result)
}

// Get returns one record by id.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := module.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

// Create persists a new record.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req archive.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, archive.NewValidationError(map[string]string{
			"body": "invalid JSON payload",
		}))
		return
	}

	record, err := module.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, record)
}

// Update merges a partial payload onto a record.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req archive.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, archive.NewValidationError(map[string]string{
			"body": "invalid JSON payload",
		}))
		return
	}

	record, err := module.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

// Delete removes a record permanently.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := module.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}

type updateStatusRequest struct {
	Status archive.Status `json:"status"`
}

// UpdateStatus moves a record through the lifecycle.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, archive.NewValidationError(map[string]string{
			"body": "invalid JSON payload",
		}))
		return
	}

	record, err := module.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}

// ContentHealth runs the cross-module quality batteries and returns the
// assembled report.
func (h *AdminHandler) ContentHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.Report(r.Context())
	if err != nil {
		writeError(w, r, archive.NewInternalError("content_health", err))
		return
	}
	writeData(w, r, http.StatusOK, report)
}
