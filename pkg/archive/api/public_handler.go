package api

import (
	"net/http"
	"strconv"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/go-chi/chi/v5"
)

// PublicHandler serves the read-only surface: published records only.
type PublicHandler struct {
	service *archive.Service
}

// NewPublicHandler creates the public handler.
func NewPublicHandler(service *archive.Service) *PublicHandler {
	return &PublicHandler{service: service}
}

// Routes returns the public routes.
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{kind}", h.List)
	r.Get("/{kind}/{slug}", h.GetBySlug)
	return r
}

func (h *PublicHandler) module(r *http.Request) (*archive.Module, error) {
	return h.service.Module(archive.Kind(chi.URLParam(r, "kind")))
}

func listQuery(r *http.Request) archive.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	personSlug := q.Get("personSlug")
	if personSlug == "" {
		personSlug = q.Get("person")
	}
	fundKey := q.Get("fundKey")
	if fundKey == "" {
		fundKey = q.Get("fund")
	}

	return archive.ListQuery{
		Page:       page,
		Limit:      limit,
		Q:          q.Get("q"),
		Tag:        q.Get("tag"),
		PersonSlug: personSlug,
		FundKey:    fundKey,
	}
}

// List returns published records of a kind.
func (h *PublicHandler) List(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := module.List(r.Context(), listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeList(w, r, result)
}

// GetBySlug returns the published record with the given slug.
func (h *PublicHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	module, err := h.module(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := module.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, record)
}
