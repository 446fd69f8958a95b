// Package api exposes the public and admin HTTP surfaces as chi
// routers. Authentication, CORS and rate limiting are the embedding
// application's concern; mount the admin router behind your own guard.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/go-chi/render"
)

// envelope is the uniform success body: {data, meta?}.
type envelope struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

// listMeta is the meta block attached to list responses.
type listMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type errorBody struct {
	Error *archive.Error `json:"error"`
}

func statusFor(code archive.Code) int {
	switch code {
	case archive.CodeValidation:
		return http.StatusUnprocessableEntity
	case archive.CodeNotFound:
		return http.StatusNotFound
	case archive.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var typed *archive.Error
	if !errors.As(err, &typed) {
		typed = archive.NewInternalError("request", err)
	}
	if typed.Code == archive.CodeInternal {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}
	render.Status(r, statusFor(typed.Code))
	render.JSON(w, r, errorBody{Error: typed})
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Data: data})
}

func writeList(w http.ResponseWriter, r *http.Request, result *archive.ListResult) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, envelope{
		Data: result.Items,
		Meta: listMeta{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
			HasNext:    result.HasNext,
			HasPrev:    result.HasPrev,
		},
	})
}
