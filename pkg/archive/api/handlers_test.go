package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/acervo-digital/archive-content/pkg/archive/api"
	"github.com/acervo-digital/archive-content/pkg/archive/health"
	"github.com/acervo-digital/archive-content/pkg/archive/repo/memory"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, *archive.Service) {
	t.Helper()

	store := memory.New()
	service, err := archive.New(archive.WithStore(store))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/api/v1", api.NewPublicHandler(service).Routes())
	r.Mount("/api/v1/admin", api.NewAdminHandler(service, health.New(store)).Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server, service
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createDocument(t *testing.T, service *archive.Service, title string, status archive.Status) *archive.Record {
	t.Helper()

	module, err := service.Module(archive.KindDocument)
	require.NoError(t, err)
	record, err := module.Create(context.Background(), archive.CreateRequest{
		Title:         title,
		Description:   "Documento digitalizado do acervo institucional, com transcrição completa.",
		CoverImageURL: "https://cdn.example.org/covers/doc.jpg",
		Status:        status,
	})
	require.NoError(t, err)
	return record
}

func TestPublicEndpoints(t *testing.T) {
	server, service := setupServer(t)

	createDocument(t, service, "Ata 1961", archive.StatusPublished)
	createDocument(t, service, "Rascunho Interno", archive.StatusDraft)

	t.Run("list returns only published with meta", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/documents", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].([]interface{})
		require.Len(t, data, 1)
		first := data[0].(map[string]interface{})
		assert.Equal(t, "ata-1961", first["slug"])

		meta := body["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["page"])
		assert.Equal(t, float64(12), meta["limit"])
		assert.Equal(t, float64(1), meta["total"])
	})

	t.Run("get by slug", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/documents/ata-1961", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Ata 1961", data["title"])
	})

	t.Run("drafts are not found by slug", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/documents/rascunho-interno", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "NOT_FOUND", errBody["code"])
	})

	t.Run("unknown collection", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/v1/recipes", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("garbage pagination falls back to defaults", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/documents?page=abc&limit=-5", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		meta := body["meta"].(map[string]interface{})
		assert.Equal(t, float64(1), meta["page"])
		assert.Equal(t, float64(12), meta["limit"])
	})
}

func TestAdminCRUD(t *testing.T) {
	server, _ := setupServer(t)
	base := server.URL + "/api/v1/admin/documents"

	payload := map[string]interface{}{
		"title":         "Ata 1961",
		"description":   "Documento digitalizado do acervo institucional, com transcrição completa.",
		"coverImageUrl": "https://cdn.example.org/covers/doc.jpg",
	}

	resp, body := doJSON(t, http.MethodPost, base, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["data"].(map[string]interface{})
	assert.Equal(t, "ata-1961", created["slug"])
	assert.Equal(t, "draft", created["status"])
	id := created["id"].(string)

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, base, payload)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "CONFLICT", errBody["code"])
	})

	t.Run("validation error lists fields", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, base, map[string]interface{}{"title": " "})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
		fields := errBody["fields"].(map[string]interface{})
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "description")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, base, bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("admin list sees drafts", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, base+"?status=draft", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].([]interface{})
		assert.Len(t, data, 1)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, base+"?status=live", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("get by id", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/%s", base, id), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Ata 1961", data["title"])
	})

	t.Run("malformed id", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodGet, base+"/not-a-uuid", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		errBody := body["error"].(map[string]interface{})
		fields := errBody["fields"].(map[string]interface{})
		assert.Contains(t, fields, "id")
	})

	t.Run("partial update", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/%s", base, id), map[string]interface{}{
			"featured": true,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, true, data["featured"])
		assert.Equal(t, "Ata 1961", data["title"])
	})

	t.Run("status transition stamps publishedAt", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/%s/status", base, id), map[string]interface{}{
			"status": "published",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "published", data["status"])
		assert.NotEmpty(t, data["publishedAt"])
	})

	t.Run("invalid transition target", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/%s/status", base, id), map[string]interface{}{
			"status": "retired",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("delete then not found", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/%s", base, id), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "deleted", data["status"])

		resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/%s", base, id), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing record", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodGet, fmt.Sprintf("%s/%s", base, uuid.New()), nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestContentHealthEndpoint(t *testing.T) {
	server, service := setupServer(t)

	createDocument(t, service, "Ata 1961", archive.StatusPublished)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/admin/health/content", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	modules := data["modules"].([]interface{})
	assert.Len(t, modules, 6)
	assert.NotEmpty(t, data["suggestions"])

	for _, raw := range modules {
		module := raw.(map[string]interface{})
		if module["kind"] != "documents" {
			continue
		}
		counts := module["counts"].(map[string]interface{})
		assert.Equal(t, float64(1), counts["total"])
		assert.Equal(t, float64(1), counts["published"])
	}
}
