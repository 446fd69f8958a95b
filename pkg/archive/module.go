package archive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Definition declares how one content kind instantiates the shared
// repository operations.
type Definition struct {
	Kind           Kind
	DefaultSort    Sort
	ValidateCreate CreateValidator
	ValidateUpdate UpdateValidator
}

// Module exposes the full operation set for one content kind: the
// public read-only surface (List, GetBySlug) and the admin read/write
// surface (AdminList, Get, Create, Update, Delete, UpdateStatus).
//
// All six kinds share this implementation; only the kind handle, the
// default sort and the two validators differ.
type Module struct {
	kind           Kind
	defaultSort    Sort
	validateCreate CreateValidator
	validateUpdate UpdateValidator
	store          Store
}

// NewModule builds the operation set for one kind against the given
// store.
func NewModule(store Store, def Definition) *Module {
	return &Module{
		kind:           def.Kind,
		defaultSort:    def.DefaultSort,
		validateCreate: def.ValidateCreate,
		validateUpdate: def.ValidateUpdate,
		store:          store,
	}
}

// Kind returns the collection this module operates on.
func (m *Module) Kind() Kind { return m.kind }

// baseFilters builds the filter plan shared by the public and admin
// list operations.
func (m *Module) baseFilters(q ListQuery, pg Pagination) ListFilters {
	search := strings.TrimSpace(q.Q)
	f := ListFilters{
		Search:     search,
		Tag:        strings.TrimSpace(q.Tag),
		PersonSlug: strings.TrimSpace(q.PersonSlug),
		FundKey:    strings.TrimSpace(q.FundKey),
		Sort:       m.defaultSort,
		Relevance:  search != "",
		Limit:      pg.Limit,
		Offset:     pg.Skip,
	}
	return f
}

// List is the public listing: only published records, optional
// free-text search, tag and relation filters. A search term switches
// the order to relevance ranking.
func (m *Module) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	pg := NormalizePagination(q.Page, q.Limit)
	filters := m.baseFilters(q, pg)
	filters.Status = StatusPublished

	total, err := m.store.Count(ctx, m.kind, filters)
	if err != nil {
		return nil, wrapStoreError(m.kind, "list", err)
	}
	items, err := m.store.List(ctx, m.kind, filters)
	if err != nil {
		return nil, wrapStoreError(m.kind, "list", err)
	}
	return newListResult(items, pg, total), nil
}

// GetBySlug returns the published record with the given slug. Records
// in any other status are indistinguishable from absent ones.
func (m *Module) GetBySlug(ctx context.Context, slug string) (*Record, error) {
	record, err := m.store.GetBySlug(ctx, m.kind, strings.TrimSpace(slug), true)
	if err != nil {
		return nil, wrapStoreError(m.kind, "get_by_slug", err)
	}
	return record, nil
}

// AdminList lists records in any status, with the extra status, slug,
// featured and named-sort parameters.
func (m *Module) AdminList(ctx context.Context, q AdminListQuery) (*ListResult, error) {
	pg := NormalizePagination(q.Page, q.Limit)
	filters := m.baseFilters(q.ListQuery, pg)
	filters.Slug = strings.TrimSpace(q.Slug)
	filters.Featured = q.Featured
	filters.Sort = SortPreset(q.Sort, m.defaultSort)

	if q.Status != "" {
		status := Status(q.Status)
		if !status.Valid() {
			return nil, NewValidationError(map[string]string{
				"status": "must be draft, published or archived",
			})
		}
		filters.Status = status
	}

	total, err := m.store.Count(ctx, m.kind, filters)
	if err != nil {
		return nil, wrapStoreError(m.kind, "admin_list", err)
	}
	items, err := m.store.List(ctx, m.kind, filters)
	if err != nil {
		return nil, wrapStoreError(m.kind, "admin_list", err)
	}
	return newListResult(items, pg, total), nil
}

// Get returns a record by id regardless of status.
func (m *Module) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	record, err := m.store.Get(ctx, m.kind, id)
	if err != nil {
		return nil, wrapStoreError(m.kind, "get", err)
	}
	return record, nil
}

// Create validates the payload, derives a unique slug from the supplied
// slug or the title, stamps publishedAt when the initial status is
// published, and persists the record.
func (m *Module) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	if fields := m.validateCreate(&req); len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	status := req.Status
	if status == "" {
		status = StatusDraft
	}

	desired := req.Slug
	if strings.TrimSpace(desired) == "" {
		desired = req.Title
	}
	slug, err := AssignSlug(ctx, m.store, m.kind, desired, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &Record{
		ID:                uuid.New(),
		Kind:              m.kind,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Slug:              slug,
		CoverImageURL:     req.CoverImageURL,
		Status:            status,
		Tags:              req.Tags,
		RelatedPersonSlug: req.RelatedPersonSlug,
		RelatedFundKey:    req.RelatedFundKey,
		Featured:          req.Featured,
		SortOrder:         req.SortOrder,
		Details:           req.Details,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if status == StatusPublished {
		record.PublishedAt = &now
	}

	if err := m.store.Insert(ctx, record); err != nil {
		return nil, wrapStoreError(m.kind, "create", err)
	}
	return record, nil
}

// Update merges a partial payload onto the stored record. A changed
// slug or title re-derives the slug and re-checks uniqueness excluding
// the record itself. A merged status of published stamps publishedAt
// only when it is still unset.
func (m *Module) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Record, error) {
	record, err := m.store.Get(ctx, m.kind, id)
	if err != nil {
		return nil, wrapStoreError(m.kind, "update", err)
	}

	if fields := m.validateUpdate(&req); len(fields) > 0 {
		return nil, NewValidationError(fields)
	}

	desired := record.Slug
	switch {
	case req.Slug != nil && strings.TrimSpace(*req.Slug) != "":
		desired = *req.Slug
	case req.Title != nil && strings.TrimSpace(*req.Title) != record.Title:
		desired = *req.Title
	}
	if slug := Slugify(desired); slug != record.Slug {
		slug, err := AssignSlug(ctx, m.store, m.kind, desired, record.ID)
		if err != nil {
			return nil, err
		}
		record.Slug = slug
	}

	if req.Title != nil {
		record.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.CoverImageURL != nil {
		record.CoverImageURL = *req.CoverImageURL
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	if req.Tags != nil {
		record.Tags = *req.Tags
	}
	if req.RelatedPersonSlug != nil {
		record.RelatedPersonSlug = *req.RelatedPersonSlug
	}
	if req.RelatedFundKey != nil {
		record.RelatedFundKey = *req.RelatedFundKey
	}
	if req.Featured != nil {
		record.Featured = *req.Featured
	}
	if req.SortOrder != nil {
		record.SortOrder = *req.SortOrder
	}
	if req.Details != nil {
		record.Details = *req.Details
	}

	now := time.Now().UTC()
	if record.Status == StatusPublished && record.PublishedAt == nil {
		record.PublishedAt = &now
	}
	record.UpdatedAt = now

	if err := m.store.Update(ctx, record); err != nil {
		return nil, wrapStoreError(m.kind, "update", err)
	}
	return record, nil
}

// Delete removes the record permanently. There is no tombstone state.
func (m *Module) Delete(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, m.kind, id); err != nil {
		return wrapStoreError(m.kind, "delete", err)
	}
	return nil
}

// UpdateStatus moves the record to the given lifecycle state. Every
// transition between the three states is allowed. The first transition
// to published stamps publishedAt; later transitions leave it alone.
func (m *Module) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Record, error) {
	if !status.Valid() {
		return nil, NewValidationError(map[string]string{
			"status": "must be draft, published or archived",
		})
	}

	record, err := m.store.Get(ctx, m.kind, id)
	if err != nil {
		return nil, wrapStoreError(m.kind, "update_status", err)
	}

	now := time.Now().UTC()
	record.Status = status
	if status == StatusPublished && record.PublishedAt == nil {
		record.PublishedAt = &now
	}
	record.UpdatedAt = now

	if err := m.store.Update(ctx, record); err != nil {
		return nil, wrapStoreError(m.kind, "update_status", err)
	}
	return record, nil
}
