package archive

// ListQuery carries the query parameters accepted by the public list
// operation. Page and Limit are normalized by the module; zero values
// mean "not supplied".
type ListQuery struct {
	Page       int
	Limit      int
	Q          string
	Tag        string
	PersonSlug string
	FundKey    string
}

// AdminListQuery extends ListQuery with the admin-only parameters.
type AdminListQuery struct {
	ListQuery

	Status   string
	Slug     string
	Sort     string // named preset; unknown names fall back to the default sort
	Featured *bool
}

// CreateRequest is the payload for creating a record. Slug is optional;
// when empty the slug derives from Title.
type CreateRequest struct {
	Title             string   `json:"title" validate:"required"`
	Description       string   `json:"description" validate:"required"`
	Slug              string   `json:"slug,omitempty" validate:"max=80"`
	CoverImageURL     string   `json:"coverImageUrl,omitempty"`
	Status            Status   `json:"status,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	RelatedPersonSlug string   `json:"relatedPersonSlug,omitempty"`
	RelatedFundKey    string   `json:"relatedFundKey,omitempty"`
	Featured          bool     `json:"featured,omitempty"`
	SortOrder         int      `json:"sortOrder,omitempty"`
	Details           Details  `json:"details,omitempty"`
}

// UpdateRequest is the partial payload for updating a record. Nil
// fields are left untouched by the merge.
type UpdateRequest struct {
	Title             *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Description       *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Slug              *string   `json:"slug,omitempty" validate:"omitempty,max=80"`
	CoverImageURL     *string   `json:"coverImageUrl,omitempty"`
	Status            *Status   `json:"status,omitempty"`
	Tags              *[]string `json:"tags,omitempty"`
	RelatedPersonSlug *string   `json:"relatedPersonSlug,omitempty"`
	RelatedFundKey    *string   `json:"relatedFundKey,omitempty"`
	Featured          *bool     `json:"featured,omitempty"`
	SortOrder         *int      `json:"sortOrder,omitempty"`
	Details           *Details  `json:"details,omitempty"`
}

// ListResult is the envelope returned by list operations.
type ListResult struct {
	Items      []*Record `json:"items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"totalPages"`
	HasNext    bool      `json:"hasNext"`
	HasPrev    bool      `json:"hasPrev"`
}

func newListResult(items []*Record, pg Pagination, total int64) *ListResult {
	if items == nil {
		items = []*Record{}
	}
	totalPages := int((total + int64(pg.Limit) - 1) / int64(pg.Limit))
	return &ListResult{
		Items:      items,
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    pg.Page < totalPages,
		HasPrev:    pg.Page > 1 && total > 0,
	}
}
