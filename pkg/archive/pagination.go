package archive

import "strconv"

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// Pagination is a normalized, always-usable paging plan.
type Pagination struct {
	Page  int
	Limit int
	Skip  int
}

// NormalizePagination clamps page and limit to safe bounds. Zero or
// negative input falls back to the defaults; limit is capped at
// MaxLimit. It never fails.
func NormalizePagination(page, limit int) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// ParsePagination normalizes raw query-string values. Anything that does
// not parse as an integer counts as missing.
func ParsePagination(rawPage, rawLimit string) Pagination {
	page, _ := strconv.Atoi(rawPage)
	limit, _ := strconv.Atoi(rawLimit)
	return NormalizePagination(page, limit)
}
