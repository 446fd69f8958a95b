package archive

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence contract every backend implements. All six
// collections live behind one Store; operations are scoped by Kind.
//
// Stores guarantee single-record atomicity only. The (kind, slug) pair
// must be enforced unique at the storage level; Insert and Update return
// ErrSlugTaken on violation.
type Store interface {
	// List returns records matching the filters, sorted and paged.
	List(ctx context.Context, kind Kind, filters ListFilters) ([]*Record, error)

	// Count returns the number of records matching the filters,
	// ignoring pagination and sort.
	Count(ctx context.Context, kind Kind, filters ListFilters) (int64, error)

	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error)

	// GetBySlug returns the record with the given slug, restricted to
	// published records when onlyPublished is set, or ErrNotFound.
	GetBySlug(ctx context.Context, kind Kind, slug string, onlyPublished bool) (*Record, error)

	// SlugExists reports whether any record of kind other than
	// excludeID owns the slug. excludeID may be uuid.Nil.
	SlugExists(ctx context.Context, kind Kind, slug string, excludeID uuid.UUID) (bool, error)

	// Insert persists a new record, or returns ErrSlugTaken.
	Insert(ctx context.Context, record *Record) error

	// Update overwrites the stored record, or returns ErrNotFound /
	// ErrSlugTaken.
	Update(ctx context.Context, record *Record) error

	// Delete removes the record permanently, or returns ErrNotFound.
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error

	// StatusCounts returns the per-status volume breakdown of a kind.
	StatusCounts(ctx context.Context, kind Kind) (StatusCounts, error)

	// LatestRecord returns the record with the greatest non-null value
	// of field ("updated_at" or "published_at"), or nil when the
	// collection has no such record.
	LatestRecord(ctx context.Context, kind Kind, field string) (*Record, error)

	// QualitySample runs one quality battery: total matching count plus
	// at most limit samples ordered by the check's ranking key.
	QualitySample(ctx context.Context, kind Kind, check QualityCheck, limit int) (*QualityBucket, error)
}
