package archive

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies one of the six content collections.
type Kind string

// Content kind constants (typed). The string value doubles as the
// collection name and the URL path segment.
const (
	KindDocument        Kind = "documents"
	KindTestimonial     Kind = "testimonials"
	KindReference       Kind = "references"
	KindJournal         Kind = "journals"
	KindPhotoArchive    Kind = "photo-archives"
	KindPersonalArchive Kind = "personal-archives"
)

// Kinds returns all content kinds in their canonical order.
func Kinds() []Kind {
	return []Kind{
		KindDocument,
		KindTestimonial,
		KindReference,
		KindJournal,
		KindPhotoArchive,
		KindPersonalArchive,
	}
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindDocument, KindTestimonial, KindReference,
		KindJournal, KindPhotoArchive, KindPersonalArchive:
		return true
	}
	return false
}

// Status is the domain type for the publish lifecycle.
type Status string

// Lifecycle status constants (typed).
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Record is a single content entry. All six kinds share the base fields;
// kind-specific fields live in Details.
//
// PublishedAt is stamped the first time the record reaches
// StatusPublished and is never cleared or re-stamped afterwards, so it
// always reflects the first publication date.
type Record struct {
	ID                uuid.UUID  `json:"id"`
	Kind              Kind       `json:"kind"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Slug              string     `json:"slug"`
	CoverImageURL     string     `json:"coverImageUrl,omitempty"`
	Status            Status     `json:"status"`
	Tags              []string   `json:"tags,omitempty"`
	RelatedPersonSlug string     `json:"relatedPersonSlug,omitempty"`
	RelatedFundKey    string     `json:"relatedFundKey,omitempty"`
	Featured          bool       `json:"featured"`
	SortOrder         int        `json:"sortOrder"`
	Details           Details    `json:"details"`
	PublishedAt       *time.Time `json:"publishedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// Photo is one entry of a photo archive.
type Photo struct {
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption,omitempty"`
}

// Details holds the kind-specific extension fields. Only the fields
// belonging to the record's kind are populated; everything else stays at
// its zero value and is omitted from JSON and storage.
type Details struct {
	// documents
	FileURL string   `json:"fileUrl,omitempty"`
	Images  []string `json:"images,omitempty"`

	// testimonials
	AuthorName string `json:"authorName,omitempty"`
	Body       string `json:"body,omitempty"`
	MediaURL   string `json:"mediaUrl,omitempty"`

	// references
	Citation string `json:"citation,omitempty"`
	Year     int    `json:"year,omitempty"`
	ISBN     string `json:"isbn,omitempty"`

	// journal issues
	IssueNumber string   `json:"issueNumber,omitempty"`
	PageImages  []string `json:"pageImages,omitempty"`
	PDFURL      string   `json:"pdfUrl,omitempty"`

	// photo archives
	Photos []Photo `json:"photos,omitempty"`

	// personal archives
	OwnerName string   `json:"ownerName,omitempty"`
	Items     []string `json:"items,omitempty"`
}

// Sort is a whitelisted sort plan applied by the store.
type Sort struct {
	Field string // created_at, updated_at, published_at, title, sort_order, featured
	Desc  bool
}

// Named sort presets accepted on the admin list surface. Unrecognized
// names fall back to the module's default sort.
var sortPresets = map[string]Sort{
	"created_desc":   {Field: "created_at", Desc: true},
	"created_asc":    {Field: "created_at"},
	"updated_desc":   {Field: "updated_at", Desc: true},
	"updated_asc":    {Field: "updated_at"},
	"published_desc": {Field: "published_at", Desc: true},
	"published_asc":  {Field: "published_at"},
	"title_asc":      {Field: "title"},
	"title_desc":     {Field: "title", Desc: true},
	"order_asc":      {Field: "sort_order"},
	"featured_desc":  {Field: "featured", Desc: true},
}

// SortPreset resolves a named sort preset, falling back to def when the
// name is unknown or empty.
func SortPreset(name string, def Sort) Sort {
	if s, ok := sortPresets[name]; ok {
		return s
	}
	return def
}

// ListFilters is the store-level query plan built by a Module for its
// list operations.
//
// When PersonSlug or FundKey is set together with Tag, the three become
// a single OR-group; a Tag alone is a plain equality filter.
type ListFilters struct {
	Search     string
	Tag        string
	PersonSlug string
	FundKey    string
	Status     Status // empty matches any status
	Slug       string
	Featured   *bool
	Sort       Sort
	Relevance  bool // order by text-match quality, ignoring Sort
	Limit      int
	Offset     int
}

// StatusCounts is the per-collection volume breakdown used by the
// health report.
type StatusCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Drafts    int64 `json:"drafts"`
	Archived  int64 `json:"archived"`
}

// QualityCheck names one structural-quality battery.
type QualityCheck string

// Quality check constants. The first two apply to every kind; the rest
// are kind-specific.
const (
	CheckMissingCover        QualityCheck = "missing_cover"
	CheckShortDescription    QualityCheck = "short_description"
	CheckDocumentNoSource    QualityCheck = "document_missing_source"
	CheckJournalNoPages      QualityCheck = "journal_missing_pages"
	CheckPhotoArchiveSparse  QualityCheck = "photo_archive_sparse"
	CheckReferenceIncomplete QualityCheck = "reference_incomplete"
	CheckTestimonialThin     QualityCheck = "testimonial_thin"
)

// ShortDescriptionThreshold is the minimum trimmed description length
// below which a record lands in the short-description bucket. The same
// threshold applies to testimonial body text.
const ShortDescriptionThreshold = 80

// MinPhotoArchivePhotos is the minimum photo count below which a photo
// archive is considered sparse.
const MinPhotoArchivePhotos = 3

// QualityBucket is the result of one quality battery: the full matching
// count plus a capped sample list.
type QualityBucket struct {
	Check   QualityCheck `json:"check"`
	Count   int64        `json:"count"`
	Samples []*Record    `json:"samples"`
}
