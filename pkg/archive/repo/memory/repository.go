// Package memory implements the archive store on in-process maps. It
// backs tests and dependency-free development runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/google/uuid"
)

// Store implements archive.Store using in-memory maps, one per kind.
type Store struct {
	mu      sync.RWMutex
	records map[archive.Kind]map[uuid.UUID]*archive.Record
}

// New creates an empty in-memory store.
func New() *Store {
	records := make(map[archive.Kind]map[uuid.UUID]*archive.Record)
	for _, kind := range archive.Kinds() {
		records[kind] = make(map[uuid.UUID]*archive.Record)
	}
	return &Store{records: records}
}

var _ archive.Store = (*Store)(nil)

func (s *Store) collection(kind archive.Kind) map[uuid.UUID]*archive.Record {
	return s.records[kind]
}

// matches applies everything except search and pagination.
func matches(r *archive.Record, f archive.ListFilters) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Slug != "" && r.Slug != f.Slug {
		return false
	}
	if f.Featured != nil && r.Featured != *f.Featured {
		return false
	}

	hasTag := func() bool {
		for _, t := range r.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}

	// Relation filters merge with the tag filter into one OR-group; a
	// tag alone is a plain equality condition.
	if f.PersonSlug != "" || f.FundKey != "" {
		if f.PersonSlug != "" && r.RelatedPersonSlug == f.PersonSlug {
			return true
		}
		if f.FundKey != "" && r.RelatedFundKey == f.FundKey {
			return true
		}
		if f.Tag != "" && hasTag() {
			return true
		}
		return false
	}
	if f.Tag != "" && !hasTag() {
		return false
	}
	return true
}

// searchScore counts term occurrences, weighing title hits double.
// Zero means no match.
func searchScore(r *archive.Record, search string) int {
	title := strings.ToLower(r.Title)
	description := strings.ToLower(r.Description)
	score := 0
	for _, term := range strings.Fields(strings.ToLower(search)) {
		score += 2 * strings.Count(title, term)
		score += strings.Count(description, term)
	}
	return score
}

func (s *Store) filtered(kind archive.Kind, f archive.ListFilters) []*archive.Record {
	var result []*archive.Record
	for _, r := range s.collection(kind) {
		if !matches(r, f) {
			continue
		}
		if f.Search != "" && searchScore(r, f.Search) == 0 {
			continue
		}
		recordCopy := *r
		result = append(result, &recordCopy)
	}
	return result
}

func sortValue(r *archive.Record, field string) (string, bool) {
	switch field {
	case "title":
		return strings.ToLower(r.Title), true
	}
	return "", false
}

func sortRecords(records []*archive.Record, f archive.ListFilters) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if f.Relevance {
			sa, sb := searchScore(a, f.Search), searchScore(b, f.Search)
			if sa != sb {
				return sa > sb
			}
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		less := func() int {
			switch f.Sort.Field {
			case "updated_at":
				return a.UpdatedAt.Compare(b.UpdatedAt)
			case "published_at":
				switch {
				case a.PublishedAt == nil && b.PublishedAt == nil:
					return 0
				case a.PublishedAt == nil:
					return -1
				case b.PublishedAt == nil:
					return 1
				default:
					return a.PublishedAt.Compare(*b.PublishedAt)
				}
			case "sort_order":
				return a.SortOrder - b.SortOrder
			case "featured":
				switch {
				case a.Featured == b.Featured:
					return 0
				case a.Featured:
					return 1
				default:
					return -1
				}
			default:
				if v, ok := sortValue(a, f.Sort.Field); ok {
					w, _ := sortValue(b, f.Sort.Field)
					return strings.Compare(v, w)
				}
				return a.CreatedAt.Compare(b.CreatedAt)
			}
		}()
		if less != 0 {
			if f.Sort.Desc {
				return less > 0
			}
			return less < 0
		}
		// created_at desc tiebreak, matching the SQL store
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func paginate(records []*archive.Record, limit, offset int) []*archive.Record {
	if offset > 0 {
		if offset >= len(records) {
			return nil
		}
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

func (s *Store) List(ctx context.Context, kind archive.Kind, f archive.ListFilters) ([]*archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.filtered(kind, f)
	sortRecords(result, f)
	return paginate(result, f.Limit, f.Offset), nil
}

func (s *Store) Count(ctx context.Context, kind archive.Kind, f archive.ListFilters) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.filtered(kind, f))), nil
}

func (s *Store) Get(ctx context.Context, kind archive.Kind, id uuid.UUID) (*archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.collection(kind)[id]
	if !exists {
		return nil, archive.ErrNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (s *Store) GetBySlug(ctx context.Context, kind archive.Kind, slug string, onlyPublished bool) (*archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.collection(kind) {
		if record.Slug != slug {
			continue
		}
		if onlyPublished && record.Status != archive.StatusPublished {
			return nil, archive.ErrNotFound
		}
		recordCopy := *record
		return &recordCopy, nil
	}
	return nil, archive.ErrNotFound
}

func (s *Store) SlugExists(ctx context.Context, kind archive.Kind, slug string, excludeID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.slugTaken(kind, slug, excludeID), nil
}

func (s *Store) slugTaken(kind archive.Kind, slug string, excludeID uuid.UUID) bool {
	for _, record := range s.collection(kind) {
		if record.Slug == slug && record.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) Insert(ctx context.Context, record *archive.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The write lock makes this the equivalent of a unique index.
	if s.slugTaken(record.Kind, record.Slug, record.ID) {
		return archive.ErrSlugTaken
	}

	recordCopy := *record
	s.collection(record.Kind)[record.ID] = &recordCopy
	return nil
}

func (s *Store) Update(ctx context.Context, record *archive.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collection(record.Kind)[record.ID]; !exists {
		return archive.ErrNotFound
	}
	if s.slugTaken(record.Kind, record.Slug, record.ID) {
		return archive.ErrSlugTaken
	}

	recordCopy := *record
	s.collection(record.Kind)[record.ID] = &recordCopy
	return nil
}

func (s *Store) Delete(ctx context.Context, kind archive.Kind, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collection(kind)[id]; !exists {
		return archive.ErrNotFound
	}
	delete(s.collection(kind), id)
	return nil
}

func (s *Store) StatusCounts(ctx context.Context, kind archive.Kind) (archive.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts archive.StatusCounts
	for _, record := range s.collection(kind) {
		counts.Total++
		switch record.Status {
		case archive.StatusPublished:
			counts.Published++
		case archive.StatusDraft:
			counts.Drafts++
		case archive.StatusArchived:
			counts.Archived++
		}
	}
	return counts, nil
}

func (s *Store) LatestRecord(ctx context.Context, kind archive.Kind, field string) (*archive.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *archive.Record
	for _, record := range s.collection(kind) {
		switch field {
		case "published_at":
			if record.PublishedAt == nil {
				continue
			}
			if latest == nil || record.PublishedAt.After(*latest.PublishedAt) {
				latest = record
			}
		default:
			if latest == nil || record.UpdatedAt.After(latest.UpdatedAt) {
				latest = record
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	recordCopy := *latest
	return &recordCopy, nil
}

// qualityPredicate reports whether a record belongs in the check's
// bucket, plus a ranking key (smaller ranks first).
func qualityPredicate(r *archive.Record, check archive.QualityCheck) (bool, int) {
	// Character count, not bytes, so accented text measures the same as
	// the SQL store's length(btrim(...)).
	trimmedLen := func(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

	switch check {
	case archive.CheckMissingCover:
		return trimmedLen(r.CoverImageURL) == 0, 0
	case archive.CheckShortDescription:
		n := trimmedLen(r.Description)
		return n < archive.ShortDescriptionThreshold, n
	case archive.CheckDocumentNoSource:
		return trimmedLen(r.Details.FileURL) == 0 && len(r.Details.Images) == 0, 0
	case archive.CheckJournalNoPages:
		return len(r.Details.PageImages) == 0 && trimmedLen(r.Details.PDFURL) == 0, 0
	case archive.CheckPhotoArchiveSparse:
		n := len(r.Details.Photos)
		return n < archive.MinPhotoArchivePhotos, n
	case archive.CheckReferenceIncomplete:
		return r.Details.Year == 0 || trimmedLen(r.Details.Citation) == 0, 0
	case archive.CheckTestimonialThin:
		return trimmedLen(r.Details.AuthorName) == 0 ||
			trimmedLen(r.Details.Body) < archive.ShortDescriptionThreshold, 0
	}
	return false, 0
}

func (s *Store) QualitySample(ctx context.Context, kind archive.Kind, check archive.QualityCheck, limit int) (*archive.QualityBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		record *archive.Record
		rank   int
	}
	var hits []ranked
	for _, record := range s.collection(kind) {
		if ok, rank := qualityPredicate(record, check); ok {
			recordCopy := *record
			hits = append(hits, ranked{record: &recordCopy, rank: rank})
		}
	}

	// Rank ascending, most recently updated first among equals.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].record.UpdatedAt.After(hits[j].record.UpdatedAt)
	})

	bucket := &archive.QualityBucket{
		Check:   check,
		Count:   int64(len(hits)),
		Samples: []*archive.Record{},
	}
	for i, hit := range hits {
		if i >= limit {
			break
		}
		bucket.Samples = append(bucket.Samples, hit.record)
	}
	return bucket, nil
}
