// Package postgres implements the archive store on PostgreSQL using
// pgx. The (kind, slug) unique index is the authoritative guard against
// concurrent slug collisions; violations surface as archive.ErrSlugTaken.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX allows using either a connection pool or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements archive.Store using PostgreSQL.
type Store struct {
	db DBTX
}

// New creates a PostgreSQL store.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a PostgreSQL store from a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

var _ archive.Store = (*Store)(nil)

const recordColumns = `id, kind, title, description, slug, cover_image_url, status, tags,
       related_person_slug, related_fund_key, featured, sort_order, details,
       published_at, created_at, updated_at`

func (s *Store) handleError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return archive.ErrSlugTaken
			}
			return fmt.Errorf("duplicate entry in %s: %w", operation, err)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required: %w", err)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return archive.ErrNotFound
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

func scanRecord(row pgx.Row) (*archive.Record, error) {
	var record archive.Record
	var details []byte
	err := row.Scan(
		&record.ID, &record.Kind, &record.Title, &record.Description,
		&record.Slug, &record.CoverImageURL, &record.Status, &record.Tags,
		&record.RelatedPersonSlug, &record.RelatedFundKey, &record.Featured,
		&record.SortOrder, &details, &record.PublishedAt,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &record.Details); err != nil {
			return nil, fmt.Errorf("decode details: %w", err)
		}
	}
	return &record, nil
}

// buildWhere renders the shared filter plan as a WHERE tail. The
// relation filters OR-merge with the tag filter; a tag alone is a plain
// AND equality.
func buildWhere(kind archive.Kind, f archive.ListFilters) (string, []interface{}) {
	where := "kind = $1"
	args := []interface{}{string(kind)}
	next := func() int { return len(args) + 1 }

	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", next())
		args = append(args, string(f.Status))
	}
	if f.Slug != "" {
		where += fmt.Sprintf(" AND slug = $%d", next())
		args = append(args, f.Slug)
	}
	if f.Featured != nil {
		where += fmt.Sprintf(" AND featured = $%d", next())
		args = append(args, *f.Featured)
	}

	if f.PersonSlug != "" || f.FundKey != "" {
		var ors []string
		if f.Tag != "" {
			ors = append(ors, fmt.Sprintf("$%d = ANY(tags)", next()))
			args = append(args, f.Tag)
		}
		if f.PersonSlug != "" {
			ors = append(ors, fmt.Sprintf("related_person_slug = $%d", next()))
			args = append(args, f.PersonSlug)
		}
		if f.FundKey != "" {
			ors = append(ors, fmt.Sprintf("related_fund_key = $%d", next()))
			args = append(args, f.FundKey)
		}
		where += " AND (" + strings.Join(ors, " OR ") + ")"
	} else if f.Tag != "" {
		where += fmt.Sprintf(" AND $%d = ANY(tags)", next())
		args = append(args, f.Tag)
	}

	if f.Search != "" {
		where += fmt.Sprintf(" AND search_vector @@ plainto_tsquery('simple', $%d)", next())
		args = append(args, f.Search)
	}

	return where, args
}

var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"title":        "title",
	"sort_order":   "sort_order",
	"featured":     "featured",
}

func orderClause(f archive.ListFilters, argOffset int) (string, []interface{}) {
	if f.Relevance && f.Search != "" {
		clause := fmt.Sprintf(
			" ORDER BY ts_rank(search_vector, plainto_tsquery('simple', $%d)) DESC, updated_at DESC",
			argOffset+1)
		return clause, []interface{}{f.Search}
	}

	column, ok := sortColumns[f.Sort.Field]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if f.Sort.Desc {
		direction = "DESC"
	}
	nulls := ""
	if column == "published_at" {
		nulls = " NULLS LAST"
	}
	return fmt.Sprintf(" ORDER BY %s %s%s, created_at DESC", column, direction, nulls), nil
}

func (s *Store) List(ctx context.Context, kind archive.Kind, f archive.ListFilters) ([]*archive.Record, error) {
	where, args := buildWhere(kind, f)
	query := "SELECT " + recordColumns + " FROM content_records WHERE " + where

	order, orderArgs := orderClause(f, len(args))
	query += order
	args = append(args, orderArgs...)

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, f.Offset)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, s.handleError("list records", err)
	}
	defer rows.Close()

	var records []*archive.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, s.handleError("scan record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handleError("iterate record rows", err)
	}
	return records, nil
}

func (s *Store) Count(ctx context.Context, kind archive.Kind, f archive.ListFilters) (int64, error) {
	where, args := buildWhere(kind, f)
	query := "SELECT COUNT(*) FROM content_records WHERE " + where

	var count int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, s.handleError("count records", err)
	}
	return count, nil
}

func (s *Store) Get(ctx context.Context, kind archive.Kind, id uuid.UUID) (*archive.Record, error) {
	query := "SELECT " + recordColumns + " FROM content_records WHERE kind = $1 AND id = $2"
	record, err := scanRecord(s.db.QueryRow(ctx, query, string(kind), id))
	if err != nil {
		return nil, s.handleError("get record", err)
	}
	return record, nil
}

func (s *Store) GetBySlug(ctx context.Context, kind archive.Kind, slug string, onlyPublished bool) (*archive.Record, error) {
	query := "SELECT " + recordColumns + " FROM content_records WHERE kind = $1 AND slug = $2"
	args := []interface{}{string(kind), slug}
	if onlyPublished {
		query += " AND status = $3"
		args = append(args, string(archive.StatusPublished))
	}

	record, err := scanRecord(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, s.handleError("get record by slug", err)
	}
	return record, nil
}

func (s *Store) SlugExists(ctx context.Context, kind archive.Kind, slug string, excludeID uuid.UUID) (bool, error) {
	query := "SELECT EXISTS(SELECT 1 FROM content_records WHERE kind = $1 AND slug = $2 AND id <> $3)"

	var exists bool
	if err := s.db.QueryRow(ctx, query, string(kind), slug, excludeID).Scan(&exists); err != nil {
		return false, s.handleError("check slug", err)
	}
	return exists, nil
}

func (s *Store) Insert(ctx context.Context, record *archive.Record) error {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	query := `
		INSERT INTO content_records (
			id, kind, title, description, slug, cover_image_url, status, tags,
			related_person_slug, related_fund_key, featured, sort_order, details,
			published_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = s.db.Exec(ctx, query,
		record.ID, string(record.Kind), record.Title, record.Description,
		record.Slug, record.CoverImageURL, string(record.Status), record.Tags,
		record.RelatedPersonSlug, record.RelatedFundKey, record.Featured,
		record.SortOrder, details, record.PublishedAt,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return s.handleError("insert record", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, record *archive.Record) error {
	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	query := `
		UPDATE content_records SET
			title = $3, description = $4, slug = $5, cover_image_url = $6,
			status = $7, tags = $8, related_person_slug = $9,
			related_fund_key = $10, featured = $11, sort_order = $12,
			details = $13, published_at = $14, updated_at = $15
		WHERE kind = $1 AND id = $2`

	tag, err := s.db.Exec(ctx, query,
		string(record.Kind), record.ID, record.Title, record.Description,
		record.Slug, record.CoverImageURL, string(record.Status), record.Tags,
		record.RelatedPersonSlug, record.RelatedFundKey, record.Featured,
		record.SortOrder, details, record.PublishedAt, record.UpdatedAt)
	if err != nil {
		return s.handleError("update record", err)
	}
	if tag.RowsAffected() == 0 {
		return archive.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, kind archive.Kind, id uuid.UUID) error {
	// Hard delete; the archive keeps no tombstones.
	tag, err := s.db.Exec(ctx,
		"DELETE FROM content_records WHERE kind = $1 AND id = $2", string(kind), id)
	if err != nil {
		return s.handleError("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return archive.ErrNotFound
	}
	return nil
}

func (s *Store) StatusCounts(ctx context.Context, kind archive.Kind) (archive.StatusCounts, error) {
	query := "SELECT status, COUNT(*) FROM content_records WHERE kind = $1 GROUP BY status"

	rows, err := s.db.Query(ctx, query, string(kind))
	if err != nil {
		return archive.StatusCounts{}, s.handleError("status counts", err)
	}
	defer rows.Close()

	var counts archive.StatusCounts
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return archive.StatusCounts{}, s.handleError("scan status counts", err)
		}
		counts.Total += count
		switch archive.Status(status) {
		case archive.StatusPublished:
			counts.Published = count
		case archive.StatusDraft:
			counts.Drafts = count
		case archive.StatusArchived:
			counts.Archived = count
		}
	}
	if err := rows.Err(); err != nil {
		return archive.StatusCounts{}, s.handleError("iterate status counts", err)
	}
	return counts, nil
}

func (s *Store) LatestRecord(ctx context.Context, kind archive.Kind, field string) (*archive.Record, error) {
	var query string
	switch field {
	case "published_at":
		query = "SELECT " + recordColumns + ` FROM content_records
			WHERE kind = $1 AND published_at IS NOT NULL
			ORDER BY published_at DESC LIMIT 1`
	default:
		query = "SELECT " + recordColumns + ` FROM content_records
			WHERE kind = $1 ORDER BY updated_at DESC LIMIT 1`
	}

	record, err := scanRecord(s.db.QueryRow(ctx, query, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, s.handleError("latest record", err)
	}
	return record, nil
}

// qualityConditions maps each check to its predicate and ranking order.
var qualityConditions = map[archive.QualityCheck]struct {
	where string
	order string
}{
	archive.CheckMissingCover: {
		where: "btrim(cover_image_url) = ''",
		order: "updated_at DESC",
	},
	archive.CheckShortDescription: {
		where: fmt.Sprintf("length(btrim(description)) < %d", archive.ShortDescriptionThreshold),
		order: "length(btrim(description)) ASC, updated_at DESC",
	},
	archive.CheckDocumentNoSource: {
		where: "COALESCE(btrim(details->>'fileUrl'), '') = '' AND COALESCE(jsonb_array_length(details->'images'), 0) = 0",
		order: "updated_at DESC",
	},
	archive.CheckJournalNoPages: {
		where: "COALESCE(jsonb_array_length(details->'pageImages'), 0) = 0 AND COALESCE(btrim(details->>'pdfUrl'), '') = ''",
		order: "updated_at DESC",
	},
	archive.CheckPhotoArchiveSparse: {
		where: fmt.Sprintf("COALESCE(jsonb_array_length(details->'photos'), 0) < %d", archive.MinPhotoArchivePhotos),
		order: "COALESCE(jsonb_array_length(details->'photos'), 0) ASC, updated_at DESC",
	},
	archive.CheckReferenceIncomplete: {
		where: "details->>'year' IS NULL OR COALESCE(btrim(details->>'citation'), '') = ''",
		order: "updated_at DESC",
	},
	archive.CheckTestimonialThin: {
		where: fmt.Sprintf("COALESCE(btrim(details->>'authorName'), '') = '' OR length(btrim(COALESCE(details->>'body', ''))) < %d", archive.ShortDescriptionThreshold),
		order: "updated_at DESC",
	},
}

func (s *Store) QualitySample(ctx context.Context, kind archive.Kind, check archive.QualityCheck, limit int) (*archive.QualityBucket, error) {
	condition, ok := qualityConditions[check]
	if !ok {
		return nil, fmt.Errorf("unknown quality check %q", check)
	}

	bucket := &archive.QualityBucket{Check: check, Samples: []*archive.Record{}}

	countQuery := "SELECT COUNT(*) FROM content_records WHERE kind = $1 AND (" + condition.where + ")"
	if err := s.db.QueryRow(ctx, countQuery, string(kind)).Scan(&bucket.Count); err != nil {
		return nil, s.handleError("count quality check", err)
	}

	sampleQuery := "SELECT " + recordColumns + " FROM content_records WHERE kind = $1 AND (" +
		condition.where + ") ORDER BY " + condition.order + " LIMIT $2"
	rows, err := s.db.Query(ctx, sampleQuery, string(kind), limit)
	if err != nil {
		return nil, s.handleError("sample quality check", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, s.handleError("scan quality sample", err)
		}
		bucket.Samples = append(bucket.Samples, record)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handleError("iterate quality samples", err)
	}
	return bucket, nil
}
