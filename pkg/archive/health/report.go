// Package health runs the cross-module content-health batteries and
// assembles the curator-facing quality report.
package health

import (
	"time"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/google/uuid"
)

// SampleCap bounds every bucket's sample list.
const SampleCap = 12

// RecordPointer is a compact reference to one record inside the report.
type RecordPointer struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Status      archive.Status `json:"status"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
}

// Bucket is the report form of one quality battery: the total matching
// count plus at most SampleCap sample pointers.
type Bucket struct {
	Check   archive.QualityCheck `json:"check"`
	Count   int64                `json:"count"`
	Samples []RecordPointer      `json:"samples"`
}

// ModuleReport is the per-collection slice of the report.
type ModuleReport struct {
	Kind              archive.Kind         `json:"kind"`
	Counts            archive.StatusCounts `json:"counts"`
	LastUpdated       *RecordPointer       `json:"lastUpdated,omitempty"`
	LastPublished     *RecordPointer       `json:"lastPublished,omitempty"`
	MissingCover      *Bucket              `json:"missingCover"`
	ShortDescriptions *Bucket              `json:"shortDescriptions"`
	Structural        *Bucket              `json:"structural,omitempty"`
}

// Report is the assembled cross-module content-health report.
type Report struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Modules     []*ModuleReport `json:"modules"`
	Suggestions []string        `json:"suggestions"`
}

func pointerOf(r *archive.Record) *RecordPointer {
	if r == nil {
		return nil
	}
	return &RecordPointer{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Status:      r.Status,
		UpdatedAt:   r.UpdatedAt,
		PublishedAt: r.PublishedAt,
	}
}

func bucketOf(b *archive.QualityBucket) *Bucket {
	out := &Bucket{
		Check:   b.Check,
		Count:   b.Count,
		Samples: make([]RecordPointer, 0, len(b.Samples)),
	}
	for _, r := range b.Samples {
		out.Samples = append(out.Samples, *pointerOf(r))
	}
	return out
}

// suggestions is the static curator guidance attached to every report.
var suggestions = []string{
	"Add cover images to records flagged in the missing-cover bucket first; they block public display.",
	"Expand descriptions below 80 characters so search and listing pages have enough context.",
	"Attach a file or page scans to documents and journal issues that have neither.",
	"Photo archives read best with at least three photos; merge sparse archives or add scans.",
	"Complete citation and year on references before publishing them.",
	"Review drafts older than the most recent publication; stale drafts are usually abandoned.",
}
