package health

import (
	"context"
	"time"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"golang.org/x/sync/errgroup"
)

// structuralChecks maps each kind to its structural battery. Personal
// archives have no kind-specific check beyond the shared ones.
var structuralChecks = map[archive.Kind]archive.QualityCheck{
	archive.KindDocument:     archive.CheckDocumentNoSource,
	archive.KindJournal:      archive.CheckJournalNoPages,
	archive.KindPhotoArchive: archive.CheckPhotoArchiveSparse,
	archive.KindReference:    archive.CheckReferenceIncomplete,
	archive.KindTestimonial:  archive.CheckTestimonialThin,
}

// Aggregator produces the cross-module content-health report. Every
// battery is read-only and independent; batteries run concurrently and
// may observe slightly different snapshots under concurrent writes,
// which is acceptable for a dashboard.
type Aggregator struct {
	store archive.Store
}

// New builds an aggregator on the given store.
func New(store archive.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Report fans the per-collection batteries out across all six kinds and
// joins once every battery has completed. An empty collection is a
// valid result, not a failure.
func (a *Aggregator) Report(ctx context.Context) (*Report, error) {
	kinds := archive.Kinds()
	modules := make([]*ModuleReport, len(kinds))

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			report, err := a.moduleReport(ctx, kind)
			if err != nil {
				return err
			}
			modules[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: time.Now().UTC(),
		Modules:     modules,
		Suggestions: suggestions,
	}, nil
}

func (a *Aggregator) moduleReport(ctx context.Context, kind archive.Kind) (*ModuleReport, error) {
	report := &ModuleReport{Kind: kind}

	counts, err := a.store.StatusCounts(ctx, kind)
	if err != nil {
		return nil, err
	}
	report.Counts = counts

	lastUpdated, err := a.store.LatestRecord(ctx, kind, "updated_at")
	if err != nil {
		return nil, err
	}
	report.LastUpdated = pointerOf(lastUpdated)

	lastPublished, err := a.store.LatestRecord(ctx, kind, "published_at")
	if err != nil {
		return nil, err
	}
	report.LastPublished = pointerOf(lastPublished)

	missingCover, err := a.store.QualitySample(ctx, kind, archive.CheckMissingCover, SampleCap)
	if err != nil {
		return nil, err
	}
	report.MissingCover = bucketOf(missingCover)

	shortDescriptions, err := a.store.QualitySample(ctx, kind, archive.CheckShortDescription, SampleCap)
	if err != nil {
		return nil, err
	}
	report.ShortDescriptions = bucketOf(shortDescriptions)

	if check, ok := structuralChecks[kind]; ok {
		structural, err := a.store.QualitySample(ctx, kind, check, SampleCap)
		if err != nil {
			return nil, err
		}
		report.Structural = bucketOf(structural)
	}

	return report, nil
}
