package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/pkg/acquirer"
	"github.com/viewroyal/civicpipe/pkg/capability"
	"github.com/viewroyal/civicpipe/pkg/changedetector"
	"github.com/viewroyal/civicpipe/pkg/diarizer"
	"github.com/viewroyal/civicpipe/pkg/embedder"
	"github.com/viewroyal/civicpipe/pkg/ingest"
	matterpkg "github.com/viewroyal/civicpipe/pkg/matter"
	"github.com/viewroyal/civicpipe/pkg/notifier"
	"github.com/viewroyal/civicpipe/pkg/refiner"
)

// embedTables lists every Registry table the post-ingest embed phase
// refreshes, in the original's TABLE_CONFIG iteration order.
var embedTables = []string{"meetings", "agenda_items", "motions", "matters", "bylaws", "bylaw_chunks"}

// Orchestrator bundles every already-wired pipeline component for one
// municipality and drives them through the phase sequence described by
// §4.1. Callers (cmd/civicpipe) are responsible for constructing each
// component with its own capability adapters; the Orchestrator itself
// never reaches for a concrete third-party client.
type Orchestrator struct {
	archiveRoot      string
	municipalityID   int
	municipalitySlug string

	db        *ent.Client
	scraper   capability.Scraper
	acquirer  *acquirer.Acquirer
	detector  *changedetector.Detector
	diarizer  *diarizer.Diarizer
	refiner   *refiner.Refiner
	ingester  *ingest.Ingester
	embedder  *embedder.Embedder
	notifier  *notifier.Service
	matterIdx *matterpkg.Index

	httpClient *http.Client
	logger     *slog.Logger
}

// Deps bundles every component New needs, so a long constructor
// signature doesn't spill across call sites in cmd/civicpipe.
type Deps struct {
	ArchiveRoot      string
	MunicipalityID   int
	MunicipalitySlug string

	DB       *ent.Client
	Scraper  capability.Scraper
	Acquirer *acquirer.Acquirer
	Detector *changedetector.Detector
	Diarizer *diarizer.Diarizer
	Refiner  *refiner.Refiner
	Ingester *ingest.Ingester
	Embedder *embedder.Embedder
	Notifier *notifier.Service
	Matters  *matterpkg.Index
}

// New builds an Orchestrator. d.Matters should already be seeded
// (seedMatterIndex, or equivalent) with the municipality's known matters
// before the first Run/Update/Target call — New itself performs no I/O.
func New(d Deps) *Orchestrator {
	return &Orchestrator{
		archiveRoot:      d.ArchiveRoot,
		municipalityID:   d.MunicipalityID,
		municipalitySlug: d.MunicipalitySlug,
		db:               d.DB,
		scraper:          d.Scraper,
		acquirer:         d.Acquirer,
		detector:         d.Detector,
		diarizer:         d.Diarizer,
		refiner:          d.Refiner,
		ingester:         d.Ingester,
		embedder:         d.Embedder,
		notifier:         d.Notifier,
		matterIdx:        d.Matters,
		httpClient:       &http.Client{Timeout: 2 * time.Minute},
		logger:           slog.Default().With("component", "orchestrator", "municipality", d.MunicipalitySlug),
	}
}

// SeedMatterIndex loads every matter already on record into the
// orchestrator's matter index. Call once before the first Run/Update/
// Target invocation.
func (o *Orchestrator) SeedMatterIndex(ctx context.Context) error {
	return seedMatterIndex(ctx, o.db, o.municipalityID, o.matterIdx)
}

// Run drives phases 1-5 in order over the whole archive tree (§4.1).
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (Report, error) {
	var report Report

	if !opts.SkipDocs && o.scraper != nil {
		n, err := o.scrapeDocuments(ctx, time.Time{})
		if err != nil {
			o.logger.Error("scrape phase failed", "error", err)
		} else {
			o.logger.Info("scrape phase complete", "documents_downloaded", n)
		}
	}

	if o.acquirer != nil {
		acquireReport, err := o.acquirer.Run(ctx)
		if err != nil {
			o.logger.Error("acquire phase failed", "error", err)
		} else {
			o.logger.Info("acquire phase complete",
				"downloaded", len(acquireReport.Downloaded),
				"skipped", len(acquireReport.Skipped),
				"failed", len(acquireReport.Failed))
		}
	}

	folders, err := walkMeetingFolders(o.archiveRoot)
	if err != nil {
		return report, err
	}
	if opts.Limit > 0 && len(folders) > opts.Limit {
		folders = folders[:opts.Limit]
	}

	o.processFolders(ctx, folders, opts, false, &report)

	if !opts.SkipEmbed {
		report.EmbedErr = o.embedAll(ctx, opts.ForceUpdate)
	}
	return report, nil
}

// Update runs the change detector, then phases 2-5 (skipping scrape)
// only for the meetings it flags, with force_update semantics so every
// flagged meeting is fully reprocessed regardless of its prior state.
func (o *Orchestrator) Update(ctx context.Context) (Report, error) {
	var report Report

	changeReport, err := o.detector.DetectAll(ctx)
	if err != nil {
		return report, fmt.Errorf("detect changes: %w", err)
	}

	folders := changeReport.AffectedPaths()
	if len(folders) == 0 {
		o.logger.Info("update: no changes detected")
		return report, nil
	}
	o.logger.Info("update: processing flagged meetings", "count", len(folders))

	if o.acquirer != nil {
		if _, err := o.acquirer.Run(ctx); err != nil {
			o.logger.Error("acquire phase failed", "error", err)
		}
	}

	opts := RunOptions{ForceUpdate: true}
	o.processFolders(ctx, folders, opts, true, &report)
	report.EmbedErr = o.embedAll(ctx, true)
	return report, nil
}

// Target runs the pipeline for a single meeting, identified by
// filesystem path or store ID, skipping scrape and acquire (§4.1).
func (o *Orchestrator) Target(ctx context.Context, pathOrID string, update bool) (Report, error) {
	var report Report

	folder, err := resolveTarget(ctx, o.db, pathOrID)
	if err != nil {
		return report, err
	}

	opts := RunOptions{ForceUpdate: update}
	o.processFolders(ctx, []string{folder}, opts, update, &report)
	return report, nil
}

// processFolders runs processMeeting over every folder, isolating each
// meeting's failure (§4.1 failure policy: "the orchestrator never
// aborts the whole run on one meeting's failure").
func (o *Orchestrator) processFolders(ctx context.Context, folders []string, opts RunOptions, forceRefine bool, report *Report) {
	for _, folder := range folders {
		outcome, err := o.processMeeting(ctx, folder, opts, forceRefine || opts.ForceUpdate)
		if err != nil {
			outcome.Error = err
			o.logger.Error("meeting processing failed", "folder", folder, "error", err)
		} else {
			o.logger.Info("meeting processed", "folder", folder, "meeting_id", outcome.MeetingID)
		}
		report.Processed = append(report.Processed, outcome)
	}
}

// embedAll runs the embed phase (§4.11) over every registered table,
// logging a table's failure without aborting the rest — mirrors
// _embed_new_content's per-table try/except.
func (o *Orchestrator) embedAll(ctx context.Context, force bool) error {
	if o.embedder == nil {
		return nil
	}
	var firstErr error
	for _, table := range embedTables {
		stats, err := o.embedder.EmbedTable(ctx, table, force, -1)
		if err != nil {
			o.logger.Error("embed table failed", "table", table, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("embed %s: %w", table, err)
			}
			continue
		}
		o.logger.Info("embed table complete", "table", table, "processed", stats.Processed, "skipped", stats.Skipped)
	}
	return firstErr
}
