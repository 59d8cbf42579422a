package main

import (
	"context"
	"fmt"

	"github.com/viewroyal/civicpipe/ent"
	"github.com/viewroyal/civicpipe/ent/municipality"
	"github.com/viewroyal/civicpipe/pkg/config"
)

// resolveMunicipality finds or creates the Municipality row backing cfg,
// the same query-then-branch idiom pkg/ingest.upsertMeeting uses: an
// operator onboards a municipality by adding it to civicpipe.yaml, and
// the first run against that slug creates its database row.
func resolveMunicipality(ctx context.Context, db *ent.Client, cfg *config.MunicipalityConfig) (*ent.Municipality, error) {
	existing, err := db.Municipality.Query().Where(municipality.SlugEQ(cfg.Slug)).Only(ctx)
	if err == nil {
		update := db.Municipality.UpdateOneID(existing.ID).
			SetName(cfg.Name).
			SetSourceConfig(municipalitySourceConfig(cfg))
		if err := update.Exec(ctx); err != nil {
			return nil, fmt.Errorf("update municipality %s: %w", cfg.Slug, err)
		}
		return db.Municipality.Get(ctx, existing.ID)
	}
	if !ent.IsNotFound(err) {
		return nil, fmt.Errorf("query municipality %s: %w", cfg.Slug, err)
	}

	created, err := db.Municipality.Create().
		SetSlug(cfg.Slug).
		SetName(cfg.Name).
		SetSourceConfig(municipalitySourceConfig(cfg)).
		Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create municipality %s: %w", cfg.Slug, err)
	}
	return created, nil
}

// municipalitySourceConfig mirrors the scraper/video-catalog/archive-root
// shape the municipality.source_config JSON column documents, so the
// persisted row stays a readable record of how the municipality was
// configured at the time of its last run.
func municipalitySourceConfig(cfg *config.MunicipalityConfig) map[string]interface{} {
	return map[string]interface{}{
		"archive_root":          cfg.ArchiveRoot,
		"scraper_backend":       cfg.Scraper.Backend,
		"scraper_base_url":      cfg.Scraper.BaseURL,
		"video_catalog_backend": cfg.VideoCatalog.Backend,
	}
}
