package migrations

import (
	"context"
	"fmt"

	"github.com/example/lemmabank/internal/migrate"
	"github.com/example/lemmabank/internal/slug"
)

var addSourceSlugs = migrate.Migration{
	Version: 3,
	Name:    "add_source_slugs",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		if err := tx.Exec(ctx, "ALTER TABLE sources ADD COLUMN slug TEXT"); err != nil {
			return err
		}

		var sources []struct {
			ID    int64  `db:"id"`
			Title string `db:"title"`
		}
		if err := tx.Select(ctx, &sources, "SELECT id, title FROM sources ORDER BY id"); err != nil {
			return fmt.Errorf("failed to read sources: %w", err)
		}

		taken := slug.Set{}
		for _, s := range sources {
			if err := tx.Exec(ctx, "UPDATE sources SET slug = ? WHERE id = ?", taken.Claim(s.Title), s.ID); err != nil {
				return fmt.Errorf("failed to backfill slug for source %d: %w", s.ID, err)
			}
		}

		return tx.Exec(ctx, "CREATE UNIQUE INDEX idx_sources_slug ON sources(slug)")
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			DROP INDEX idx_sources_slug;
			ALTER TABLE sources DROP COLUMN slug;
		`)
	},
}
