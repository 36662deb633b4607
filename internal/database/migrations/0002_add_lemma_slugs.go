package migrations

import (
	"context"
	"fmt"

	"github.com/example/lemmabank/internal/migrate"
	"github.com/example/lemmabank/internal/slug"
)

var addLemmaSlugs = migrate.Migration{
	Version: 2,
	Name:    "add_lemma_slugs",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		if err := tx.Exec(ctx, "ALTER TABLE lemmas ADD COLUMN slug TEXT"); err != nil {
			return err
		}

		var lemmas []struct {
			ID       int64  `db:"id"`
			Language string `db:"language"`
			Lemma    string `db:"lemma"`
		}
		if err := tx.Select(ctx, &lemmas, "SELECT id, language, lemma FROM lemmas ORDER BY id"); err != nil {
			return fmt.Errorf("failed to read lemmas: %w", err)
		}

		// Slugs are unique per language; the oldest lemma keeps the bare slug.
		perLanguage := make(map[string]slug.Set)
		for _, l := range lemmas {
			set, ok := perLanguage[l.Language]
			if !ok {
				set = slug.Set{}
				perLanguage[l.Language] = set
			}
			if err := tx.Exec(ctx, "UPDATE lemmas SET slug = ? WHERE id = ?", set.Claim(l.Lemma), l.ID); err != nil {
				return fmt.Errorf("failed to backfill slug for lemma %d: %w", l.ID, err)
			}
		}

		return tx.Exec(ctx, "CREATE UNIQUE INDEX idx_lemmas_language_slug ON lemmas(language, slug)")
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			DROP INDEX idx_lemmas_language_slug;
			ALTER TABLE lemmas DROP COLUMN slug;
		`)
	},
}
