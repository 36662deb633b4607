package migrations

import (
	"context"
	"fmt"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/migrate"
	"github.com/example/lemmabank/internal/slug"
)

// tightenLemmaSlug makes lemmas.slug NOT NULL. SQLite cannot alter a column
// constraint in place, so the table is rebuilt with foreign keys switched off.
var tightenLemmaSlug = migrate.Migration{
	Version:       7,
	Name:          "tighten_lemma_slug",
	NoForeignKeys: true,
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		if err := fillMissingSlugs(ctx, tx); err != nil {
			return err
		}
		if tx.Dialect() == database.Postgres {
			return tx.Exec(ctx, "ALTER TABLE lemmas ALTER COLUMN slug SET NOT NULL")
		}
		return rebuildLemmas(ctx, tx, "slug TEXT NOT NULL")
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		if tx.Dialect() == database.Postgres {
			return tx.Exec(ctx, "ALTER TABLE lemmas ALTER COLUMN slug DROP NOT NULL")
		}
		return rebuildLemmas(ctx, tx, "slug TEXT")
	},
}

// fillMissingSlugs gives a slug to rows written by an older build between
// migrations 2 and 7, avoiding the slugs already taken in their language.
func fillMissingSlugs(ctx context.Context, tx *migrate.Tx) error {
	var lemmas []struct {
		ID       int64  `db:"id"`
		Language string `db:"language"`
		Lemma    string `db:"lemma"`
	}
	err := tx.Select(ctx, &lemmas, "SELECT id, language, lemma FROM lemmas WHERE slug IS NULL OR slug = '' ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to read lemmas without slug: %w", err)
	}

	for _, l := range lemmas {
		s, err := slug.Unique(slug.Make(l.Lemma), func(candidate string) (bool, error) {
			var count int
			err := tx.Get(ctx, &count, "SELECT COUNT(*) FROM lemmas WHERE language = ? AND slug = ?", l.Language, candidate)
			return count > 0, err
		})
		if err != nil {
			return fmt.Errorf("failed to pick slug for lemma %d: %w", l.ID, err)
		}
		if err := tx.Exec(ctx, "UPDATE lemmas SET slug = ? WHERE id = ?", s, l.ID); err != nil {
			return fmt.Errorf("failed to fill slug for lemma %d: %w", l.ID, err)
		}
	}
	return nil
}

// rebuildLemmas recreates the SQLite lemmas table with the given slug column
// definition, keeping ids so that wordform and vocabulary references stay valid.
func rebuildLemmas(ctx context.Context, tx *migrate.Tx, slugColumn string) error {
	return tx.Schema(ctx, fmt.Sprintf(`
		CREATE TABLE lemmas_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			language TEXT NOT NULL,
			lemma TEXT NOT NULL,
			%s,
			part_of_speech TEXT NOT NULL DEFAULT '',
			gloss TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO lemmas_new (id, language, lemma, slug, part_of_speech, gloss, created_at, updated_at)
			SELECT id, language, lemma, slug, part_of_speech, gloss, created_at, updated_at FROM lemmas;
		DROP TABLE lemmas;
		ALTER TABLE lemmas_new RENAME TO lemmas;
		CREATE INDEX idx_lemmas_language_lemma ON lemmas(language, lemma);
		CREATE UNIQUE INDEX idx_lemmas_language_slug ON lemmas(language, slug);
	`, slugColumn))
}
