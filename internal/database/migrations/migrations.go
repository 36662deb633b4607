// Package migrations holds the lemmabank schema history, oldest first.
package migrations

import (
	"github.com/example/lemmabank/internal/migrate"
	"github.com/jmoiron/sqlx"
)

// All returns every migration of the lemmabank schema.
func All() []migrate.Migration {
	return []migrate.Migration{
		initialSchema,
		addLemmaSlugs,
		addSourceSlugs,
		renameWordformForm,
		dedupeWordformsNFC,
		addUserVocab,
		tightenLemmaSlug,
		addUserLanguages,
	}
}

// NewMigrator returns a migrator loaded with the full schema history.
func NewMigrator(db *sqlx.DB) (*migrate.Migrator, error) {
	return migrate.New(db, All()...)
}
