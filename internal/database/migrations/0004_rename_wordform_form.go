package migrations

import (
	"context"

	"github.com/example/lemmabank/internal/migrate"
)

var renameWordformForm = migrate.Migration{
	Version: 4,
	Name:    "rename_wordform_form",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Exec(ctx, "ALTER TABLE wordforms RENAME COLUMN form TO wordform")
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Exec(ctx, "ALTER TABLE wordforms RENAME COLUMN wordform TO form")
	},
}
