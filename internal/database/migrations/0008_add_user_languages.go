package migrations

import (
	"context"

	"github.com/example/lemmabank/internal/migrate"
)

var addUserLanguages = migrate.Migration{
	Version: 8,
	Name:    "add_user_languages",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			ALTER TABLE users ADD COLUMN native_language TEXT NOT NULL DEFAULT 'en';
			ALTER TABLE users ADD COLUMN target_language TEXT NOT NULL DEFAULT '';
			ALTER TABLE users ADD COLUMN telegram_chat_id BIGINT;
			ALTER TABLE sources ADD COLUMN language TEXT NOT NULL DEFAULT '';
			ALTER TABLE sources ADD COLUMN image_path TEXT NOT NULL DEFAULT '';
			ALTER TABLE sources ADD COLUMN sentence_count INTEGER NOT NULL DEFAULT 0;
			ALTER TABLE sources ADD COLUMN token_count INTEGER NOT NULL DEFAULT 0;
		`)
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			ALTER TABLE sources DROP COLUMN token_count;
			ALTER TABLE sources DROP COLUMN sentence_count;
			ALTER TABLE sources DROP COLUMN image_path;
			ALTER TABLE sources DROP COLUMN language;
			ALTER TABLE users DROP COLUMN telegram_chat_id;
			ALTER TABLE users DROP COLUMN target_language;
			ALTER TABLE users DROP COLUMN native_language;
		`)
	},
}
