package migrations

import (
	"context"

	"github.com/example/lemmabank/internal/migrate"
)

// A vocabulary entry points at a lemma or at a phrase, never both. The check
// constraint enforces exclusivity and the partial unique indexes keep each
// lemma and each phrase at most once per user.
var addUserVocab = migrate.Migration{
	Version: 6,
	Name:    "add_user_vocab",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			CREATE TABLE user_vocab (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				lemma_id INTEGER REFERENCES lemmas(id) ON DELETE CASCADE,
				phrase_id INTEGER REFERENCES phrases(id) ON DELETE CASCADE,
				easiness DOUBLE PRECISION NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 0,
				repetitions INTEGER NOT NULL DEFAULT 0,
				due_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_reviewed_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CHECK ((lemma_id IS NULL) <> (phrase_id IS NULL))
			);
			CREATE UNIQUE INDEX idx_user_vocab_lemma ON user_vocab(user_id, lemma_id) WHERE lemma_id IS NOT NULL;
			CREATE UNIQUE INDEX idx_user_vocab_phrase ON user_vocab(user_id, phrase_id) WHERE phrase_id IS NOT NULL;
			CREATE INDEX idx_user_vocab_due ON user_vocab(user_id, due_at);
		`)
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Exec(ctx, "DROP TABLE user_vocab")
	},
}
