package migrations

import (
	"context"

	"github.com/example/lemmabank/internal/migrate"
)

var initialSchema = migrate.Migration{
	Version: 1,
	Name:    "initial_schema",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				public_id TEXT NOT NULL UNIQUE,
				username TEXT NOT NULL UNIQUE,
				display_name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE sources (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				url TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL DEFAULT '',
				created_by INTEGER REFERENCES users(id) ON DELETE SET NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE lemmas (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				language TEXT NOT NULL,
				lemma TEXT NOT NULL,
				part_of_speech TEXT NOT NULL DEFAULT '',
				gloss TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_lemmas_language_lemma ON lemmas(language, lemma);

			CREATE TABLE wordforms (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				lemma_id INTEGER NOT NULL REFERENCES lemmas(id) ON DELETE CASCADE,
				language TEXT NOT NULL,
				form TEXT NOT NULL,
				grammatical_info TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_wordforms_language_form ON wordforms(language, form);
			CREATE INDEX idx_wordforms_lemma ON wordforms(lemma_id);

			CREATE TABLE phrases (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				language TEXT NOT NULL,
				phrase TEXT NOT NULL,
				translation TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_phrases_language ON phrases(language);

			CREATE TABLE sentences (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				language TEXT NOT NULL,
				sentence TEXT NOT NULL,
				translation TEXT NOT NULL DEFAULT '',
				source_id INTEGER REFERENCES sources(id) ON DELETE CASCADE,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_sentences_source ON sentences(source_id, position);

			CREATE TABLE sentence_wordforms (
				sentence_id INTEGER NOT NULL REFERENCES sentences(id) ON DELETE CASCADE,
				wordform_id INTEGER NOT NULL REFERENCES wordforms(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				PRIMARY KEY (sentence_id, position)
			);
			CREATE INDEX idx_sentence_wordforms_wordform ON sentence_wordforms(wordform_id);
		`)
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Schema(ctx, `
			DROP TABLE sentence_wordforms;
			DROP TABLE sentences;
			DROP TABLE phrases;
			DROP TABLE wordforms;
			DROP TABLE lemmas;
			DROP TABLE sources;
			DROP TABLE users;
		`)
	},
}
