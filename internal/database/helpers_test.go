package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/database/migrations"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db        *sqlx.DB
	lemmas    *database.LemmaRepository
	wordforms *database.WordformRepository
	phrases   *database.PhraseRepository
	sentences *database.SentenceRepository
	sources   *database.SourceRepository
	users     *database.UserRepository
	vocab     *database.VocabRepository
}

// newFixture returns repositories over a fully migrated SQLite database
// private to the test.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect("sqlite3", filepath.Join(t.TempDir(), "lemmabank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := migrations.NewMigrator(db)
	require.NoError(t, err)
	require.NoError(t, m.Up(context.Background()))

	return &fixture{
		db:        db,
		lemmas:    database.NewLemmaRepository(db),
		wordforms: database.NewWordformRepository(db),
		phrases:   database.NewPhraseRepository(db),
		sentences: database.NewSentenceRepository(db),
		sources:   database.NewSourceRepository(db),
		users:     database.NewUserRepository(db),
		vocab:     database.NewVocabRepository(db),
	}
}

func (f *fixture) lemma(t *testing.T, language, text string, forms ...string) *models.Lemma {
	t.Helper()
	ctx := context.Background()
	l := &models.Lemma{Language: language, Lemma: text}
	require.NoError(t, f.lemmas.Create(ctx, l))
	for _, form := range forms {
		require.NoError(t, f.wordforms.Create(ctx, &models.Wordform{LemmaID: l.ID, Wordform: form}))
	}
	return l
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}
