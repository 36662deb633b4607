package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/srs"
	"github.com/example/lemmabank/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabAddEnforcesUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana")
	l := f.lemma(t, "es", "hablar")
	p := &models.Phrase{Language: "es", Phrase: "de nada", Translation: "you're welcome"}
	require.NoError(t, f.phrases.Create(ctx, p))

	item, err := f.vocab.AddLemma(ctx, u.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "hablar", item.Label)
	assert.Equal(t, srs.DefaultEasiness, item.Easiness)
	require.NotNil(t, item.LemmaID)
	assert.Nil(t, item.PhraseID)

	_, err = f.vocab.AddLemma(ctx, u.ID, l.ID)
	assert.ErrorIs(t, err, database.ErrConflict)

	phrase, err := f.vocab.AddPhrase(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "de nada", phrase.Label)

	_, err = f.vocab.AddPhrase(ctx, u.ID, p.ID)
	assert.ErrorIs(t, err, database.ErrConflict)

	_, err = f.vocab.AddLemma(ctx, u.ID, 9999)
	assert.ErrorIs(t, err, database.ErrInvalid)

	items, err := f.vocab.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestVocabReviewAndDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ana")
	other := f.user(t, "ben")
	first, err := f.vocab.AddLemma(ctx, u.ID, f.lemma(t, "es", "uno").ID)
	require.NoError(t, err)
	second, err := f.vocab.AddLemma(ctx, u.ID, f.lemma(t, "es", "dos").ID)
	require.NoError(t, err)

	at := time.Now().Add(time.Minute)
	due, err := f.vocab.Due(ctx, u.ID, at, 10)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	reviewed, err := f.vocab.Review(ctx, u.ID, first.ID, srs.QualityPerfect, at)
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.Repetitions)
	assert.Equal(t, 1, reviewed.IntervalDays)
	assert.InDelta(t, 2.6, reviewed.Easiness, 1e-9)
	require.NotNil(t, reviewed.LastReviewedAt)

	due, err = f.vocab.Due(ctx, u.ID, at, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, second.ID, due[0].ID)

	count, err := f.vocab.CountDue(ctx, u.ID, at.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := f.vocab.Get(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Repetitions)
	assert.WithinDuration(t, at.AddDate(0, 0, 1), stored.DueAt, time.Second)

	_, err = f.vocab.Review(ctx, other.ID, first.ID, srs.QualityPerfect, at)
	assert.ErrorIs(t, err, database.ErrNotFound, "items belong to their user")

	_, err = f.vocab.Review(ctx, u.ID, first.ID, srs.Quality(9), at)
	assert.ErrorIs(t, err, database.ErrInvalid)
}
