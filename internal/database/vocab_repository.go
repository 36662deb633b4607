package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/lemmabank/internal/srs"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
)

const vocabSelect = `
	SELECT v.id, v.user_id, v.lemma_id, v.phrase_id, v.easiness, v.interval_days, v.repetitions,
		v.due_at, v.last_reviewed_at, v.created_at, COALESCE(l.lemma, p.phrase, '') AS label
	FROM user_vocab v
	LEFT JOIN lemmas l ON l.id = v.lemma_id
	LEFT JOIN phrases p ON p.id = v.phrase_id`

// VocabRepository handles a user's personal vocabulary and its review state
type VocabRepository struct {
	db  *sqlx.DB
	sm2 *srs.SM2
}

// NewVocabRepository creates a new repository instance
func NewVocabRepository(db *sqlx.DB) *VocabRepository {
	return &VocabRepository{db: db, sm2: srs.NewSM2()}
}

// AddLemma puts a lemma in a user's vocabulary, due immediately
func (r *VocabRepository) AddLemma(ctx context.Context, userID, lemmaID int64) (*models.VocabItem, error) {
	return r.add(ctx, userID, &lemmaID, nil)
}

// AddPhrase puts a phrase in a user's vocabulary, due immediately
func (r *VocabRepository) AddPhrase(ctx context.Context, userID, phraseID int64) (*models.VocabItem, error) {
	return r.add(ctx, userID, nil, &phraseID)
}

func (r *VocabRepository) add(ctx context.Context, userID int64, lemmaID, phraseID *int64) (*models.VocabItem, error) {
	ts := now()
	id, err := insertID(ctx, r.db, `
		INSERT INTO user_vocab (user_id, lemma_id, phrase_id, easiness, interval_days, repetitions, due_at, created_at)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?)`,
		userID, lemmaID, phraseID, srs.DefaultEasiness, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to add vocabulary item: %w", translateError(err))
	}
	return r.Get(ctx, userID, id)
}

// Get returns one vocabulary item of a user
func (r *VocabRepository) Get(ctx context.Context, userID, id int64) (*models.VocabItem, error) {
	var item models.VocabItem
	if err := get(ctx, r.db, &item, vocabSelect+" WHERE v.user_id = ? AND v.id = ?", userID, id); err != nil {
		return nil, fmt.Errorf("failed to get vocabulary item %d: %w", id, err)
	}
	return &item, nil
}

// List returns every vocabulary item of a user, oldest first
func (r *VocabRepository) List(ctx context.Context, userID int64) ([]models.VocabItem, error) {
	var items []models.VocabItem
	if err := selectAll(ctx, r.db, &items, vocabSelect+" WHERE v.user_id = ? ORDER BY v.id", userID); err != nil {
		return nil, fmt.Errorf("failed to list vocabulary: %w", err)
	}
	return items, nil
}

// Review grades a vocabulary item at the given time and stores the next
// review state.
func (r *VocabRepository) Review(ctx context.Context, userID, id int64, quality srs.Quality, at time.Time) (*models.VocabItem, error) {
	item, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	at = at.UTC()
	next, err := r.sm2.Review(stateOf(*item), quality, at)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	err = execAffected(ctx, r.db, `
		UPDATE user_vocab SET easiness = ?, interval_days = ?, repetitions = ?, due_at = ?, last_reviewed_at = ?
		WHERE id = ? AND user_id = ?`,
		next.Easiness, next.IntervalDays, next.Repetitions, next.DueAt, at, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to store review of item %d: %w", id, err)
	}

	item.Easiness, item.IntervalDays, item.Repetitions, item.DueAt = next.Easiness, next.IntervalDays, next.Repetitions, next.DueAt
	item.LastReviewedAt = &at
	return item, nil
}

// Due returns the items due at the given time in review order
func (r *VocabRepository) Due(ctx context.Context, userID int64, at time.Time, limit int) ([]models.VocabItem, error) {
	var items []models.VocabItem
	err := selectAll(ctx, r.db, &items, vocabSelect+" WHERE v.user_id = ? AND v.due_at <= ? ORDER BY v.due_at, v.id",
		userID, at.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list due vocabulary: %w", err)
	}
	return srs.Prioritize(items, stateOf, limit), nil
}

// CountDue returns how many items of a user are due at the given time
func (r *VocabRepository) CountDue(ctx context.Context, userID int64, at time.Time) (int, error) {
	var count int
	err := get(ctx, r.db, &count, "SELECT COUNT(*) FROM user_vocab WHERE user_id = ? AND due_at <= ?", userID, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count due vocabulary: %w", err)
	}
	return count, nil
}

func stateOf(item models.VocabItem) srs.State {
	return srs.State{
		Easiness:     item.Easiness,
		IntervalDays: item.IntervalDays,
		Repetitions:  item.Repetitions,
		DueAt:        item.DueAt,
	}
}
