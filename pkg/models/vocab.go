package models

import "time"

// VocabItem is a lemma or a phrase in a user's personal vocabulary,
// carrying its SM-2 review state. Exactly one of LemmaID and PhraseID is set.
type VocabItem struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"-" db:"user_id"`
	LemmaID        *int64     `json:"lemma_id,omitempty" db:"lemma_id"`
	PhraseID       *int64     `json:"phrase_id,omitempty" db:"phrase_id"`
	Easiness       float64    `json:"easiness" db:"easiness"`
	IntervalDays   int        `json:"interval_days" db:"interval_days"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	DueAt          time.Time  `json:"due_at" db:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	Label string `json:"label" db:"label"` // lemma or phrase text, filled by listing queries
}
