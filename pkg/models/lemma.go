package models

import "time"

// Lemma is a dictionary headword in one language
type Lemma struct {
	ID           int64     `json:"id" db:"id"`
	Language     string    `json:"language" db:"language"`
	Lemma        string    `json:"lemma" db:"lemma"`
	Slug         string    `json:"slug" db:"slug"`
	PartOfSpeech string    `json:"part_of_speech" db:"part_of_speech"`
	Gloss        string    `json:"gloss" db:"gloss"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Wordforms []Wordform `json:"wordforms,omitempty" db:"-"`
}
