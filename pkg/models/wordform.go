package models

import "time"

// Wordform is an inflected surface form of a lemma
type Wordform struct {
	ID              int64     `json:"id" db:"id"`
	LemmaID         int64     `json:"lemma_id" db:"lemma_id"`
	Language        string    `json:"language" db:"language"`
	Wordform        string    `json:"wordform" db:"wordform"`
	GrammaticalInfo string    `json:"grammatical_info" db:"grammatical_info"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// WordformMatch is a wordform found by surface lookup together with its lemma
type WordformMatch struct {
	Wordform
	LemmaSlug string `json:"lemma_slug" db:"lemma_slug"`
	Lemma     string `json:"lemma" db:"lemma"`
}
