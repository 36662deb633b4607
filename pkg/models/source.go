package models

import "time"

// Source is a document a learner reads: an article, a book chapter or a photographed page
type Source struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Slug          string    `json:"slug" db:"slug"`
	URL           string    `json:"url,omitempty" db:"url"`
	Body          string    `json:"body,omitempty" db:"body"`
	Language      string    `json:"language" db:"language"`
	ImagePath     string    `json:"image_path,omitempty" db:"image_path"`
	SentenceCount int       `json:"sentence_count" db:"sentence_count"`
	TokenCount    int       `json:"token_count" db:"token_count"` // word tokens linked to a known wordform
	CreatedBy     *int64    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
