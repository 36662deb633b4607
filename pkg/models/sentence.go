package models

import "time"

// Sentence is an example or source sentence
type Sentence struct {
	ID          int64     `json:"id" db:"id"`
	Language    string    `json:"language" db:"language"`
	Sentence    string    `json:"sentence" db:"sentence"`
	Translation string    `json:"translation" db:"translation"`
	SourceID    *int64    `json:"source_id,omitempty" db:"source_id"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
