package models

import "time"

// Phrase is a multi-word expression learned as a unit
type Phrase struct {
	ID          int64     `json:"id" db:"id"`
	Language    string    `json:"language" db:"language"`
	Phrase      string    `json:"phrase" db:"phrase"`
	Translation string    `json:"translation" db:"translation"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
