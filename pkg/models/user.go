package models

import "time"

// User is a learner profile
type User struct {
	ID             int64     `json:"-" db:"id"`
	PublicID       string    `json:"id" db:"public_id"`
	Username       string    `json:"username" db:"username"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	NativeLanguage string    `json:"native_language" db:"native_language"`
	TargetLanguage string    `json:"target_language" db:"target_language"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
