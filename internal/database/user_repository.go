package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/lemmabank/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, public_id, username, display_name, native_language, target_language,
	telegram_chat_id, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user with a random public id
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if u.NativeLanguage == "" {
		u.NativeLanguage = "en"
	}
	u.PublicID = uuid.NewString()
	ts := now()

	id, err := insertID(ctx, r.db, `
		INSERT INTO users (public_id, username, display_name, native_language, target_language,
			telegram_chat_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.PublicID, u.Username, u.DisplayName, u.NativeLanguage, u.TargetLanguage, u.TelegramChatID, ts, ts)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, ts, ts
	return nil
}

// GetByPublicID returns a user by public id
func (r *UserRepository) GetByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	var u models.User
	if err := get(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE public_id = ?", publicID); err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", publicID, err)
	}
	return &u, nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := get(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

// Update modifies the profile of a user. Username and public id never change.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = now()
	err := execAffected(ctx, r.db, `
		UPDATE users SET display_name = ?, native_language = ?, target_language = ?,
			telegram_chat_id = ?, updated_at = ?
		WHERE id = ?`,
		u.DisplayName, u.NativeLanguage, u.TargetLanguage, u.TelegramChatID, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", u.ID, err)
	}
	return nil
}

// ListForDigest returns the users that linked a Telegram chat
func (r *UserRepository) ListForDigest(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := selectAll(ctx, r.db, &users,
		"SELECT "+userColumns+" FROM users WHERE telegram_chat_id IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByChatID returns the user that linked the given Telegram chat
func (r *UserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var u models.User
	if err := get(ctx, r.db, &u, "SELECT "+userColumns+" FROM users WHERE telegram_chat_id = ?", chatID); err != nil {
		return nil, fmt.Errorf("failed to get user for chat %d: %w", chatID, err)
	}
	return &u, nil
}
