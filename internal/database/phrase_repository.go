package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/unicode/norm"
)

const phraseColumns = "id, language, phrase, translation, created_at"

// PhraseRepository handles database operations for phrases
type PhraseRepository struct {
	db *sqlx.DB
}

// NewPhraseRepository creates a new repository instance
func NewPhraseRepository(db *sqlx.DB) *PhraseRepository {
	return &PhraseRepository{db: db}
}

// Create inserts a new phrase
func (r *PhraseRepository) Create(ctx context.Context, p *models.Phrase) error {
	p.Phrase = norm.NFC.String(strings.TrimSpace(p.Phrase))
	if p.Phrase == "" || p.Language == "" {
		return fmt.Errorf("%w: phrase and language are required", ErrInvalid)
	}
	p.CreatedAt = now()
	id, err := insertID(ctx, r.db,
		"INSERT INTO phrases (language, phrase, translation, created_at) VALUES (?, ?, ?, ?)",
		p.Language, p.Phrase, p.Translation, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create phrase: %w", translateError(err))
	}
	p.ID = id
	return nil
}

// GetByID returns a phrase by ID
func (r *PhraseRepository) GetByID(ctx context.Context, id int64) (*models.Phrase, error) {
	var p models.Phrase
	if err := get(ctx, r.db, &p, "SELECT "+phraseColumns+" FROM phrases WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get phrase %d: %w", id, err)
	}
	return &p, nil
}

// ListByLanguage returns a page of phrases, newest first
func (r *PhraseRepository) ListByLanguage(ctx context.Context, language string, page Page) ([]models.Phrase, error) {
	page = page.Normalize()
	var phrases []models.Phrase
	err := selectAll(ctx, r.db, &phrases,
		"SELECT "+phraseColumns+" FROM phrases WHERE language = ? ORDER BY id DESC LIMIT ? OFFSET ?",
		language, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list phrases: %w", err)
	}
	return phrases, nil
}
