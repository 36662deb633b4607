package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/lemmabank/internal/slug"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
)

const sourceColumns = `id, title, slug, url, body, language, image_path, sentence_count, token_count,
	created_by, created_at, updated_at`

// body is left out of listings
const sourceListColumns = `id, title, slug, url, '' AS body, language, image_path, sentence_count, token_count,
	created_by, created_at, updated_at`

// SourceRepository handles database operations for sources
type SourceRepository struct {
	db *sqlx.DB
}

// NewSourceRepository creates a new repository instance
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Create stores a source with a globally unique slug, followed by its
// sentences in reading order. Sentence and token counts are filled in.
func (r *SourceRepository) Create(ctx context.Context, src *models.Source, sentences []string) error {
	src.Title = strings.TrimSpace(src.Title)
	if src.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if len(sentences) > 0 && src.Language == "" {
		return fmt.Errorf("%w: language is required for a source with text", ErrInvalid)
	}

	for attempt := 0; ; attempt++ {
		err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
			return r.insert(ctx, tx, src, sentences)
		})
		if IsUniqueViolation(err) && attempt < slugAttempts {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create source: %w", translateError(err))
		}
		return nil
	}
}

func (r *SourceRepository) insert(ctx context.Context, tx *sqlx.Tx, src *models.Source, sentences []string) error {
	s, err := slug.Unique(slug.Make(src.Title), func(candidate string) (bool, error) {
		var count int
		err := get(ctx, tx, &count, "SELECT COUNT(*) FROM sources WHERE slug = ?", candidate)
		return count > 0, err
	})
	if err != nil {
		return err
	}

	ts := now()
	id, err := insertID(ctx, tx, `
		INSERT INTO sources (title, slug, url, body, language, image_path, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		src.Title, s, src.URL, src.Body, src.Language, src.ImagePath, src.CreatedBy, ts, ts)
	if err != nil {
		return err
	}
	src.ID, src.Slug, src.CreatedAt, src.UpdatedAt = id, s, ts, ts

	tokens := 0
	for i, text := range sentences {
		sentence := &models.Sentence{
			Language: src.Language,
			Sentence: text,
			SourceID: &src.ID,
			Position: i,
		}
		n, err := insertSentence(ctx, tx, sentence)
		if err != nil {
			return err
		}
		tokens += n
	}
	src.SentenceCount = len(sentences)
	src.TokenCount = tokens

	_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE sources SET sentence_count = ?, token_count = ? WHERE id = ?"),
		src.SentenceCount, src.TokenCount, src.ID)
	return err
}

// GetByID returns a source by ID
func (r *SourceRepository) GetByID(ctx context.Context, id int64) (*models.Source, error) {
	var src models.Source
	if err := get(ctx, r.db, &src, "SELECT "+sourceColumns+" FROM sources WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get source %d: %w", id, err)
	}
	return &src, nil
}

// GetBySlug returns a source by slug
func (r *SourceRepository) GetBySlug(ctx context.Context, s string) (*models.Source, error) {
	var src models.Source
	if err := get(ctx, r.db, &src, "SELECT "+sourceColumns+" FROM sources WHERE slug = ?", s); err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", s, err)
	}
	return &src, nil
}

// List returns a page of sources, newest first, without their bodies
func (r *SourceRepository) List(ctx context.Context, page Page) ([]models.Source, error) {
	page = page.Normalize()
	var sources []models.Source
	err := selectAll(ctx, r.db, &sources,
		"SELECT "+sourceListColumns+" FROM sources ORDER BY id DESC LIMIT ? OFFSET ?",
		page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// IDs returns the ids of every source
func (r *SourceRepository) IDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := selectAll(ctx, r.db, &ids, "SELECT id FROM sources ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list source ids: %w", err)
	}
	return ids, nil
}

// SetImage records the stored image of a source
func (r *SourceRepository) SetImage(ctx context.Context, id int64, path string) error {
	err := execAffected(ctx, r.db, "UPDATE sources SET image_path = ?, updated_at = ? WHERE id = ?", path, now(), id)
	if err != nil {
		return fmt.Errorf("failed to set image of source %d: %w", id, err)
	}
	return nil
}

// RefreshStats recomputes the sentence and linked token counts of every
// source and returns the number of sources updated.
func (r *SourceRepository) RefreshStats(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sources SET
			sentence_count = (SELECT COUNT(*) FROM sentences s WHERE s.source_id = sources.id),
			token_count = (
				SELECT COUNT(*) FROM sentence_wordforms sw
				JOIN sentences s ON s.id = sw.sentence_id
				WHERE s.source_id = sources.id
			)`)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh source stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
