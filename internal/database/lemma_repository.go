package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/lemmabank/internal/slug"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/unicode/norm"
)

const lemmaColumns = "id, language, lemma, slug, part_of_speech, gloss, created_at, updated_at"

// slugAttempts bounds retries when a concurrent insert takes the slug we picked.
const slugAttempts = 3

// LemmaRepository handles database operations for lemmas
type LemmaRepository struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewLemmaRepository creates a new repository instance
func NewLemmaRepository(db *sqlx.DB) *LemmaRepository {
	return &LemmaRepository{db: db, dialect: DialectOf(db)}
}

// Create inserts a lemma and assigns it a slug unique within its language.
func (r *LemmaRepository) Create(ctx context.Context, l *models.Lemma) error {
	for attempt := 0; ; attempt++ {
		err := insertLemma(ctx, r.db, l)
		if IsUniqueViolation(err) && attempt < slugAttempts {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create lemma: %w", translateError(err))
		}
		return nil
	}
}

// CreateWithWordforms inserts a lemma together with its wordforms in one
// transaction. Forms that coincide after normalisation are stored once.
// Either everything is stored or nothing is.
func (r *LemmaRepository) CreateWithWordforms(ctx context.Context, l *models.Lemma, forms []string) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertLemma(ctx, tx, l); err != nil {
			return err
		}
		l.Wordforms = make([]models.Wordform, 0, len(forms))
		seen := make(map[string]struct{}, len(forms))
		for _, form := range forms {
			wf := models.Wordform{LemmaID: l.ID, Wordform: form}
			key := norm.NFC.String(strings.TrimSpace(form))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if err := insertWordform(ctx, tx, &wf); err != nil {
				return err
			}
			l.Wordforms = append(l.Wordforms, wf)
		}
		return nil
	})
	if err != nil {
		l.ID, l.Slug, l.Wordforms = 0, "", nil
		return fmt.Errorf("failed to create lemma: %w", translateError(err))
	}
	return nil
}

// insertLemma normalises l, picks a free slug and inserts the row through q.
func insertLemma(ctx context.Context, q sqlx.ExtContext, l *models.Lemma) error {
	l.Lemma = norm.NFC.String(strings.TrimSpace(l.Lemma))
	l.Language = strings.TrimSpace(l.Language)
	if l.Lemma == "" || l.Language == "" {
		return fmt.Errorf("%w: lemma and language are required", ErrInvalid)
	}

	s, err := slug.Unique(slug.Make(l.Lemma), func(candidate string) (bool, error) {
		return slugTaken(ctx, q, l.Language, candidate)
	})
	if err != nil {
		return fmt.Errorf("failed to pick slug: %w", err)
	}

	ts := now()
	id, err := insertID(ctx, q, `
		INSERT INTO lemmas (language, lemma, slug, part_of_speech, gloss, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Language, l.Lemma, s, l.PartOfSpeech, l.Gloss, ts, ts)
	if err != nil {
		return err
	}
	l.ID, l.Slug, l.CreatedAt, l.UpdatedAt = id, s, ts, ts
	return nil
}

func slugTaken(ctx context.Context, q sqlx.ExtContext, language, s string) (bool, error) {
	var count int
	err := get(ctx, q, &count, "SELECT COUNT(*) FROM lemmas WHERE language = ? AND slug = ?", language, s)
	return count > 0, err
}

// GetByID returns a lemma by ID
func (r *LemmaRepository) GetByID(ctx context.Context, id int64) (*models.Lemma, error) {
	var l models.Lemma
	if err := get(ctx, r.db, &l, "SELECT "+lemmaColumns+" FROM lemmas WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get lemma %d: %w", id, err)
	}
	return &l, nil
}

// GetBySlug returns the lemma with the given slug in a language
func (r *LemmaRepository) GetBySlug(ctx context.Context, language, s string) (*models.Lemma, error) {
	var l models.Lemma
	err := get(ctx, r.db, &l, "SELECT "+lemmaColumns+" FROM lemmas WHERE language = ? AND slug = ?", language, s)
	if err != nil {
		return nil, fmt.Errorf("failed to get lemma %s/%s: %w", language, s, err)
	}
	return &l, nil
}

// FindByText returns the lemmas spelled exactly like text, homographs included.
func (r *LemmaRepository) FindByText(ctx context.Context, language, text string) ([]models.Lemma, error) {
	var lemmas []models.Lemma
	err := selectAll(ctx, r.db, &lemmas,
		"SELECT "+lemmaColumns+" FROM lemmas WHERE language = ? AND lemma = ? ORDER BY id",
		language, norm.NFC.String(strings.TrimSpace(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to find lemma: %w", err)
	}
	return lemmas, nil
}

// ListByLanguage returns a page of lemmas ordered alphabetically
func (r *LemmaRepository) ListByLanguage(ctx context.Context, language string, page Page) ([]models.Lemma, error) {
	page = page.Normalize()
	var lemmas []models.Lemma
	err := selectAll(ctx, r.db, &lemmas,
		"SELECT "+lemmaColumns+" FROM lemmas WHERE language = ? ORDER BY lemma, id LIMIT ? OFFSET ?",
		language, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lemmas: %w", err)
	}
	return lemmas, nil
}

// Search returns lemmas starting with prefix, case-insensitively where the
// database supports it.
func (r *LemmaRepository) Search(ctx context.Context, language, prefix string, page Page) ([]models.Lemma, error) {
	page = page.Normalize()
	pattern := escapeLike(norm.NFC.String(strings.TrimSpace(prefix))) + "%"
	query := fmt.Sprintf(
		"SELECT %s FROM lemmas WHERE language = ? AND lemma %s ? ESCAPE '\\' ORDER BY lemma, id LIMIT ? OFFSET ?",
		lemmaColumns, likeOperator(r.dialect))

	var lemmas []models.Lemma
	if err := selectAll(ctx, r.db, &lemmas, query, language, pattern, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("failed to search lemmas: %w", err)
	}
	return lemmas, nil
}

// Count returns the number of lemmas in a language
func (r *LemmaRepository) Count(ctx context.Context, language string) (int, error) {
	var count int
	if err := get(ctx, r.db, &count, "SELECT COUNT(*) FROM lemmas WHERE language = ?", language); err != nil {
		return 0, fmt.Errorf("failed to count lemmas: %w", err)
	}
	return count, nil
}

// Update modifies the text, part of speech and gloss of a lemma. The slug is
// kept so that links to the lemma stay valid.
func (r *LemmaRepository) Update(ctx context.Context, l *models.Lemma) error {
	l.Lemma = norm.NFC.String(strings.TrimSpace(l.Lemma))
	if l.Lemma == "" {
		return fmt.Errorf("%w: lemma is required", ErrInvalid)
	}
	l.UpdatedAt = now()
	err := execAffected(ctx, r.db,
		"UPDATE lemmas SET lemma = ?, part_of_speech = ?, gloss = ?, updated_at = ? WHERE id = ?",
		l.Lemma, l.PartOfSpeech, l.Gloss, l.UpdatedAt, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update lemma %d: %w", l.ID, err)
	}
	return nil
}

// Delete removes a lemma together with its wordforms and vocabulary entries
func (r *LemmaRepository) Delete(ctx context.Context, id int64) error {
	if err := execAffected(ctx, r.db, "DELETE FROM lemmas WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete lemma %d: %w", id, err)
	}
	return nil
}

// GetOrCreate returns the lemma spelled text with the given part of speech,
// creating it when missing. The boolean reports whether it was created.
func (r *LemmaRepository) GetOrCreate(ctx context.Context, l *models.Lemma) (bool, error) {
	existing, err := r.FindByText(ctx, l.Language, l.Lemma)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if l.PartOfSpeech == "" || e.PartOfSpeech == l.PartOfSpeech {
			*l = e
			return false, nil
		}
	}
	if err := r.Create(ctx, l); err != nil {
		return false, err
	}
	return true, nil
}
