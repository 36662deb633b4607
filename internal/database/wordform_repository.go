package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/lemmabank/internal/segment"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/text/unicode/norm"
)

const wordformColumns = "id, lemma_id, language, wordform, grammatical_info, created_at"

// WordformRepository handles database operations for wordforms
type WordformRepository struct {
	db *sqlx.DB
}

// NewWordformRepository creates a new repository instance
func NewWordformRepository(db *sqlx.DB) *WordformRepository {
	return &WordformRepository{db: db}
}

// Create adds a wordform to a lemma. The form is stored in NFC and inherits
// the lemma's language.
func (r *WordformRepository) Create(ctx context.Context, w *models.Wordform) error {
	if err := insertWordform(ctx, r.db, w); err != nil {
		return fmt.Errorf("failed to create wordform: %w", translateError(err))
	}
	return nil
}

func insertWordform(ctx context.Context, q sqlx.ExtContext, w *models.Wordform) error {
	w.Wordform = norm.NFC.String(strings.TrimSpace(w.Wordform))
	if w.Wordform == "" {
		return fmt.Errorf("%w: wordform is required", ErrInvalid)
	}

	var language string
	if err := get(ctx, q, &language, "SELECT language FROM lemmas WHERE id = ?", w.LemmaID); err != nil {
		return fmt.Errorf("failed to load lemma %d: %w", w.LemmaID, err)
	}
	w.Language = language
	w.CreatedAt = now()

	id, err := insertID(ctx, q, `
		INSERT INTO wordforms (lemma_id, language, wordform, grammatical_info, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		w.LemmaID, w.Language, w.Wordform, w.GrammaticalInfo, w.CreatedAt)
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

// ListForLemma returns the wordforms of a lemma
func (r *WordformRepository) ListForLemma(ctx context.Context, lemmaID int64) ([]models.Wordform, error) {
	var forms []models.Wordform
	err := selectAll(ctx, r.db, &forms,
		"SELECT "+wordformColumns+" FROM wordforms WHERE lemma_id = ? ORDER BY wordform, id", lemmaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wordforms: %w", err)
	}
	return forms, nil
}

// Lookup finds every lemma a surface form may belong to. The form is matched
// as written and lower-cased.
func (r *WordformRepository) Lookup(ctx context.Context, language, form string) ([]models.WordformMatch, error) {
	nfc := norm.NFC.String(strings.TrimSpace(form))
	var matches []models.WordformMatch
	err := selectAll(ctx, r.db, &matches, `
		SELECT w.id, w.lemma_id, w.language, w.wordform, w.grammatical_info, w.created_at,
			l.slug AS lemma_slug, l.lemma
		FROM wordforms w
		JOIN lemmas l ON l.id = w.lemma_id
		WHERE w.language = ? AND (w.wordform = ? OR w.wordform = ?)
		ORDER BY w.id`,
		language, nfc, segment.Normalize(nfc))
	if err != nil {
		return nil, fmt.Errorf("failed to look up wordform: %w", err)
	}
	return matches, nil
}

// wordformIDs matches words as written and lower-cased against known
// wordforms. The result is keyed by segment.Normalize of the wordform;
// homographs resolve to the oldest wordform.
func wordformIDs(ctx context.Context, q sqlx.ExtContext, language string, words []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(words))
	if len(words) == 0 {
		return ids, nil
	}

	candidates := make([]string, 0, 2*len(words))
	seen := make(map[string]struct{}, 2*len(words))
	for _, w := range words {
		for _, c := range []string{w, segment.Normalize(w)} {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				candidates = append(candidates, c)
			}
		}
	}

	query, args, err := sqlx.In(
		"SELECT id, wordform FROM wordforms WHERE language = ? AND wordform IN (?) ORDER BY id", language, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to build wordform query: %w", err)
	}
	var rows []struct {
		ID       int64  `db:"id"`
		Wordform string `db:"wordform"`
	}
	if err := selectAll(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to match wordforms: %w", err)
	}
	for _, row := range rows {
		key := segment.Normalize(row.Wordform)
		if _, ok := ids[key]; !ok {
			ids[key] = row.ID
		}
	}
	return ids, nil
}
