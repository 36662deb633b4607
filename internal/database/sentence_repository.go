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

const sentenceColumns = "id, language, sentence, translation, source_id, position, created_at"

// SentenceRepository handles database operations for sentences
type SentenceRepository struct {
	db *sqlx.DB
}

// NewSentenceRepository creates a new repository instance
func NewSentenceRepository(db *sqlx.DB) *SentenceRepository {
	return &SentenceRepository{db: db}
}

// Create inserts a sentence and links its words to known wordforms. It
// returns the number of words linked.
func (r *SentenceRepository) Create(ctx context.Context, s *models.Sentence) (int, error) {
	var linked int
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		linked, err = insertSentence(ctx, tx, s)
		return err
	})
	if err != nil {
		return 0, err
	}
	return linked, nil
}

// GetByID returns a sentence by ID
func (r *SentenceRepository) GetByID(ctx context.Context, id int64) (*models.Sentence, error) {
	var s models.Sentence
	if err := get(ctx, r.db, &s, "SELECT "+sentenceColumns+" FROM sentences WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("failed to get sentence %d: %w", id, err)
	}
	return &s, nil
}

// ListForSource returns the sentences of a source in reading order
func (r *SentenceRepository) ListForSource(ctx context.Context, sourceID int64) ([]models.Sentence, error) {
	var sentences []models.Sentence
	err := selectAll(ctx, r.db, &sentences,
		"SELECT "+sentenceColumns+" FROM sentences WHERE source_id = ? ORDER BY position, id", sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	return sentences, nil
}

// ListForLemma returns sentences containing any wordform of a lemma
func (r *SentenceRepository) ListForLemma(ctx context.Context, lemmaID int64, page Page) ([]models.Sentence, error) {
	page = page.Normalize()
	var sentences []models.Sentence
	err := selectAll(ctx, r.db, &sentences, `
		SELECT `+sentenceColumns+` FROM sentences
		WHERE id IN (
			SELECT sw.sentence_id FROM sentence_wordforms sw
			JOIN wordforms w ON w.id = sw.wordform_id
			WHERE w.lemma_id = ?
		)
		ORDER BY id LIMIT ? OFFSET ?`,
		lemmaID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sentences for lemma %d: %w", lemmaID, err)
	}
	return sentences, nil
}

// Relink rebuilds the wordform links of every sentence of a source, picking
// up wordforms added since the sentences were stored. It returns the number
// of words linked.
func (r *SentenceRepository) Relink(ctx context.Context, sourceID int64) (int, error) {
	sentences, err := r.ListForSource(ctx, sourceID)
	if err != nil {
		return 0, err
	}
	total := 0
	err = withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range sentences {
			s := &sentences[i]
			if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM sentence_wordforms WHERE sentence_id = ?"), s.ID); err != nil {
				return fmt.Errorf("failed to clear links of sentence %d: %w", s.ID, err)
			}
			n, err := linkWordforms(ctx, tx, s)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func insertSentence(ctx context.Context, tx *sqlx.Tx, s *models.Sentence) (int, error) {
	s.Sentence = norm.NFC.String(strings.TrimSpace(s.Sentence))
	if s.Sentence == "" || s.Language == "" {
		return 0, fmt.Errorf("%w: sentence and language are required", ErrInvalid)
	}
	s.CreatedAt = now()
	id, err := insertID(ctx, tx, `
		INSERT INTO sentences (language, sentence, translation, source_id, position, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Language, s.Sentence, s.Translation, s.SourceID, s.Position, s.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create sentence: %w", translateError(err))
	}
	s.ID = id
	return linkWordforms(ctx, tx, s)
}

// linkWordforms records, for each word of the sentence that matches a known
// wordform, the link at the word's position.
func linkWordforms(ctx context.Context, tx *sqlx.Tx, s *models.Sentence) (int, error) {
	var words []string
	for _, tok := range segment.Tokenize(s.Sentence) {
		if tok.IsWord {
			words = append(words, tok.Text)
		}
	}
	ids, err := wordformIDs(ctx, tx, s.Language, words)
	if err != nil {
		return 0, err
	}

	linked := 0
	for pos, w := range words {
		id, ok := ids[segment.Normalize(w)]
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx,
			tx.Rebind("INSERT INTO sentence_wordforms (sentence_id, wordform_id, position) VALUES (?, ?, ?)"),
			s.ID, id, pos)
		if err != nil {
			return 0, fmt.Errorf("failed to link sentence %d: %w", s.ID, err)
		}
		linked++
	}
	return linked, nil
}
