package migrations

import (
	"context"
	"fmt"

	"github.com/example/lemmabank/internal/migrate"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"
)

// dedupeWordformsNFC stores every wordform in NFC and merges rows of the same
// lemma that only differed in their normalisation form. Sentence links are
// moved onto the surviving row. Down only drops the index: merged rows are gone.
var dedupeWordformsNFC = migrate.Migration{
	Version: 5,
	Name:    "dedupe_wordforms_nfc",
	Up: func(ctx context.Context, tx *migrate.Tx) error {
		var wordforms []struct {
			ID       int64  `db:"id"`
			LemmaID  int64  `db:"lemma_id"`
			Wordform string `db:"wordform"`
		}
		if err := tx.Select(ctx, &wordforms, "SELECT id, lemma_id, wordform FROM wordforms ORDER BY id"); err != nil {
			return fmt.Errorf("failed to read wordforms: %w", err)
		}

		type key struct {
			lemmaID int64
			form    string
		}
		keepers := make(map[key]int64, len(wordforms))
		merged := 0

		for _, wf := range wordforms {
			normalized := norm.NFC.String(wf.Wordform)
			k := key{wf.LemmaID, normalized}

			keeper, seen := keepers[k]
			if !seen {
				keepers[k] = wf.ID
				if normalized != wf.Wordform {
					if err := tx.Exec(ctx, "UPDATE wordforms SET wordform = ? WHERE id = ?", normalized, wf.ID); err != nil {
						return fmt.Errorf("failed to normalise wordform %d: %w", wf.ID, err)
					}
				}
				continue
			}

			if err := tx.Exec(ctx, "UPDATE sentence_wordforms SET wordform_id = ? WHERE wordform_id = ?", keeper, wf.ID); err != nil {
				return fmt.Errorf("failed to move links of wordform %d: %w", wf.ID, err)
			}
			if err := tx.Exec(ctx, "DELETE FROM wordforms WHERE id = ?", wf.ID); err != nil {
				return fmt.Errorf("failed to delete duplicate wordform %d: %w", wf.ID, err)
			}
			merged++
		}

		if merged > 0 {
			log.Info().Int("merged", merged).Msg("deduplicated wordforms")
		}

		return tx.Exec(ctx, "CREATE UNIQUE INDEX idx_wordforms_lemma_wordform ON wordforms(lemma_id, wordform)")
	},
	Down: func(ctx context.Context, tx *migrate.Tx) error {
		return tx.Exec(ctx, "DROP INDEX idx_wordforms_lemma_wordform")
	},
}
