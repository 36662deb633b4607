// Package excel imports lemmas and their wordforms from spreadsheets.
package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath           string // Path to the Excel or CSV file
	Language           string // Language of every imported lemma
	LemmaColumn        string
	PartOfSpeechColumn string
	GlossColumn        string
	WordformsColumn    string // ;-separated inflected forms
	SheetName          string // Sheet to import, the first one when empty
	StartRow           int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		LemmaColumn:        "A",
		PartOfSpeechColumn: "B",
		GlossColumn:        "C",
		WordformsColumn:    "D",
		StartRow:           2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	LemmasCreated  int      `json:"lemmas_created"`
	LemmasExisting int      `json:"lemmas_existing"`
	WordformsAdded int      `json:"wordforms_added"`
	Skipped        int      `json:"skipped"`
	Errors         []string `json:"errors"`
}

// Importer writes spreadsheet rows into the lemma bank.
type Importer struct {
	lemmas    *database.LemmaRepository
	wordforms *database.WordformRepository
}

// NewImporter creates an importer over db
func NewImporter(db *sqlx.DB) *Importer {
	return &Importer{
		lemmas:    database.NewLemmaRepository(db),
		wordforms: database.NewWordformRepository(db),
	}
}

// Import imports lemmas from an Excel or CSV file
func (im *Importer) Import(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	if config.Language == "" {
		return nil, errors.New("language is required")
	}
	if config.StartRow < 1 {
		config.StartRow = 1
	}

	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		if blank(row) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(ctx, row, config, result); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	log.Info().
		Str("file", config.FilePath).
		Int("rows", result.TotalProcessed).
		Int("lemmas_created", result.LemmasCreated).
		Int("wordforms_added", result.WordformsAdded).
		Int("errors", len(result.Errors)).
		Msg("import finished")
	return result, nil
}

// readExcel returns the rows of the named sheet, or of the first one
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processRow creates the lemma of a row when it is missing and adds the
// row's wordforms to it
func (im *Importer) processRow(ctx context.Context, row []string, config ImportConfig, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	headword, inline := splitWord(cell(config.LemmaColumn))
	if headword == "" {
		return errors.New("lemma cannot be empty")
	}

	lemma := &models.Lemma{
		Language:     config.Language,
		Lemma:        headword,
		PartOfSpeech: strings.ToLower(cell(config.PartOfSpeechColumn)),
		Gloss:        cell(config.GlossColumn),
	}
	created, err := im.lemmas.GetOrCreate(ctx, lemma)
	if err != nil {
		return fmt.Errorf("failed to get or create lemma: %w", err)
	}
	if created {
		result.LemmasCreated++
	} else {
		result.LemmasExisting++
		if lemma.Gloss == "" {
			if gloss := cell(config.GlossColumn); gloss != "" {
				lemma.Gloss = gloss
				if err := im.lemmas.Update(ctx, lemma); err != nil {
					return fmt.Errorf("failed to update gloss: %w", err)
				}
			}
		}
	}

	forms := append(inline, splitForms(cell(config.WordformsColumn))...)
	for _, form := range forms {
		err := im.wordforms.Create(ctx, &models.Wordform{LemmaID: lemma.ID, Wordform: form})
		if errors.Is(err, database.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to add wordform %q: %w", form, err)
		}
		result.WordformsAdded++
	}
	return nil
}

// splitWord separates a headword from forms given in parentheses after
// it, as in "go (went, gone)"
func splitWord(word string) (string, []string) {
	open := strings.Index(word, "(")
	if open <= 0 {
		return strings.TrimSpace(word), nil
	}
	head := strings.TrimSpace(word[:open])
	inner := word[open+1:]
	if end := strings.Index(inner, ")"); end >= 0 {
		inner = inner[:end]
	}
	return head, splitForms(strings.ReplaceAll(inner, ",", ";"))
}

func splitForms(s string) []string {
	var forms []string
	for _, f := range strings.Split(s, ";") {
		if f = strings.TrimSpace(f); f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
