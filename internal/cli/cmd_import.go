package cli

import (
	"fmt"

	"github.com/example/lemmabank/internal/excel"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		lang  string
		sheet string
	)
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.csv>",
		Short: "Import lemmas and wordforms from a spreadsheet",
		Long: `Import lemmas from an Excel or CSV file. Rows hold the lemma, its part of
speech, a gloss and ;-separated wordforms. The first row is a header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.IsSupported(lang) {
				return fmt.Errorf("language %q is not in SUPPORTED_LANGUAGES", lang)
			}

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrateUp(cmd, db); err != nil {
				return err
			}

			config := excel.DefaultImportConfig()
			config.FilePath = args[0]
			config.Language = lang
			config.SheetName = sheet

			result, err := excel.NewImporter(db).Import(cmd.Context(), config)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d rows: %d lemmas created, %d existing, %d wordforms added, %d skipped.\n",
				result.TotalProcessed, result.LemmasCreated, result.LemmasExisting, result.WordformsAdded, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintln(out, "  "+e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "language of the imported lemmas (required)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet to import, the first one by default")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}
