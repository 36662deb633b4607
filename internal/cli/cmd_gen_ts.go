package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/server"
	"github.com/example/lemmabank/internal/srs"
	"github.com/example/lemmabank/internal/tsgen"
	"github.com/spf13/cobra"
)

func newGenTSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-ts <out.ts>",
		Short: "Write the TypeScript constants shared with the frontend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			err = tsgen.Generate(&buf, tsgen.Constants{
				Languages:         cfg.SupportedLanguages,
				MaxPageSize:       database.MaxPageSize,
				ImageMaxDimension: cfg.ImageMaxDimension,
				Grades:            srs.GradeNames(),
				Routes:            server.Routes,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return nil
		},
	}
}
