package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callguide/roteiro/internal/adapters/postgres"
	"github.com/callguide/roteiro/internal/config"
	"github.com/callguide/roteiro/internal/logging"
	"github.com/callguide/roteiro/pkg/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <scripts-file>",
	Short: "Import a bulk script document into the database",
	Long: `Parses and validates a JSON or YAML script document and writes the
accepted steps and products to the PostgreSQL backend. Malformed entries
are quarantined and reported, never written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for import")
		}
		logger := logging.New(logging.ParseLevel(cfg.LogLevel))

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read scripts file: %w", err)
		}

		report, err := importer.New().Parse(data, formatForPath(args[0]))
		if err != nil {
			return err
		}
		for _, q := range report.Quarantined {
			fmt.Printf("QUARANTINED %s #%d (%s): %s\n", q.Kind, q.Index, q.ID, q.Reason)
		}

		ctx := cmd.Context()
		pg, err := postgres.New(ctx, logger, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pg.Close()

		for _, step := range report.Steps {
			if err := pg.Steps().SaveStep(ctx, step); err != nil {
				return fmt.Errorf("failed to save step %s: %w", step.ID, err)
			}
		}
		for _, p := range report.Products {
			if err := pg.Products().SaveProduct(ctx, p); err != nil {
				return fmt.Errorf("failed to save product %s: %w", p.ID, err)
			}
		}

		fmt.Printf("Imported %d steps and %d products (%d quarantined)\n",
			len(report.Steps), len(report.Products), len(report.Quarantined))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
