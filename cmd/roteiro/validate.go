package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/internal/graphcheck"
	"github.com/callguide/roteiro/pkg/importer"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scripts-file>",
	Short: "Validate a bulk script document",
	Long: `Validates a JSON or YAML script document: every entry must decode and
pass schema validation, and each product's graph is crawled from its entry
step to find dangling button targets and unreachable steps.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read scripts file: %w", err)
		}

		report, err := importer.New().Parse(data, formatForPath(args[0]))
		if err != nil {
			return err
		}

		ok := true
		for _, q := range report.Quarantined {
			ok = false
			fmt.Printf("REJECTED %s #%d (%s): %s\n", q.Kind, q.Index, q.ID, q.Reason)
		}

		store := memory.NewStoreFromRecords(report.Steps, report.Products)
		ctx := cmd.Context()

		for i := range report.Products {
			product := report.Products[i]
			graphReport, err := graphcheck.ValidateProduct(ctx, store, &product)
			if err != nil {
				ok = false
				fmt.Printf("FAILED product %s: %v\n", product.ID, err)
				continue
			}
			if !graphReport.OK() {
				ok = false
				for _, issue := range graphReport.Issues {
					fmt.Println(issue.String())
				}
			}
		}

		if !ok {
			return fmt.Errorf("validation failed")
		}
		fmt.Printf("OK: %d steps, %d products\n", len(report.Steps), len(report.Products))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
