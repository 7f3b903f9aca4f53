package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/callguide/roteiro/internal/adapters/memory"
	"github.com/callguide/roteiro/internal/presentation/graph"
	"github.com/callguide/roteiro/pkg/importer"
)

var graphCmd = &cobra.Command{
	Use:   "graph <scripts-file> <product-id>",
	Short: "Render a product's script graph as a Mermaid flowchart",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read scripts file: %w", err)
		}

		report, err := importer.New().Parse(data, formatForPath(args[0]))
		if err != nil {
			return err
		}

		store := memory.NewStoreFromRecords(report.Steps, report.Products)
		ctx := cmd.Context()

		product, err := store.GetProductByID(ctx, args[1])
		if err != nil {
			return fmt.Errorf("product %s: %w", args[1], err)
		}

		all, err := store.ListSteps(ctx)
		if err != nil {
			return err
		}

		// Keep only this product's steps (unowned steps stay visible).
		steps := all[:0]
		for _, s := range all {
			if s.ProductID == "" || s.ProductID == product.ID {
				steps = append(steps, s)
			}
		}

		fmt.Println(graph.GenerateMermaid(product.ScriptID, steps, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
