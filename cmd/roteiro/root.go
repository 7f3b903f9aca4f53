package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roteiro",
	Short: "Roteiro is a call-script navigation engine",
	Long:  `Roteiro drives branching call scripts: products resolve to a script graph of steps, and operators navigate it with labeled buttons and an undo-style history.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
