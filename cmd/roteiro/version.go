package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callguide/roteiro"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of roteiro",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("roteiro version %s\n", roteiro.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
