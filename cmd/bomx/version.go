package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devanand13/bomx/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bomx %s\n", version.GitRelease)
		fmt.Printf("  commit: %s (%s)\n", version.GitCommit, version.GitCommitDate)
		fmt.Printf("  go:     %s\n", version.GoInfo)
	},
}
