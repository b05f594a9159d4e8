package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "resistance-sim",
	Short: "Agent-based simulator of drug resistance in a bacterial population",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up subcommands
func init() {
	registerRunFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(drugsCmd)
}
