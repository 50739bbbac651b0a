package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "inemuri",
	Short: "Inemuri CLI tool inspects the transition traces recorded by " +
		"hibernating display pipelines.",
	Long: `Inemuri CLI tool inspects the transition traces recorded by ` +
		`hibernating display pipelines. It can list the traced pipelines, ` +
		`print individual transition spans, and compute low-power residency.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
