package main

import (
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect a recorded transition trace",
}

func init() {
	rootCmd.AddCommand(traceCmd)
}
