package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/inemuri/tracing"
)

var traceListCmd = &cobra.Command{
	Use:   "list trace.sqlite3",
	Short: "List the pipelines recorded in a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		reader := tracing.NewSQLiteReader(args[0])
		if err := reader.Init(); err != nil {
			return err
		}
		defer reader.Close()

		locations, err := reader.ListLocations()
		if err != nil {
			return err
		}

		for _, l := range locations {
			fmt.Printf("%s\t%d spans\n", l.Where, l.Count)
		}

		return nil
	},
}

func init() {
	traceCmd.AddCommand(traceListCmd)
}
