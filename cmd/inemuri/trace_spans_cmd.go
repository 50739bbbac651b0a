package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/inemuri/tracing"
)

var traceSpansCmd = &cobra.Command{
	Use:   "spans trace.sqlite3",
	Short: "Print the transition spans in a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		query := tracing.SpanQuery{}
		query.ID, _ = cmd.Flags().GetString("id")
		query.Kind, _ = cmd.Flags().GetString("kind")
		query.What, _ = cmd.Flags().GetString("what")
		query.Where, _ = cmd.Flags().GetString("where")

		reader := tracing.NewSQLiteReader(args[0])
		if err := reader.Init(); err != nil {
			return err
		}
		defer reader.Close()

		spans, err := reader.ListSpans(query)
		if err != nil {
			return err
		}

		for _, s := range spans {
			end := "-"
			if !s.End.IsZero() {
				end = s.End.Format(time.RFC3339Nano)
			}

			fmt.Printf("%s\t%s/%s\t%s\t%s\t%s\n",
				s.Where, s.Kind, s.What, s.ID,
				s.Start.Format(time.RFC3339Nano), end)
		}

		return nil
	},
}

func init() {
	traceSpansCmd.Flags().String("id", "", "only the span with this ID")
	traceSpansCmd.Flags().String("kind", "", "only spans of this kind")
	traceSpansCmd.Flags().String("what", "",
		"only spans of this transition direction")
	traceSpansCmd.Flags().String("where", "",
		"only spans recorded at this location")
	traceCmd.AddCommand(traceSpansCmd)
}
