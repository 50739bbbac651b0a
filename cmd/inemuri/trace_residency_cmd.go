package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/inemuri/hibernation"
	"github.com/sarchlab/inemuri/tracing"
)

type residencyReport struct {
	down      bool
	downSince time.Time
	total     time.Duration
	periods   int
}

var traceResidencyCmd = &cobra.Command{
	Use:   "residency trace.sqlite3",
	Short: "Compute how long each pipeline stayed hibernated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		reader := tracing.NewSQLiteReader(args[0])
		if err := reader.Init(); err != nil {
			return err
		}
		defer reader.Close()

		spans, err := reader.ListSpans(tracing.SpanQuery{
			Kind: hibernation.SpanKindTransition,
		})
		if err != nil {
			return err
		}

		reports, order := accumulateResidency(spans)

		for _, where := range order {
			r := reports[where]

			line := fmt.Sprintf("%s\t%d periods\t%.3fs asleep",
				where, r.periods, r.total.Seconds())
			if r.down {
				line += "\t(still hibernating at end of trace)"
			}

			fmt.Println(line)
		}

		return nil
	},
}

// Residency runs from the completion of an entry to the start of the next
// exit, the interval during which the hardware was actually powered down.
func accumulateResidency(
	spans []tracing.Span,
) (map[string]*residencyReport, []string) {
	reports := make(map[string]*residencyReport)
	var order []string

	for _, s := range spans {
		r, ok := reports[s.Where]
		if !ok {
			r = &residencyReport{}
			reports[s.Where] = r
			order = append(order, s.Where)
		}

		switch s.What {
		case hibernation.TransitionEnter:
			if !s.End.IsZero() {
				r.down = true
				r.downSince = s.End
			}
		case hibernation.TransitionExit:
			if r.down {
				r.total += s.Start.Sub(r.downSince)
				r.periods++
				r.down = false
			}
		}
	}

	return reports, order
}

func init() {
	traceCmd.AddCommand(traceResidencyCmd)
}
