package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/dshills/prbatch/internal/batch"
	"github.com/dshills/prbatch/internal/review"
)

// TableWriter prints the run summary as console tables.
type TableWriter struct{}

func (t *TableWriter) Write(w io.Writer, s *review.Summary) error {
	fmt.Fprintf(w, "Batch %s (%s): %d changed, %d analyzed, %d skipped\n\n",
		orDash(s.JobID), orDash(s.Status), s.Listed, len(s.Results), len(s.Skipped))

	if len(s.Results) > 0 {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"File", "Size"})
		for _, r := range s.Results {
			table.Append([]string{r.FileName, r.SizeLabel})
		}
		table.SetFooter([]string{"Estimated cost", formatUSD(s.Cost)})
		table.Render()
	}

	if len(s.Skipped) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Skipped", "Reason"})
		for _, sk := range s.Skipped {
			table.Append([]string{sk.Path, sk.Reason})
		}
		table.Render()
	}
	return nil
}

// WriteRates prints the per-million-token rate of each model.
func WriteRates(w io.Writer, models []string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Model", "Input $/MTok", "Output $/MTok"})
	for _, m := range models {
		r, err := batch.Pricing(m)
		if err != nil {
			return err
		}
		table.Append([]string{
			m,
			strconv.FormatFloat(r.Input, 'f', 2, 64),
			strconv.FormatFloat(r.Output, 'f', 2, 64),
		})
	}
	table.Render()
	return nil
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
