package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/prbatch/internal/review"
)

// JSONWriter outputs the run summary as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, summary *review.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
