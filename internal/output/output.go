package output

import (
	"fmt"
	"io"

	"github.com/dshills/prbatch/internal/review"
)

// Writer writes a run summary in a specific format.
type Writer interface {
	Write(w io.Writer, summary *review.Summary) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "table", "text", "":
		return &TableWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteSummary writes the summary to w in the given format.
func WriteSummary(w io.Writer, summary *review.Summary, format string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}
	return writer.Write(w, summary)
}
