package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/prbatch/internal/review"
)

func TestTableWriter(t *testing.T) {
	summary := &review.Summary{
		JobID:  "msgbatch_1",
		Status: "ended",
		Listed: 4,
		Results: []review.AnalysisResult{
			{FileName: "src/app.ts", SizeLabel: "3 KB"},
			{FileName: "main.go", SizeLabel: "1 KB"},
		},
		Skipped: []review.SkippedFile{{Path: "vendor.js", Reason: "content fetch failed"}},
		Cost:    0.5,
	}

	var buf bytes.Buffer
	if err := WriteSummary(&buf, summary, "table"); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Batch msgbatch_1 (ended): 4 changed, 2 analyzed, 1 skipped",
		"src/app.ts", "3 KB", "main.go",
		"$0.5000",
		"vendor.js", "content fetch failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "src/app.ts") > strings.Index(out, "main.go") {
		t.Error("results should keep their order")
	}
}

func TestTableWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableWriter{}).Write(&buf, &review.Summary{Listed: 2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); !strings.HasPrefix(got, "Batch - (-): 2 changed, 0 analyzed, 0 skipped") {
		t.Errorf("output = %q", got)
	}
}

func TestWriteRates(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRates(&buf, []string{"claude-3-5-haiku-20241022"}); err != nil {
		t.Fatalf("WriteRates: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"claude-3-5-haiku-20241022", "0.80", "4.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := WriteRates(&buf, []string{"gpt-4"}); err == nil {
		t.Error("unknown model should fail")
	}
}
