package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/prbatch/internal/review"
)

func TestJSONWriter(t *testing.T) {
	summary := &review.Summary{
		JobID:  "msgbatch_1",
		Status: "ended",
		Listed: 3,
		Results: []review.AnalysisResult{
			{FileName: "main.go", SizeLabel: "2 KB", Content: "## AI Analysis for main.go"},
		},
		Skipped: []review.SkippedFile{{Path: "big.go", Reason: "120 KB exceeds 100 KB limit"}},
		Cost:    0.0123,
	}

	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, summary); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got review.Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(*summary, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	var raw map[string]any
	json.Unmarshal(buf.Bytes(), &raw)
	if _, ok := raw["jobId"]; !ok {
		t.Error("missing jobId key")
	}
	if _, ok := raw["written"]; ok {
		t.Error("empty written list should be omitted")
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"", "table", "text", "json"} {
		if _, err := GetWriter(format); err != nil {
			t.Errorf("GetWriter(%q): %v", format, err)
		}
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("GetWriter(sarif) should fail")
	}
}
