package review

import "strings"

// FileStatus is the change status the platform reports for a file in a pull request.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
	StatusRenamed  FileStatus = "renamed"
)

// ChangedFile describes one file changed by a pull request. Size is the
// content length in bytes; platforms that do not report it leave it zero and
// the pipeline fills it in after fetching the content.
type ChangedFile struct {
	Path    string     `json:"path"`
	Changes int        `json:"changes"`
	Status  FileStatus `json:"status"`
	Size    int        `json:"size"`
}

// FilterConfig controls which changed files are analyzed.
type FilterConfig struct {
	Include       []string `json:"include,omitempty"`
	Exclude       []string `json:"exclude,omitempty"`
	MaxFiles      int      `json:"maxFiles"`
	MaxFileSizeKB int      `json:"maxFileSizeKB"`
}

// Depth selects how thorough the requested analysis is.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// ParseDepth maps a level name to a Depth. Unknown names fall back to standard.
func ParseDepth(s string) Depth {
	switch Depth(strings.ToLower(strings.TrimSpace(s))) {
	case DepthBasic:
		return DepthBasic
	case DepthDeep:
		return DepthDeep
	default:
		return DepthStandard
	}
}

// ValidDepth reports whether s names one of the known depths, ignoring case
// and surrounding space. ParseDepth maps anything else to standard.
func ValidDepth(s string) bool {
	switch Depth(strings.ToLower(strings.TrimSpace(s))) {
	case DepthBasic, DepthStandard, DepthDeep:
		return true
	}
	return false
}

// AnalysisResult is the rendered analysis of a single file.
type AnalysisResult struct {
	FileName  string `json:"fileName"`
	SizeLabel string `json:"size"`
	Content   string `json:"content"`
}

// SkippedFile records a selected file that never made it into the batch.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Summary is the outcome of one pipeline run.
type Summary struct {
	JobID   string           `json:"jobId"`
	Status  string           `json:"status"`
	Listed  int              `json:"listed"`
	Results []AnalysisResult `json:"results"`
	Skipped []SkippedFile    `json:"skipped,omitempty"`
	Written []string         `json:"written,omitempty"`
	Cost    float64          `json:"cost"`
}
