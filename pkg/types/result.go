package types

import "time"

// Error kinds recorded with a failed Result.
const (
	ErrorKindConfig = "config"
	ErrorKindBanner = "banner"
	ErrorKindMatch  = "match"
	ErrorKindIO     = "io"
)

// Result is the outcome of running one profile against one document.
type Result struct {
	DocID        DocID     `json:"doc_id"`
	Source       string    `json:"source"`
	ProfileID    string    `json:"profile_id"`
	StructuralID string    `json:"structural_id,omitempty"`
	Mode         string    `json:"mode"`
	Lines        []string  `json:"lines"`
	InputLines   int       `json:"input_lines"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorLine    int       `json:"error_line,omitempty"` // 1-based line of the offending header
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Failed reports whether the run produced an error instead of lines.
func (r *Result) Failed() bool {
	return r.Error != ""
}
