package scanner

import "github.com/netcfgkit/iossection/pkg/types"

// ContentItem is a configuration handed over inline.
type ContentItem struct {
	Source  string `json:"source"`  // e.g. "stdin", a device name
	Content string `json:"content"` // the configuration text
}

// DocumentResult holds the per-profile results for one document.
type DocumentResult struct {
	DocID   types.DocID     `json:"doc_id"`
	Source  string          `json:"source"`
	Skipped bool            `json:"skipped,omitempty"` // already in the store
	Results []*types.Result `json:"results"`
}

// Failed counts the profiles that produced an error.
func (d *DocumentResult) Failed() int {
	n := 0
	for _, r := range d.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Stats summarises a Run.
type Stats struct {
	Documents int `json:"documents"`
	Skipped   int `json:"skipped"`
	Results   int `json:"results"`
	Failures  int `json:"failures"`
}
