package serve

import (
	"encoding/json"

	"github.com/netcfgkit/iossection/pkg/intfname"
	"github.com/netcfgkit/iossection/pkg/scanner"
)

// Request represents an incoming NDJSON request
type Request struct {
	// "extract" | "remove" | "intf_parse" | "intf_shorten" | "intf_expand" |
	// "scan" | "scan_batch" | "close"
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SectionPayload is the payload for "extract" and "remove" requests.
// Lines wins over Content when both are set.
type SectionPayload struct {
	Lines      []string `json:"lines,omitempty"`
	Content    string   `json:"content,omitempty"`
	Patterns   []string `json:"patterns"`
	IgnoreCase bool     `json:"ignorecase,omitempty"`
	Prefix     string   `json:"prefix,omitempty"`
	Filename   string   `json:"filename,omitempty"`
}

// SectionData is the data field for "extract" and "remove" responses.
type SectionData struct {
	Lines []string `json:"lines"`
}

// InterfacePayload is the payload for the "intf_*" requests.
type InterfacePayload struct {
	Name string `json:"name"`
}

// InterfaceData is the data field for "intf_*" responses.
type InterfaceData = intfname.Interface

// ScanPayload is the payload for "scan" requests
type ScanPayload struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// ScanBatchPayload is the payload for "scan_batch" requests
type ScanBatchPayload struct {
	Items []scanner.ContentItem `json:"items"`
}

// Error kinds carried by failed responses.
const (
	ErrorKindConfig  = "config"
	ErrorKindBanner  = "banner"
	ErrorKindMatch   = "match"
	ErrorKindIO      = "io"
	ErrorKindIntf    = "intf"
	ErrorKindDecode  = "decode"
	ErrorKindRequest = "request"
)

// Response represents an outgoing NDJSON response
type Response struct {
	Success   bool            `json:"success"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
}

// ReadyData is the data field for "ready" responses
type ReadyData struct {
	Version string `json:"version"`
}
