// Package intfname converts between long, short and abbreviated spellings of
// Cisco IOS interface names, e.g. "gi1/0/4", "Gi1/0/4" and
// "GigabitEthernet1/0/4".
package intfname

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnknownCategory is returned when the interface type is not recognized.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrMissingNumber is returned when the name contains no digit.
	ErrMissingNumber = errors.New("missing interface number")
)

// Error describes a failed conversion.
type Error struct {
	Op    string // "parse", "shorten" or "expand"
	Input string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Input, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Interface is an interface type name and its number ("1/0/4", "0", "10.100").
type Interface struct {
	Name   string `json:"name" yaml:"name"`
	Number string `json:"number" yaml:"number"`
}

// String joins name and number.
func (i Interface) String() string {
	return i.Name + i.Number
}

// longNames maps a two letter abbreviation (lower case) to the long name.
var longNames = map[string]string{
	"fa": "FastEthernet",
	"gi": "GigabitEthernet",
	"te": "TenGigabitEthernet",
	"tw": "TwentyfiveGigabitEthernet",
	"fo": "FortyGigabitEthernet",
	"hu": "HundredGigabitEthernet",
	"ma": "Management",
	"lo": "Loopback",
	"et": "eth",
	"po": "",
}

// shortNames maps every accepted spelling (lower case) to the short name.
var shortNames = map[string]string{
	"fastethernet":              "Fa",
	"fa":                        "Fa",
	"gigabitethernet":           "Gi",
	"gi":                        "Gi",
	"ten-gigabitethernet":       "Te",
	"tengigabitethernet":        "Te",
	"te":                        "Te",
	"twentyfivegigabitethernet": "Tw",
	"tw":                        "Tw",
	"fortygigabitethernet":      "Fo",
	"fo":                        "Fo",
	"hundredgigabitethernet":    "Hu",
	"hu":                        "Hu",
	"management":                "Ma",
	"ma":                        "Ma",
	"mgmt":                      "Ma",
	"loopback":                  "Lo",
	"lo":                        "Lo",
	"eth":                       "et",
	"et":                        "et",
	"port-channel":              "Po",
	"po":                        "Po",
	"":                          "Po",
}

// expandedNames maps a short name back to the long IOS spelling.
var expandedNames = map[string]string{
	"Fa": "FastEthernet",
	"Gi": "GigabitEthernet",
	"Te": "TenGigabitEthernet",
	"Tw": "TwentyfiveGigabitEthernet",
	"Fo": "FortyGigabitEthernet",
	"Hu": "HundredGigabitEthernet",
	"Ma": "Management",
	"Lo": "Loopback",
	"et": "eth",
	"Po": "Port-channel",
}

// Parse reads an abbreviated name such as "gi1/0/10". Only the first two
// characters select the type; everything after them is the number.
// Port-channels ("po") have an empty name.
func Parse(s string) (Interface, error) {
	id, rest := splitRunes(s, 2)
	name, ok := longNames[strings.ToLower(id)]
	if !ok {
		return Interface{}, &Error{Op: "parse", Input: s, Err: ErrUnknownCategory}
	}
	return Interface{Name: name, Number: rest}, nil
}

// Shorten accepts a long ("TenGigabitEthernet1/1/4") or short ("Te1/1/4")
// name and returns the short form. The number starts at the first digit.
//
// Besides the Ethernet and loopback spellings, Shorten accepts
// "Port-channel", "po" and a bare number as port channels, and "Management",
// "ma" and "mgmt" as the management port. Every spelling is matched
// case-insensitively.
func Shorten(s string) (Interface, error) {
	p := strings.IndexAny(s, "0123456789")
	if p == -1 {
		return Interface{}, &Error{Op: "shorten", Input: s, Err: ErrMissingNumber}
	}

	kind := strings.TrimSpace(strings.ToLower(s[:p]))
	name, ok := shortNames[kind]
	if !ok {
		return Interface{}, &Error{Op: "shorten", Input: s, Err: ErrUnknownCategory}
	}
	return Interface{Name: name, Number: s[p:]}, nil
}

// Expand accepts any spelling Shorten accepts and returns the long form.
func Expand(s string) (Interface, error) {
	short, err := Shorten(s)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = "expand"
		}
		return Interface{}, err
	}
	return Interface{Name: expandedNames[short.Name], Number: short.Number}, nil
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
