package section

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is matched by every *ConfigError.
	ErrInvalidPattern = errors.New("invalid section pattern")

	// ErrUnterminatedBanner is matched by every *BannerError.
	ErrUnterminatedBanner = errors.New("unterminated banner")
)

// ConfigError reports a pattern that could not be compiled.
type ConfigError struct {
	Pattern string // anchored expression as handed to the regex engine
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap exposes both the sentinel and the compiler error.
func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidPattern, e.Err}
}

// BannerError reports a banner header whose body runs to the end of input
// without a terminator line. Line is the 0-based index of the header.
type BannerError struct {
	Op   string // "extract" or "remove"
	Line int
	Text string
}

func (e *BannerError) Error() string {
	return fmt.Sprintf("%s: missing end of banner for line %d: %q", e.Op, e.Line, e.Text)
}

// Is reports whether target is ErrUnterminatedBanner.
func (e *BannerError) Is(target error) bool {
	return target == ErrUnterminatedBanner
}
