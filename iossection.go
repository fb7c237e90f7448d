// Package iossection extracts and removes sections of Cisco IOS style
// configuration by matching their header lines against regular expressions.
//
// A section is either an indented stanza (a header followed by lines that
// start with a space) or a banner literal delimited by ^C or the ETX byte.
// Extract and Remove partition the input: every line goes to exactly one of
// the two results, apart from collapsed "!" separators.
//
// # Basic Usage
//
//	lines := iossection.SplitLines(config)
//
//	vty, err := iossection.Extract(lines, []string{`line vty.*`})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stripped, err := iossection.Remove(lines, []string{`banner\s+\S+.*\^C`})
//
// # Options
//
//	out, err := iossection.Extract(lines, []string{`GigabitEthernet1/0/\d+`},
//	    iossection.WithPrefix(`interface\s+`),
//	    iossection.WithIgnoreCase(),
//	    iossection.WithOutputFile("uplinks.txt"))
//
// A malformed banner fails the whole call with a *BannerError; a failed
// output file write returns a *WriteError together with the valid lines.
package iossection

import (
	"context"

	"github.com/netcfgkit/iossection/pkg/intfname"
	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/netcfgkit/iossection/pkg/writer"
)

// Re-export commonly used types for convenience.
type (
	// Config is a complete section selection.
	Config = section.Config

	// Filter is a compiled, immutable section selection.
	Filter = section.Filter

	// Mode selects extraction or removal.
	Mode = section.Mode

	// ConfigError reports a pattern that could not be compiled.
	ConfigError = section.ConfigError

	// BannerError reports a banner without a terminator line.
	BannerError = section.BannerError

	// WriteError reports a failed output file write.
	WriteError = writer.IOError

	// Interface is an interface type name and number.
	Interface = intfname.Interface

	// Profile is a named, reusable section selection.
	Profile = types.Profile
)

// Re-export modes and sentinel errors.
const (
	ModeExtract = section.ModeExtract
	ModeRemove  = section.ModeRemove
)

var (
	ErrInvalidPattern     = section.ErrInvalidPattern
	ErrUnterminatedBanner = section.ErrUnterminatedBanner
	ErrWrite              = writer.ErrWrite
	ErrUnknownCategory    = intfname.ErrUnknownCategory
	ErrMissingNumber      = intfname.ErrMissingNumber
)

type options struct {
	ctx        context.Context
	ignoreCase bool
	prefix     string
	outputFile string
}

// Option configures Extract and Remove.
type Option func(*options)

// WithIgnoreCase matches header lines case-insensitively.
func WithIgnoreCase() Option {
	return func(o *options) {
		o.ignoreCase = true
	}
}

// WithPrefix prepends prefix to every pattern, e.g. `interface\s+`.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithOutputFile also writes a non-empty result to path, one line per record.
func WithOutputFile(path string) Option {
	return func(o *options) {
		o.outputFile = path
	}
}

// WithContext bounds the output file write.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// Extract returns every section whose header matches one of patterns.
func Extract(lines, patterns []string, opts ...Option) ([]string, error) {
	return Run(section.ModeExtract, lines, patterns, opts...)
}

// Remove returns lines without the sections whose header matches one of
// patterns.
func Remove(lines, patterns []string, opts ...Option) ([]string, error) {
	return Run(section.ModeRemove, lines, patterns, opts...)
}

// Run compiles patterns and scans lines in mode. When the output file cannot
// be written the lines are returned together with a *WriteError.
func Run(mode Mode, lines, patterns []string, opts ...Option) ([]string, error) {
	o := &options{ctx: context.Background()}
	for _, opt := range opts {
		opt(o)
	}

	f, err := section.Compile(section.Config{
		Patterns:   patterns,
		IgnoreCase: o.ignoreCase,
		Prefix:     o.prefix,
	})
	if err != nil {
		return nil, err
	}

	out, err := f.Scan(lines, mode)
	if err != nil {
		return nil, err
	}

	if err := writer.WriteLines(o.ctx, o.outputFile, out); err != nil {
		return out, err
	}
	return out, nil
}

// Compile builds a reusable Filter.
func Compile(cfg Config) (*Filter, error) {
	return section.Compile(cfg)
}

// SplitLines splits configuration text into lines.
func SplitLines(text string) []string {
	return section.SplitLines(text)
}

// ParseInterface reads an abbreviated interface name such as "gi1/0/10".
func ParseInterface(name string) (Interface, error) {
	return intfname.Parse(name)
}

// ShortenInterface returns the short form of a long or short interface name.
func ShortenInterface(name string) (Interface, error) {
	return intfname.Shorten(name)
}

// ExpandInterface returns the long form of a long or short interface name.
func ExpandInterface(name string) (Interface, error) {
	return intfname.Expand(name)
}

// LoadBuiltinProfiles returns the profiles shipped with the module.
func LoadBuiltinProfiles() ([]*Profile, error) {
	return rule.NewLoader().LoadBuiltinProfiles()
}
