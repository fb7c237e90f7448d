package section

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// EscapedDelimiter is the typed form of a banner delimiter inside a pattern.
const EscapedDelimiter = `\^C`

// DefaultMatchTimeout bounds a single pattern evaluation against one line.
const DefaultMatchTimeout = 5 * time.Second

// Config describes which section headers a Filter selects.
type Config struct {
	// Patterns are regular expression fragments matched against whole lines.
	Patterns []string

	// IgnoreCase enables case-insensitive matching.
	IgnoreCase bool

	// Prefix is prepended verbatim to every pattern before anchoring.
	Prefix string

	// MatchTimeout overrides DefaultMatchTimeout when > 0.
	MatchTimeout time.Duration
}

// Filter is a compiled, immutable Config. It is safe for concurrent use.
type Filter struct {
	cfg      Config
	exprs    []string
	matchers []*regexp2.Regexp
}

// ExpandPatterns returns a copy of patterns where every entry containing the
// escaped banner delimiter gets a twin with its first occurrence replaced by
// the control byte. Twins are appended in order and are not expanded again.
func ExpandPatterns(patterns []string) []string {
	expanded := make([]string, len(patterns), len(patterns)*2)
	copy(expanded, patterns)

	n := len(expanded)
	for i := 0; i < n; i++ {
		pos := strings.Index(expanded[i], EscapedDelimiter)
		if pos == -1 {
			continue
		}
		twin := expanded[i][:pos] + Delimiter + expanded[i][pos+len(EscapedDelimiter):]
		expanded = append(expanded, twin)
	}
	return expanded
}

// Anchor prepends prefix to pattern and forces the result to span a whole line.
func Anchor(prefix, pattern string) string {
	expr := prefix + pattern
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	if !strings.HasSuffix(expr, "$") {
		expr += "$"
	}
	return expr
}

// Compile validates cfg and builds a Filter. An empty pattern list is valid
// and produces a Filter that never matches.
func Compile(cfg Config) (*Filter, error) {
	timeout := cfg.MatchTimeout
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}

	f := &Filter{
		cfg: Config{
			Patterns:     append([]string(nil), cfg.Patterns...),
			IgnoreCase:   cfg.IgnoreCase,
			Prefix:       cfg.Prefix,
			MatchTimeout: timeout,
		},
	}

	opts := regexp2.None
	if cfg.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}

	for _, pattern := range ExpandPatterns(cfg.Patterns) {
		expr := Anchor(cfg.Prefix, pattern)

		// Default flavour first; RE2 mode adds (?P<name>...) groups.
		re, err := regexp2.Compile(expr, opts)
		if err != nil {
			var rerr error
			re, rerr = regexp2.Compile(expr, opts|regexp2.RE2)
			if rerr != nil {
				return nil, &ConfigError{Pattern: expr, Err: err}
			}
		}
		re.MatchTimeout = timeout

		f.exprs = append(f.exprs, expr)
		f.matchers = append(f.matchers, re)
	}

	return f, nil
}

// Config returns a copy of the configuration the Filter was built from.
func (f *Filter) Config() Config {
	cfg := f.cfg
	cfg.Patterns = append([]string(nil), f.cfg.Patterns...)
	return cfg
}

// Expressions returns the anchored expressions in evaluation order.
func (f *Filter) Expressions() []string {
	return append([]string(nil), f.exprs...)
}

// Matches reports whether any expression matches the entire line.
// An error is returned only when the regex engine gives up (timeout).
func (f *Filter) Matches(line string) (bool, error) {
	for i, re := range f.matchers {
		ok, err := re.MatchString(line)
		if err != nil {
			return false, fmt.Errorf("matching %q: %w", f.exprs[i], err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
