package section

import (
	"strings"
	"unicode/utf8"
)

const (
	// Delimiter is the normalized banner delimiter (ASCII ETX).
	Delimiter = "\x03"

	// TypedDelimiter is the banner delimiter as printed by "show running-config".
	TypedDelimiter = "^C"

	// Separator is the stanza separator line collapsed by the assembler.
	Separator = "!"

	bannerKeyword = "banner "
)

// IsBannerHeader reports whether line opens a banner literal.
func IsBannerHeader(line string) bool {
	return strings.Contains(strings.ToLower(line), bannerKeyword) && IsBannerTerminator(line)
}

// IsBannerTerminator reports whether line ends with a banner delimiter.
func IsBannerTerminator(line string) bool {
	return strings.HasSuffix(line, TypedDelimiter) || strings.HasSuffix(line, Delimiter)
}

// IsContinuation reports whether line belongs to an indented section body.
// Empty lines never do.
func IsContinuation(line string) bool {
	return strings.HasPrefix(line, " ")
}

// normalizeBannerHeader replaces the last two characters of a banner header
// with the control byte.
func normalizeBannerHeader(line string) string {
	for n := 0; n < 2 && len(line) > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(line)
		line = line[:len(line)-size]
	}
	return line + Delimiter
}
