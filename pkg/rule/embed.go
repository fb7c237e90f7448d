package rule

import "embed"

// builtinFS holds the builtin profiles and profile sets.
//
//go:embed profiles/*.yml sets/*.yml
var builtinFS embed.FS
