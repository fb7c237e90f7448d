package section

// Mode selects which partition of the input a scan returns.
type Mode int

const (
	ModeExtract Mode = iota
	ModeRemove
)

func (m Mode) String() string {
	switch m {
	case ModeExtract:
		return "extract"
	case ModeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseMode converts "extract" or "remove" into a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "extract":
		return ModeExtract, true
	case "remove":
		return ModeRemove, true
	}
	return 0, false
}

// Extract returns the header and body lines of every selected section.
// Banner headers are normalized so that their trailing delimiter is the
// control byte and the terminator line becomes a lone control byte.
func (f *Filter) Extract(lines []string) ([]string, error) {
	return f.Scan(lines, ModeExtract)
}

// Remove returns lines with every selected section dropped.
func (f *Filter) Remove(lines []string) ([]string, error) {
	return f.Scan(lines, ModeRemove)
}

// Scan walks lines once in the given mode. lines is never modified.
// On a *BannerError no partial result is returned.
func (f *Filter) Scan(lines []string, mode Mode) ([]string, error) {
	out := newAssembler(len(lines))

	i := 0
	for i < len(lines) {
		line := lines[i]

		matched, err := f.Matches(line)
		if err != nil {
			return nil, err
		}

		switch {
		case !matched:
			if mode == ModeRemove {
				out.emit(line)
			}
			i++
		case IsBannerHeader(line):
			i, err = scanBanner(lines, i, mode, out)
			if err != nil {
				return nil, err
			}
		default:
			i = scanIndented(lines, i, mode, out)
		}
	}

	return out.lines, nil
}

// scanIndented consumes the header at start plus its continuation lines and
// returns the index of the first line it did not consume.
func scanIndented(lines []string, start int, mode Mode, out *assembler) int {
	if mode == ModeExtract {
		out.emit(lines[start])
	}

	i := start + 1
	for i < len(lines) && IsContinuation(lines[i]) {
		if mode == ModeExtract {
			out.emit(lines[i])
		}
		i++
	}
	return i
}

// scanBanner consumes a banner literal from its header through its terminator.
// Banner text is copied verbatim and does not take part in separator
// collapsing.
func scanBanner(lines []string, start int, mode Mode, out *assembler) (int, error) {
	header := lines[start]
	if mode == ModeExtract {
		out.raw(normalizeBannerHeader(header))
	}

	for i := start + 1; i < len(lines); i++ {
		if IsBannerTerminator(lines[i]) {
			if mode == ModeExtract {
				out.raw(Delimiter)
			}
			return i + 1, nil
		}
		if mode == ModeExtract {
			out.raw(lines[i])
		}
	}

	return 0, &BannerError{Op: mode.String(), Line: start, Text: header}
}

// assembler builds the output and suppresses a separator line that directly
// follows another separator line. Lines added with raw are neither collapsed
// nor remembered as the previous line.
type assembler struct {
	lines []string
	last  string
}

func newAssembler(capacity int) *assembler {
	return &assembler{lines: make([]string, 0, capacity)}
}

func (a *assembler) emit(line string) {
	if line == Separator && a.last == Separator {
		return
	}
	a.lines = append(a.lines, line)
	a.last = line
}

func (a *assembler) raw(line string) {
	a.lines = append(a.lines, line)
}
