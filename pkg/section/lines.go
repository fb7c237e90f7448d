package section

import "strings"

// SplitLines splits configuration text into lines. "\r\n", "\r" and "\n" all
// end a line; a final line break does not produce a trailing empty line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
