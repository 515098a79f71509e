package rawparser

import "strings"

// splitLines breaks file content into logical lines, accepting either CRLF
// or LF endings. Parse needs random access to every physical line up front
// for the {CODE(...)} folding pre-pass, so this returns a slice rather than
// scanning incrementally.
func splitLines(data []byte) []string {
	text := string(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
