// Package textclean strips comments from build-description source lines
// while staying aware of string literals, and splits PCD/value lists on a
// delimiter without breaking quoted or parenthesized substrings.
package textclean

import (
	"strings"
)

// Stripped is the result of cleaning one physical line.
type Stripped struct {
	Data    string // the non-comment portion, trimmed
	Comment string // the comment portion (a line comment without its leading #; a block comment with its /* */), empty if none
}

// LineCleaner tracks the "inside a /* */ block comment" flag across calls,
// since a block comment may span multiple lines.
type LineCleaner struct {
	inBlock bool
}

// NewLineCleaner returns a cleaner with no carried block-comment state.
func NewLineCleaner() *LineCleaner {
	return &LineCleaner{}
}

// InBlockComment reports whether the cleaner is currently inside an
// unterminated /* */ block (i.e. the caller is mid-comment going into the
// next line).
func (c *LineCleaner) InBlockComment() bool {
	return c.inBlock
}

// Clean strips the comment portion of a single line. allowLineComment gates
// whether a bare '#' starts a line comment (dialect D's multi-line CODE
// value blocks pass false while inside the value).
func (c *LineCleaner) Clean(line string, allowLineComment bool) Stripped {
	if c.inBlock {
		if end := findBlockEnd(line); end >= 0 {
			c.inBlock = false
			rest := line[end+2:]
			tail := c.Clean(rest, allowLineComment)
			comment := line[:end+2]
			if tail.Comment != "" {
				comment += " " + tail.Comment
			}
			return Stripped{Data: tail.Data, Comment: comment}
		}
		return Stripped{Data: "", Comment: line}
	}

	var inSingle, inDouble bool
	i := 0
	n := len(line)
	for i < n {
		ch := line[i]
		switch {
		case ch == '\\' && (inSingle || inDouble) && i+1 < n:
			i += 2
			continue
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case !inSingle && !inDouble && ch == '#' && allowLineComment:
			data := strings.TrimRight(line[:i], " \t\r")
			return Stripped{Data: normalizeWhitespace(data), Comment: strings.TrimSpace(line[i+1:])}
		case !inSingle && !inDouble && ch == '/' && i+1 < n && line[i+1] == '*':
			end := findBlockEnd(line[i:])
			if end < 0 {
				c.inBlock = true
				data := strings.TrimRight(line[:i], " \t\r")
				return Stripped{Data: normalizeWhitespace(data), Comment: strings.TrimSpace(line[i:])}
			}
			blockEnd := i + end + 2
			comment := line[i:blockEnd]
			rest := line[:i] + " " + line[blockEnd:]
			tail := c.Clean(rest, allowLineComment)
			if tail.Comment != "" {
				comment += " " + tail.Comment
			}
			return Stripped{Data: tail.Data, Comment: comment}
		}
		i++
	}
	return Stripped{Data: normalizeWhitespace(strings.TrimRight(line, " \t\r")), Comment: ""}
}

func findBlockEnd(s string) int {
	return strings.Index(s, "*/")
}

func normalizeWhitespace(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteByte(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// SplitValueList splits line on delimiter, ignoring occurrences inside
// string literals (", ', L"..", L'..') or inside parenthesis nesting. This
// matches AnalyzePcdExpression's sentinel-substitution technique without
// the randomness: a single scan tracks quote/paren state and only splits at
// positions outside of both.
//
// maxSplits <= 0 means unlimited.
func SplitValueList(line string, delimiter byte, maxSplits int) []string {
	var fields []string
	var cur strings.Builder
	var inSingle, inDouble bool
	depth := 0
	splits := 0

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '\\' && (inSingle || inDouble) && i+1 < len(line):
			cur.WriteByte(ch)
			i++
			cur.WriteByte(line[i])
			continue
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '(' && !inSingle && !inDouble:
			depth++
		case ch == ')' && !inSingle && !inDouble && depth > 0:
			depth--
		}

		if ch == delimiter && !inSingle && !inDouble && depth == 0 && (maxSplits <= 0 || splits < maxSplits) {
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
			splits++
			continue
		}
		cur.WriteByte(ch)
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// IsQuotedLiteral reports whether a PCD/value token is a recognized string
// literal form: "...", L"...", '...', L'...'.
func IsQuotedLiteral(v string) bool {
	switch {
	case strings.HasPrefix(v, `L"`) && strings.HasSuffix(v, `"`) && len(v) >= 3:
		return true
	case strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) && len(v) >= 2:
		return true
	case strings.HasPrefix(v, `L'`) && strings.HasSuffix(v, `'`) && len(v) >= 3:
		return true
	case strings.HasPrefix(v, `'`) && strings.HasSuffix(v, `'`) && len(v) >= 2:
		return true
	}
	return false
}
