// Package textnorm holds the text normalizations applied before snapshot
// comparison.
package textnorm

import "strings"

// Newlines converts CRLF and lone CR line endings to LF and makes non-empty
// text end with a newline.
func Newlines(s string) string {
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// Paths converts backslash path separators to forward slashes. It cannot
// tell a separator from any other backslash.
func Paths(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}

// Screen normalizes a terminal capture: trailing spaces are trimmed from
// each line, trailing blank lines are dropped, and the result ends with a
// single newline.
func Screen(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")

	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n") + "\n"
}

// SplitLines splits s into lines that keep their "\n" terminator. Only the
// last line may lack one.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
