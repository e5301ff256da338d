package golden

import (
	"strings"

	"github.com/cboone/golden/internal/textnorm"
)

// A Filter is a pure transform applied to content before comparison.
// Applying the same filter twice gives the same result as applying it once.
type Filter interface {
	Filter(d Data) Data
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(d Data) Data

// Filter implements Filter.
func (f FilterFunc) Filter(d Data) Data { return f(d) }

// textFilter rewrites text documents with doc and the string values of
// JSON documents with leaf. Binary content passes through untouched.
type textFilter struct {
	doc  func(string) string
	leaf func(string) string
}

func (f textFilter) Filter(d Data) Data {
	if d.err != nil || d.missing {
		return d
	}
	switch d.format {
	case FormatBinary:
		return d
	case FormatText, FormatTermStyled:
		return d.withBytes([]byte(f.doc(string(d.b))))
	case FormatJSON:
		v, err := decodeJSON(d.b)
		if err != nil {
			return d.withBytes([]byte(f.doc(string(d.b))))
		}
		b, err := encodeJSON(mapStrings(v, f.leaf), true)
		if err != nil {
			return d
		}
		return d.withBytes(b)
	case FormatJSONLines:
		docs, err := decodeJSONLines(d.b)
		if err != nil {
			return d.withBytes([]byte(f.doc(string(d.b))))
		}
		for i := range docs {
			docs[i] = mapStrings(docs[i], f.leaf)
		}
		b, err := encodeJSONLines(docs)
		if err != nil {
			return d
		}
		return d.withBytes(b)
	default:
		return d
	}
}

// mapStrings applies fn to every string value and object key in a decoded
// JSON tree.
func mapStrings(v any, fn func(string) string) any {
	switch t := v.(type) {
	case string:
		return fn(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = mapStrings(e, fn)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fn(k)] = mapStrings(e, fn)
		}
		return out
	default:
		return v
	}
}

func lineEndings(s string) string {
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// Newlines converts CRLF and CR line endings to LF. Text documents also
// get a trailing newline if they lack one.
var Newlines Filter = textFilter{doc: textnorm.Newlines, leaf: lineEndings}

// Paths converts backslash path separators to forward slashes.
var Paths Filter = textFilter{doc: textnorm.Paths, leaf: textnorm.Paths}

// RedactWith returns a filter replacing every known value of r with its
// placeholder. New snapshots pass through it so they start out redacted.
func RedactWith(r *Redactions) Filter {
	return textFilter{doc: r.Redact, leaf: r.Redact}
}

// Apply runs filters in order. Raw content is returned unchanged.
func Apply(d Data, filters ...Filter) Data {
	if d.raw {
		return d
	}
	for _, f := range filters {
		d = f.Filter(d)
	}
	return d
}
