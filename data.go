package golden

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"unicode/utf8"

	"github.com/cboone/golden/internal/inline"
)

// Data is an immutable snapshot value: content plus its Format and Source.
// Methods that change a property return a modified copy.
type Data struct {
	b         []byte
	format    Format
	source    Source
	raw       bool
	unordered bool
	missing   bool
	err       error
}

// Text returns generated text content.
func Text(s string) Data {
	return Data{b: []byte(s), format: FormatText}
}

// TermStyled returns generated terminal output that keeps its escape
// sequences.
func TermStyled(s string) Data {
	return Data{b: []byte(s), format: FormatTermStyled}
}

// Binary returns generated binary content. The slice is copied.
func Binary(b []byte) Data {
	return Data{b: bytes.Clone(b), format: FormatBinary}
}

// FromBytes returns generated content of the given format without
// validating it. Use Is to validate.
func FromBytes(b []byte, f Format) Data {
	return Data{b: bytes.Clone(b), format: f}
}

// JSON returns v encoded as an indented JSON document. If v cannot be
// encoded the result is in an error state: it renders the error and cannot
// be written to a snapshot.
func JSON(v any) Data {
	b, err := encodeJSON(v, true)
	if err != nil {
		return Data{format: FormatJSON, err: &FormatError{Format: FormatJSON, Err: err}}
	}
	return Data{b: b, format: FormatJSON}
}

// JSONLines returns each value encoded as one line of JSON.
func JSONLines(vs ...any) Data {
	var buf bytes.Buffer
	for _, v := range vs {
		b, err := encodeJSON(v, false)
		if err != nil {
			return Data{format: FormatJSONLines, err: &FormatError{Format: FormatJSONLines, Err: err}}
		}
		buf.Write(b)
	}
	return Data{b: buf.Bytes(), format: FormatJSONLines}
}

// ToDebug returns the Go-syntax representation of v as text.
func ToDebug(v any) Data {
	return Text(fmt.Sprintf("%#v\n", v))
}

// Read loads a snapshot file. The format comes from the file extension;
// files without a recognized extension are text unless their bytes are
// binary. A file that does not exist yields missing Data that Create and
// Overwrite can write.
func Read(path string) Data {
	f, ok := formatFromPath(path)
	d := readFile(path, f)
	if !ok && !d.missing && d.err == nil && looksBinary(d.b) {
		d.format = FormatBinary
	}
	return d
}

// ReadAs loads a snapshot file as the given format.
func ReadAs(path string, f Format) Data {
	return readFile(path, f)
}

func readFile(path string, f Format) Data {
	d := Data{
		format: f,
		source: Source{kind: SourceFile, path: path, target: FileTarget(path)},
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.missing = true
	case err != nil:
		d.err = fmt.Errorf("golden: read snapshot: %w", err)
	default:
		d.b = b
	}
	return d
}

// Inline returns expected text written directly in a test file. When the
// literal starts with a newline and ends with an indentation-only line, that
// layout is removed: the leading newline is dropped and every line loses the
// final line's indentation.
//
// Overwrite and Create rewrite the literal in place.
func Inline(s string) Data {
	d := Text(inline.Trim(s))
	if _, file, line, ok := runtime.Caller(1); ok {
		d.source = Source{kind: SourceInline, path: file, line: line, target: inlineTarget{file: file, line: line}}
	}
	return d
}

// WithTarget returns a copy of d that writes updates to t.
func (d Data) WithTarget(t UpdateTarget) Data {
	d.source.target = t
	return d
}

// Format returns the content format.
func (d Data) Format() Format { return d.format }

// Source returns the content origin.
func (d Data) Source() Source { return d.source }

// Missing reports whether d names a snapshot file that does not exist yet.
func (d Data) Missing() bool { return d.missing }

// Err returns the error that put d in an error state, or nil.
func (d Data) Err() error { return d.err }

// Bytes returns a copy of the content.
func (d Data) Bytes() []byte {
	if d.err != nil {
		return []byte(d.String())
	}
	return bytes.Clone(d.b)
}

// String renders the content as text.
func (d Data) String() string {
	if d.err != nil {
		return fmt.Sprintf("<error: %v>\n", d.err)
	}
	return string(d.b)
}

// Raw returns a copy of d that bypasses every filter, so the comparison is
// exact after format conversion.
func (d Data) Raw() Data {
	d.raw = true
	return d
}

// IsRaw reports whether filters are disabled.
func (d Data) IsRaw() bool { return d.raw }

// Unordered returns a copy of d whose lines, or JSON array elements, may
// appear in any order.
func (d Data) Unordered() Data {
	d.unordered = true
	return d
}

// IsUnordered reports whether order is ignored.
func (d Data) IsUnordered() bool { return d.unordered }

// Is converts d to format f, failing with a *FormatError if the content is
// not valid for f.
func (d Data) Is(f Format) (Data, error) {
	if d.err != nil {
		return d, d.err
	}
	if d.format == f {
		return d, d.validate()
	}
	out := d
	out.format = f
	if err := out.validate(); err != nil {
		return d, err
	}
	return out, nil
}

// Coerce converts d to format f when the content allows it and otherwise
// returns d unchanged.
func (d Data) Coerce(f Format) Data {
	out, err := d.Is(f)
	if err != nil {
		return d
	}
	return out
}

func (d Data) validate() error {
	if d.missing {
		return nil
	}
	switch d.format {
	case FormatBinary:
		return nil
	case FormatText, FormatTermStyled:
		if !utf8.Valid(d.b) {
			return &FormatError{Format: d.format, Path: d.source.path, Err: errors.New("invalid UTF-8")}
		}
		return nil
	case FormatJSON:
		_, err := decodeJSON(d.b)
		if err != nil {
			return &FormatError{Format: d.format, Path: d.source.path, Err: err}
		}
		return nil
	case FormatJSONLines:
		_, err := decodeJSONLines(d.b)
		if err != nil {
			return &FormatError{Format: d.format, Path: d.source.path, Err: err}
		}
		return nil
	default:
		panic(fmt.Sprintf("golden: unknown format %d", int(d.format)))
	}
}

// withBytes returns a copy of d holding b.
func (d Data) withBytes(b []byte) Data {
	d.b = b
	d.missing = false
	return d
}
