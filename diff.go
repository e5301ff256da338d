package golden

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/cboone/golden/internal/textnorm"
)

const (
	// diffContext is the number of unchanged lines kept around a change.
	diffContext = 3
	// diffElideOver is the longest unchanged run printed in full.
	diffElideOver = 8
	// inlineDiffMax bounds the line length that gets character-level
	// highlighting.
	inlineDiffMax = 512

	noNewlineMarker = "∅"
)

var visibleEscapes = strings.NewReplacer("\x1b", "␛", "\r", "␍")

// Diff renders the differences between expected and actual after the same
// matching Match performs. Identical content renders as context lines,
// with long runs elided.
func Diff(expected, actual Data, opts ...Option) string {
	o, err := buildOptions(opts)
	if err != nil {
		return err.Error() + "\n"
	}
	out, err := o.match(expected, actual)
	if err != nil {
		return err.Error() + "\n"
	}
	return o.render(out)
}

// render writes the report for out: a header naming the expected source,
// then a line diff between the filtered expected content and the
// normalized actual content.
func (o *options) render(out Outcome) string {
	p := *o.palette
	var b strings.Builder

	expLabel, actLabel := "expected", "actual"
	if l := o.label(out.Expected.source); l != "" {
		expLabel, actLabel = l+" (expected)", l+" (actual)"
	}
	b.WriteString(p.paint(p.header, "--- "+expLabel))
	b.WriteByte('\n')
	b.WriteString(p.paint(p.header, "+++ "+actLabel))
	b.WriteByte('\n')

	if out.Expected.missing {
		b.WriteString(p.paint(p.marker, "snapshot does not exist"))
		b.WriteByte('\n')
		writeLineDiff(&b, p, nil, textnorm.SplitLines(out.Actual.String()), true)
		return b.String()
	}

	if out.Expected.format == FormatBinary || out.Actual.format == FormatBinary {
		eb, ab := out.Expected.b, out.Actual.Bytes()
		if !out.Equal {
			fmt.Fprintf(&b, "binary content differs: expected %s, actual %s\n",
				humanize.Bytes(uint64(len(eb))), humanize.Bytes(uint64(len(ab))))
		}
		writeLineDiff(&b, p, hexLines(eb), hexLines(ab), false)
		return b.String()
	}

	writeLineDiff(&b, p, textnorm.SplitLines(out.Expected.String()), textnorm.SplitLines(out.Actual.String()), true)
	return b.String()
}

// label names a source for the diff header, relative to the project root
// when possible.
func (o *options) label(s Source) string {
	path := s.path
	if path == "" {
		return ""
	}
	if o.root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(o.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	path = filepath.ToSlash(path)
	if s.kind == SourceInline {
		return fmt.Sprintf("%s:%d", path, s.line)
	}
	return path
}

func hexLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return textnorm.SplitLines(hex.Dump(b))
}

// writeLineDiff writes the line-level diff of a and b. Lines keep their
// terminators, so a missing final newline shows up as a changed line.
func writeLineDiff(w *strings.Builder, p Palette, a, b []string, elide bool) {
	ops := difflib.NewMatcherWithJunk(a, b, false, nil).GetOpCodes()
	for k, op := range ops {
		switch op.Tag {
		case 'e':
			n := op.I2 - op.I1
			lead, trail := diffContext, diffContext
			if k == 0 {
				lead = 0
			}
			if k == len(ops)-1 {
				trail = 0
			}
			if !elide || n <= diffElideOver || n <= lead+trail {
				for i := 0; i < n; i++ {
					writeContext(w, p, op.I1+i, op.J1+i, a[op.I1+i])
				}
				continue
			}
			for i := 0; i < lead; i++ {
				writeContext(w, p, op.I1+i, op.J1+i, a[op.I1+i])
			}
			w.WriteString(p.paint(p.elided, fmt.Sprintf("%4s %4s ⋮ %d unchanged lines", "", "", n-lead-trail)))
			w.WriteByte('\n')
			for i := n - trail; i < n; i++ {
				writeContext(w, p, op.I1+i, op.J1+i, a[op.I1+i])
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				writeChanged(w, p, i+1, 0, '-', p.removed, []segment{{text: a[i]}})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				writeChanged(w, p, 0, j+1, '+', p.added, []segment{{text: b[j]}})
			}
		case 'r':
			writeReplace(w, p, a[op.I1:op.I2], b[op.J1:op.J2], op.I1, op.J1)
		}
	}
}

// writeReplace pairs removed and added lines in order and highlights the
// characters that differ within each pair.
func writeReplace(w *strings.Builder, p Palette, a, b []string, i0, j0 int) {
	n := min(len(a), len(b))
	segsA := make([][]segment, len(a))
	segsB := make([][]segment, len(b))
	for k := range a {
		segsA[k] = []segment{{text: a[k]}}
	}
	for k := range b {
		segsB[k] = []segment{{text: b[k]}}
	}
	for k := 0; k < n; k++ {
		if len(a[k]) <= inlineDiffMax && len(b[k]) <= inlineDiffMax {
			segsA[k], segsB[k] = charDiff(a[k], b[k])
		}
	}
	for k := range a {
		writeChanged(w, p, i0+k+1, 0, '-', p.removed, segsA[k])
	}
	for k := range b {
		writeChanged(w, p, 0, j0+k+1, '+', p.added, segsB[k])
	}
}

type segment struct {
	text string
	hi   bool
}

// charDiff splits a changed line pair into runs, marking runs that are not
// shared by both lines.
func charDiff(a, b string) (sa, sb []segment) {
	ra, rb := runeStrings(a), runeStrings(b)
	for _, op := range difflib.NewMatcherWithJunk(ra, rb, false, nil).GetOpCodes() {
		ta := strings.Join(ra[op.I1:op.I2], "")
		tb := strings.Join(rb[op.J1:op.J2], "")
		hi := op.Tag != 'e'
		if ta != "" {
			sa = append(sa, segment{text: ta, hi: hi})
		}
		if tb != "" {
			sb = append(sb, segment{text: tb, hi: hi})
		}
	}
	return sa, sb
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func gutter(i, j int, sign byte) string {
	num := func(n int) string {
		if n == 0 {
			return ""
		}
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%4s %4s %c ", num(i), num(j), sign)
}

func writeContext(w *strings.Builder, p Palette, i, j int, line string) {
	w.WriteString(p.paint(p.gutter, gutter(i+1, j+1, '|')))
	text, nl := visibleLine(line)
	w.WriteString(text)
	if !nl {
		w.WriteString(p.paint(p.marker, noNewlineMarker))
	}
	w.WriteByte('\n')
}

func writeChanged(w *strings.Builder, p Palette, i, j int, sign byte, style lipgloss.Style, segs []segment) {
	hiStyle := p.removedHi
	if sign == '+' {
		hiStyle = p.addedHi
	}
	w.WriteString(p.paint(style, gutter(i, j, sign)))
	nl := true
	for k, s := range segs {
		text := s.text
		if k == len(segs)-1 {
			text, nl = visibleLine(text)
		} else {
			text = visibleEscapes.Replace(text)
		}
		if s.hi {
			w.WriteString(p.paint(hiStyle, text))
		} else {
			w.WriteString(p.paint(style, text))
		}
	}
	if !nl {
		w.WriteString(p.paint(p.marker, noNewlineMarker))
	}
	w.WriteByte('\n')
}

// visibleLine strips the terminator from line and makes control
// characters visible. nl reports whether the terminator was present.
func visibleLine(line string) (text string, nl bool) {
	text, nl = strings.CutSuffix(line, "\n")
	return visibleEscapes.Replace(text), nl
}
