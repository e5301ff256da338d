// Package inline rewrites the string literal passed to an Inline call in a
// Go source file.
package inline

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Trim removes the layout of an indented raw string literal. It applies
// only when s starts with a newline and its last line holds nothing but
// spaces or tabs: the leading newline is dropped, that last line is dropped,
// and every other line loses the last line's indentation. Lines that are
// blank lose all of their whitespace. Any other s is returned unchanged.
func Trim(s string) string {
	if !strings.HasPrefix(s, "\n") {
		return s
	}
	body := s[1:]
	i := strings.LastIndexByte(body, '\n')
	indent := body[i+1:]
	if strings.Trim(indent, " \t") != "" {
		return s
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(body[:i+1], "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, indent):
			text = text[len(indent):]
		case strings.Trim(text, " \t") == "":
			text = ""
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Literal renders content as Go source for an Inline argument whose call
// starts on a line indented by indent. Content that ends with a newline
// and holds no backquotes or carriage returns becomes an indented raw
// string; anything else is quoted. Either way Trim of the literal's value
// gives back content.
func Literal(content, indent string) (string, error) {
	if raw, ok := rawLiteral(content, indent); ok {
		return raw, nil
	}
	if Trim(content) != content {
		return "", fmt.Errorf("content %q would be re-indented when read back", truncate(content))
	}
	return strconv.Quote(content), nil
}

func rawLiteral(content, indent string) (string, bool) {
	if content == "" || !strings.HasSuffix(content, "\n") || strings.ContainsAny(content, "`\r") {
		return "", false
	}
	inner := indent + "\t"
	var b strings.Builder
	b.WriteString("`\n")
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		if line != "" {
			b.WriteString(inner)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	b.WriteString(inner)
	b.WriteByte('`')
	lit := b.String()
	if Trim(lit[1:len(lit)-1]) != content {
		return "", false
	}
	return lit, true
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

type patch struct {
	start, end int
	text       string
}

type fileState struct {
	orig    []byte
	mode    os.FileMode
	patches []patch
}

var (
	mu    sync.Mutex
	files = map[string]*fileState{}
)

// Patch replaces the literal argument of the Inline call covering line in
// file with content. Offsets refer to the file as first read, so several
// literals in one file can be patched during a run. Patching the same
// literal twice is fine when the content agrees and an error otherwise.
func Patch(file string, line int, content string) error {
	mu.Lock()
	defer mu.Unlock()

	st, ok := files[file]
	if !ok {
		info, err := os.Stat(file)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		st = &fileState{orig: b, mode: info.Mode().Perm()}
		files[file] = st
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, st.orig, parser.SkipObjectResolution)
	if err != nil {
		return err
	}
	call := findCall(fset, f, line)
	if call == nil {
		return fmt.Errorf("%s:%d: no Inline call found", file, line)
	}
	if len(call.Args) != 1 {
		return fmt.Errorf("%s:%d: Inline call has %d arguments", file, line, len(call.Args))
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return fmt.Errorf("%s:%d: Inline argument is not a string literal", file, line)
	}

	start := fset.Position(lit.Pos()).Offset
	end := fset.Position(lit.End()).Offset
	text, err := Literal(content, lineIndent(st.orig, fset.Position(call.Pos()).Offset))
	if err != nil {
		return fmt.Errorf("%s:%d: %w", file, line, err)
	}

	for _, p := range st.patches {
		if p.start != start {
			continue
		}
		if p.text != text {
			return errors.New(file + ":" + strconv.Itoa(line) + ": literal already rewritten with different content")
		}
		return nil
	}
	st.patches = append(st.patches, patch{start: start, end: end, text: text})
	return os.WriteFile(file, st.render(), st.mode)
}

func (st *fileState) render() []byte {
	ps := append([]patch(nil), st.patches...)
	sort.Slice(ps, func(i, j int) bool { return ps[i].start < ps[j].start })
	var out []byte
	last := 0
	for _, p := range ps {
		out = append(out, st.orig[last:p.start]...)
		out = append(out, p.text...)
		last = p.end
	}
	return append(out, st.orig[last:]...)
}

// findCall returns the innermost Inline call whose source spans line.
func findCall(fset *token.FileSet, f *ast.File, line int) *ast.CallExpr {
	var best *ast.CallExpr
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !isInline(call.Fun) {
			return true
		}
		from := fset.Position(call.Pos()).Line
		to := fset.Position(call.End()).Line
		if line < from || line > to {
			return true
		}
		if best == nil || call.End()-call.Pos() < best.End()-best.Pos() {
			best = call
		}
		return true
	})
	return best
}

func isInline(fun ast.Expr) bool {
	switch fn := fun.(type) {
	case *ast.Ident:
		return fn.Name == "Inline"
	case *ast.SelectorExpr:
		return fn.Sel.Name == "Inline"
	default:
		return false
	}
}

// lineIndent returns the leading whitespace of the line holding offset.
func lineIndent(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
