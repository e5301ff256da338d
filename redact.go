package golden

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/cboone/golden/internal/textnorm"
)

// Built-in wildcard and placeholder tokens.
const (
	AnyText   = "[..]"
	AnyLines  = "..."
	PhExe     = "[EXE]"
	PhRoot    = "[ROOT]"
	PhCwd     = "[CWD]"
	redactGrp = "redacted"
)

var placeholderName = regexp.MustCompile(`^\[[A-Z][A-Z0-9_]*\]$`)

func isBuiltin(placeholder string) bool {
	switch placeholder {
	case AnyText, AnyLines, PhExe, PhRoot, PhCwd:
		return true
	}
	return false
}

type ruleKind int

const (
	literalRule ruleKind = iota
	regexpRule
	uuidRule
)

type rule struct {
	placeholder string
	kind        ruleKind
	values      []string
	re          *regexp.Regexp
	anchored    *regexp.Regexp
	group       int
}

// Redactions maps placeholders such as "[ROOT]" to the values they stand
// for in actual output. A pattern line containing a placeholder matches an
// actual line holding any of the placeholder's values at that position.
//
// A Redactions is built once and then only read, so it may be shared by
// parallel tests.
type Redactions struct {
	rules map[string]*rule
}

// NewRedactions returns a set holding the built-in placeholders: [EXE] is
// the executable suffix of the platform, [CWD] the working directory, and
// [ROOT] the nearest enclosing directory with a go.mod file.
func NewRedactions() *Redactions {
	r := &Redactions{rules: make(map[string]*rule)}
	exe := ""
	if runtime.GOOS == "windows" {
		exe = ".exe"
	}
	r.setLiteral(PhExe, exe)
	if cwd, err := os.Getwd(); err == nil {
		r.setLiteral(PhCwd, pathForms(cwd)...)
		if root, ok := findRoot(cwd); ok {
			r.setLiteral(PhRoot, pathForms(root)...)
		}
	}
	return r
}

// Clone returns an independent copy of r.
func (r *Redactions) Clone() *Redactions {
	out := &Redactions{rules: make(map[string]*rule, len(r.rules))}
	for k, v := range r.rules {
		cp := *v
		cp.values = slices.Clone(v.values)
		out.rules[k] = &cp
	}
	return out
}

// Insert registers literal values for a user placeholder. Values add to
// those already registered for the placeholder.
func (r *Redactions) Insert(placeholder string, values ...string) error {
	if err := checkPlaceholder(placeholder); err != nil {
		return err
	}
	if len(values) == 0 {
		return &RedactionError{Placeholder: placeholder, Err: errors.New("no values given")}
	}
	if existing, ok := r.rules[placeholder]; ok && existing.kind != literalRule {
		return &RedactionError{Placeholder: placeholder, Err: errors.New("already registered as a pattern rule")}
	}
	r.addLiteral(placeholder, values...)
	return nil
}

// InsertPath registers every literal form of a filesystem path: as given,
// with forward slashes, with symlinks resolved, and with the Windows
// extended-length prefix.
func (r *Redactions) InsertPath(placeholder, path string) error {
	if err := checkPlaceholder(placeholder); err != nil {
		return err
	}
	return r.Insert(placeholder, pathForms(path)...)
}

// InsertRegexp registers a pattern rule. If the expression has a group
// named "redacted", only that group's span stands for the placeholder;
// otherwise the whole match does.
func (r *Redactions) InsertRegexp(placeholder, expr string) error {
	if err := checkPlaceholder(placeholder); err != nil {
		return err
	}
	if _, ok := r.rules[placeholder]; ok {
		return &RedactionError{Placeholder: placeholder, Expr: expr, Err: errors.New("already registered")}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return &RedactionError{Placeholder: placeholder, Expr: expr, Err: err}
	}
	anchored, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return &RedactionError{Placeholder: placeholder, Expr: expr, Err: err}
	}
	group := re.SubexpIndex(redactGrp)
	if group < 0 {
		group = 0
	}
	r.rules[placeholder] = &rule{placeholder: placeholder, kind: regexpRule, re: re, anchored: anchored, group: group}
	return nil
}

// InsertUUID registers a placeholder standing for any valid UUID.
func (r *Redactions) InsertUUID(placeholder string) error {
	if err := checkPlaceholder(placeholder); err != nil {
		return err
	}
	if _, ok := r.rules[placeholder]; ok {
		return &RedactionError{Placeholder: placeholder, Err: errors.New("already registered")}
	}
	r.rules[placeholder] = &rule{placeholder: placeholder, kind: uuidRule}
	return nil
}

// Placeholders returns the registered placeholders in sorted order.
func (r *Redactions) Placeholders() []string {
	out := make([]string, 0, len(r.rules))
	for k := range r.rules {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Values returns the literal values of a placeholder, longest first.
func (r *Redactions) Values(placeholder string) []string {
	if ru, ok := r.rules[placeholder]; ok {
		return slices.Clone(ru.values)
	}
	return nil
}

// Redact replaces every occurrence of a known value in s with its
// placeholder, regardless of any pattern. It is used to seed new snapshots.
func (r *Redactions) Redact(s string) string {
	type span struct {
		start, end  int
		placeholder string
	}
	var spans []span
	for _, ph := range r.Placeholders() {
		ru := r.rules[ph]
		switch ru.kind {
		case literalRule:
			for _, v := range ru.values {
				if v == "" {
					continue
				}
				for off := 0; ; {
					i := strings.Index(s[off:], v)
					if i < 0 {
						break
					}
					spans = append(spans, span{off + i, off + i + len(v), ph})
					off += i + len(v)
				}
			}
		case regexpRule:
			for _, loc := range ru.re.FindAllStringSubmatchIndex(s, -1) {
				start, end := loc[2*ru.group], loc[2*ru.group+1]
				if start >= 0 && end > start {
					spans = append(spans, span{start, end, ph})
				}
			}
		case uuidRule:
			for _, loc := range uuidText.FindAllStringIndex(s, -1) {
				if uuid.Validate(s[loc[0]:loc[1]]) == nil {
					spans = append(spans, span{loc[0], loc[1], ph})
				}
			}
		}
	}
	if len(spans) == 0 {
		return s
	}
	// Longer spans win over shorter ones that overlap them.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end-spans[i].start > spans[j].end-spans[j].start
	})
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.start < pos {
			continue
		}
		b.WriteString(s[pos:sp.start])
		b.WriteString(sp.placeholder)
		pos = sp.end
	}
	b.WriteString(s[pos:])
	return b.String()
}

var uuidText = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)

// ends returns the end offsets of every value of the rule that starts at
// pos in s, longest first. The placeholder's own name always counts as a
// value. For regexp rules, found holds the ends of the matches of the
// whole line that start at pos.
func (ru *rule) ends(s string, pos int, found []int) []int {
	var out []int
	if strings.HasPrefix(s[pos:], ru.placeholder) {
		out = append(out, pos+len(ru.placeholder))
	}
	switch ru.kind {
	case literalRule:
		for _, v := range ru.values {
			if strings.HasPrefix(s[pos:], v) {
				out = append(out, pos+len(v))
			}
		}
	case regexpRule:
		out = append(out, found...)
		if ru.group == 0 {
			if loc := ru.anchored.FindStringIndex(s[pos:]); loc != nil {
				out = append(out, pos+loc[1])
			}
		}
	case uuidRule:
		// Hyphenated, braced, URN and bare forms.
		for _, n := range []int{45, 38, 36, 32} {
			if pos+n <= len(s) && uuid.Validate(s[pos:pos+n]) == nil {
				out = append(out, pos+n)
			}
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	slices.Reverse(out)
	return out
}

func checkPlaceholder(placeholder string) error {
	if isBuiltin(placeholder) {
		return &UsageError{Op: "redactions", Msg: fmt.Sprintf("%s is a built-in placeholder", placeholder)}
	}
	if !placeholderName.MatchString(placeholder) {
		return &RedactionError{Placeholder: placeholder, Err: errors.New("placeholder must be [A-Z0-9_] enclosed in brackets")}
	}
	return nil
}

// setLiteral replaces the values of a built-in placeholder.
func (r *Redactions) setLiteral(placeholder string, values ...string) {
	delete(r.rules, placeholder)
	r.addLiteral(placeholder, values...)
}

func (r *Redactions) addLiteral(placeholder string, values ...string) {
	ru, ok := r.rules[placeholder]
	if !ok {
		ru = &rule{placeholder: placeholder, kind: literalRule}
		r.rules[placeholder] = ru
	}
	for _, v := range values {
		// Actual text is usually path-normalized before matching.
		for _, form := range []string{v, textnorm.Paths(v)} {
			if !slices.Contains(ru.values, form) {
				ru.values = append(ru.values, form)
			}
		}
	}
	sort.SliceStable(ru.values, func(i, j int) bool {
		return len(ru.values[i]) > len(ru.values[j])
	})
}

func pathForms(path string) []string {
	forms := []string{path, filepath.ToSlash(path)}
	if resolved, err := filepath.EvalSymlinks(path); err == nil && resolved != path {
		forms = append(forms, resolved, filepath.ToSlash(resolved))
	}
	if runtime.GOOS == "windows" {
		forms = append(forms, `\\?\`+path)
	}
	return forms
}

// findRoot walks up from dir to the nearest directory holding go.mod.
func findRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
