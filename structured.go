package golden

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/cboone/golden/internal/align"
)

// AnyValue matches any JSON value, like AnyLines does.
const AnyValue = "{...}"

// decodeJSON parses one JSON document. Comments and trailing commas are
// accepted so that hand-edited snapshots can carry notes.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON document")
	}
	return v, nil
}

// decodeJSONLines parses one JSON document per non-blank line.
func decodeJSONLines(b []byte) ([]any, error) {
	docs := []any{}
	for i, line := range bytes.Split(b, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		v, err := decodeJSON(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		docs = append(docs, v)
	}
	return docs, nil
}

func encodeJSON(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSONLines(docs []any) ([]byte, error) {
	var buf bytes.Buffer
	for _, d := range docs {
		b, err := encodeJSON(d, false)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

func compactJSON(v any) string {
	b, err := encodeJSON(v, false)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(string(b), "\n")
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func childPath(path, key string) string {
	return path + "/" + pointerEscaper.Replace(key)
}

func indexPath(path string, i int) string {
	return path + "/" + strconv.Itoa(i)
}

func isAnyValue(v any) bool {
	s, ok := v.(string)
	return ok && (s == AnyLines || s == AnyValue)
}

func isElision(v any) bool {
	s, ok := v.(string)
	return ok && s == AnyLines
}

// jsonMatcher compares decoded JSON trees. Expected strings are line
// patterns, so wildcards and placeholders work inside values.
type jsonMatcher struct {
	r         *Redactions
	unordered bool
	diffs     []Difference
	applied   []string
}

// match compares exp with act at the JSON Pointer path and returns act
// normalized toward exp.
func (m *jsonMatcher) match(path string, exp, act any) any {
	if isAnyValue(exp) {
		return exp
	}
	switch e := exp.(type) {
	case map[string]any:
		a, ok := act.(map[string]any)
		if !ok {
			return m.typeMismatch(path, exp, act)
		}
		return m.matchObject(path, e, a)
	case []any:
		a, ok := act.([]any)
		if !ok {
			return m.typeMismatch(path, exp, act)
		}
		if m.unordered {
			return m.matchMultiset(path, e, a)
		}
		return m.matchArray(path, e, a)
	case string:
		a, ok := act.(string)
		if !ok {
			return m.typeMismatch(path, exp, act)
		}
		res := matchText(e, a, m.r, false, false)
		if res.equal() {
			m.applied = append(m.applied, res.applied...)
			return e
		}
		m.diffs = append(m.diffs, Difference{Kind: ValueChanged, Path: path, Expected: compactJSON(e), Actual: compactJSON(a)})
		return res.normalized
	case json.Number:
		a, ok := act.(json.Number)
		if !ok {
			return m.typeMismatch(path, exp, act)
		}
		if numbersEqual(e, a) {
			return e
		}
		m.diffs = append(m.diffs, Difference{Kind: ValueChanged, Path: path, Expected: e.String(), Actual: a.String()})
		return a
	case bool:
		a, ok := act.(bool)
		if !ok {
			return m.typeMismatch(path, exp, act)
		}
		if e != a {
			m.diffs = append(m.diffs, Difference{Kind: ValueChanged, Path: path, Expected: compactJSON(e), Actual: compactJSON(a)})
		}
		return a
	case nil:
		if act != nil {
			return m.typeMismatch(path, exp, act)
		}
		return nil
	default:
		if compactJSON(exp) != compactJSON(act) {
			m.diffs = append(m.diffs, Difference{Kind: ValueChanged, Path: path, Expected: compactJSON(exp), Actual: compactJSON(act)})
		}
		return act
	}
}

func (m *jsonMatcher) typeMismatch(path string, exp, act any) any {
	m.diffs = append(m.diffs, Difference{
		Kind:     TypeMismatch,
		Path:     path,
		Expected: jsonType(exp) + " " + compactJSON(exp),
		Actual:   jsonType(act) + " " + compactJSON(act),
	})
	return act
}

// matchObject requires every listed key. A "..." key lets the actual object
// carry keys the expected object does not list.
func (m *jsonMatcher) matchObject(path string, e, a map[string]any) any {
	_, open := e[AnyLines]
	norm := make(map[string]any, len(e))
	for _, k := range sortedKeys(e) {
		if k == AnyLines {
			norm[k] = e[k]
			continue
		}
		av, ok := a[k]
		if !ok {
			m.diffs = append(m.diffs, Difference{Kind: KeyMissing, Path: childPath(path, k), Expected: compactJSON(e[k])})
			continue
		}
		norm[k] = m.match(childPath(path, k), e[k], av)
	}
	for _, k := range sortedKeys(a) {
		if _, listed := e[k]; listed || open {
			continue
		}
		m.diffs = append(m.diffs, Difference{Kind: KeyUnexpected, Path: childPath(path, k), Actual: compactJSON(a[k])})
		norm[k] = a[k]
	}
	return norm
}

// matchArray aligns elements in order; a "..." element absorbs zero or more
// actual elements.
func (m *jsonMatcher) matchArray(path string, e, a []any) any {
	aln := align.Sequences(len(e), len(a),
		func(i int) bool { return isElision(e[i]) },
		func(i, j int) bool { return m.equal(e[i], a[j]) },
	)
	norm := make([]any, 0, len(a))
	for _, st := range aln.Steps {
		switch st.Op {
		case align.Match, align.Substitute:
			norm = append(norm, m.match(indexPath(path, st.A), e[st.P], a[st.A]))
		case align.Elide:
			norm = append(norm, e[st.P])
		case align.Extra:
			m.diffs = append(m.diffs, Difference{Kind: ElementUnexpected, Path: indexPath(path, st.A), Actual: compactJSON(a[st.A])})
			norm = append(norm, a[st.A])
		case align.Missing:
			m.diffs = append(m.diffs, Difference{Kind: ElementMissing, Path: indexPath(path, st.P), Expected: compactJSON(e[st.P])})
		}
	}
	return norm
}

// matchMultiset compares arrays as multisets, pairing as many expected
// elements as possible with actual elements equal to them.
func (m *jsonMatcher) matchMultiset(path string, e, a []any) any {
	partner := align.Assign(len(e), len(a), func(i, j int) bool {
		return !isElision(e[i]) && m.equal(e[i], a[j])
	})
	claimed := make([]bool, len(a))
	open := false
	norm := make([]any, 0, len(a))
	for i, ev := range e {
		switch j := partner[i]; {
		case isElision(ev):
			open = true
			norm = append(norm, ev)
		case j >= 0:
			claimed[j] = true
			norm = append(norm, m.match(indexPath(path, j), ev, a[j]))
		default:
			m.diffs = append(m.diffs, Difference{Kind: ElementMissing, Path: indexPath(path, i), Expected: compactJSON(ev)})
		}
	}
	for j, av := range a {
		if claimed[j] || open {
			continue
		}
		m.diffs = append(m.diffs, Difference{Kind: ElementUnexpected, Path: indexPath(path, j), Actual: compactJSON(av)})
		norm = append(norm, av)
	}
	return norm
}

// equal reports whether act matches exp with no differences.
func (m *jsonMatcher) equal(exp, act any) bool {
	sub := &jsonMatcher{r: m.r, unordered: m.unordered}
	sub.match("", exp, act)
	return len(sub.diffs) == 0
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, ok := new(big.Rat).SetString(a.String())
	if !ok {
		return false
	}
	y, ok := new(big.Rat).SetString(b.String())
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type structuredResult struct {
	expected   []byte
	normalized []byte
	diffs      []Difference
	applied    []string
}

// matchStructured compares two JSON or JSON lines documents.
func matchStructured(exp, act Data, r *Redactions, unordered bool) (structuredResult, error) {
	m := &jsonMatcher{r: r, unordered: unordered}
	var res structuredResult
	switch exp.format {
	case FormatJSON:
		ev, err := decodeJSON(exp.b)
		if err != nil {
			return res, &FormatError{Format: FormatJSON, Path: exp.source.path, Err: err}
		}
		av, err := decodeJSON(act.b)
		if err != nil {
			return res, &FormatError{Format: FormatJSON, Path: act.source.path, Err: err}
		}
		norm := m.match("", ev, av)
		if res.expected, err = encodeJSON(ev, true); err != nil {
			return res, err
		}
		if res.normalized, err = encodeJSON(norm, true); err != nil {
			return res, err
		}
	case FormatJSONLines:
		ev, err := decodeJSONLines(exp.b)
		if err != nil {
			return res, &FormatError{Format: FormatJSONLines, Path: exp.source.path, Err: err}
		}
		av, err := decodeJSONLines(act.b)
		if err != nil {
			return res, &FormatError{Format: FormatJSONLines, Path: act.source.path, Err: err}
		}
		var norm any
		if unordered {
			norm = m.matchMultiset("", ev, av)
		} else {
			norm = m.matchArray("", ev, av)
		}
		if res.expected, err = encodeJSONLines(ev); err != nil {
			return res, err
		}
		if res.normalized, err = encodeJSONLines(norm.([]any)); err != nil {
			return res, err
		}
	default:
		panic(fmt.Sprintf("golden: %s is not a structured format", exp.format))
	}
	res.diffs = m.diffs
	slices.Sort(m.applied)
	res.applied = slices.Compact(m.applied)
	return res, nil
}
