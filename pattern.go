package golden

import (
	"slices"
	"strings"

	"github.com/cboone/golden/internal/align"
	"github.com/cboone/golden/internal/textnorm"
)

type tokKind int

const (
	tokLiteral tokKind = iota
	tokAny
	tokPlaceholder
)

type token struct {
	kind tokKind
	text string
	rule *rule
}

// tokenize splits a pattern line into literal text, [..] wildcards and
// registered placeholders. Bracketed text that names no placeholder stays
// literal.
func (r *Redactions) tokenize(line string) []token {
	var toks []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(line); {
		if line[i] == '[' {
			if end := strings.IndexByte(line[i:], ']'); end > 0 {
				name := line[i : i+end+1]
				if name == AnyText {
					flush()
					toks = append(toks, token{kind: tokAny, text: name})
					i += end + 1
					continue
				}
				if ru, ok := r.rules[name]; ok {
					flush()
					toks = append(toks, token{kind: tokPlaceholder, text: name, rule: ru})
					i += end + 1
					continue
				}
			}
		}
		lit.WriteByte(line[i])
		i++
	}
	flush()
	return toks
}

type lineMatcher struct {
	toks    []token
	s       string
	failed  map[[2]int]bool
	applied []string
	// found caches, per regexp rule, the match ends by start offset in s.
	found map[*rule]map[int][]int
}

func (m *lineMatcher) regexpEnds(ru *rule, pos int) []int {
	if ru.kind != regexpRule {
		return nil
	}
	byStart, ok := m.found[ru]
	if !ok {
		byStart = make(map[int][]int)
		for _, loc := range ru.re.FindAllStringSubmatchIndex(m.s, -1) {
			start, end := loc[2*ru.group], loc[2*ru.group+1]
			if start >= 0 {
				byStart[start] = append(byStart[start], end)
			}
		}
		if m.found == nil {
			m.found = make(map[*rule]map[int][]int)
		}
		m.found[ru] = byStart
	}
	return byStart[pos]
}

func (m *lineMatcher) match(ti, pos int) bool {
	if ti == len(m.toks) {
		return pos == len(m.s)
	}
	key := [2]int{ti, pos}
	if m.failed[key] {
		return false
	}
	tok := m.toks[ti]
	switch tok.kind {
	case tokLiteral:
		if strings.HasPrefix(m.s[pos:], tok.text) && m.match(ti+1, pos+len(tok.text)) {
			return true
		}
	case tokAny:
		// Shortest span first.
		for end := pos; end <= len(m.s); end++ {
			if m.match(ti+1, end) {
				return true
			}
		}
	case tokPlaceholder:
		for _, end := range tok.rule.ends(m.s, pos, m.regexpEnds(tok.rule, pos)) {
			if m.match(ti+1, end) {
				m.applied = append(m.applied, tok.text)
				return true
			}
		}
	}
	m.failed[key] = true
	return false
}

// matchLine reports whether an actual line, without its terminator, matches
// a pattern line. It returns the placeholders that took part in the match.
func (r *Redactions) matchLine(pattern, actual string) (bool, []string) {
	if pattern == actual {
		return true, nil
	}
	toks := r.tokenize(pattern)
	wild := false
	for _, t := range toks {
		if t.kind != tokLiteral {
			wild = true
			break
		}
	}
	if !wild {
		return false, nil
	}
	m := &lineMatcher{toks: toks, s: actual, failed: make(map[[2]int]bool)}
	if !m.match(0, 0) {
		return false, nil
	}
	return true, m.applied
}

// MatchLine reports whether one actual line matches one pattern line using
// the [..] wildcard and the placeholders of r.
func (r *Redactions) MatchLine(pattern, actual string) bool {
	ok, _ := r.matchLine(pattern, actual)
	return ok
}

type textResult struct {
	normalized string
	diffs      []Difference
	applied    []string
}

func (t textResult) equal() bool { return len(t.diffs) == 0 }

// matchText compares an expected pattern document with actual text line by
// line. With literal set, wildcards and placeholders are plain text.
func matchText(expected, actual string, r *Redactions, literal, unordered bool) textResult {
	if expected == actual {
		return textResult{normalized: actual}
	}
	pl := textnorm.SplitLines(expected)
	al := textnorm.SplitLines(actual)

	elide := func(i int) bool {
		return !literal && strings.TrimSuffix(pl[i], "\n") == AnyLines
	}
	lineEq := func(p, a string) (bool, []string) {
		pc, pt := strings.CutSuffix(p, "\n")
		ac, at := strings.CutSuffix(a, "\n")
		if pt != at {
			return false, nil
		}
		if pc == ac {
			return true, nil
		}
		if literal {
			return false, nil
		}
		return r.matchLine(pc, ac)
	}

	var res textResult
	if unordered {
		res = matchUnordered(pl, al, elide, lineEq)
	} else {
		res = matchOrdered(pl, al, elide, lineEq)
	}
	slices.Sort(res.applied)
	res.applied = slices.Compact(res.applied)
	if res.equal() && res.normalized != expected {
		// Only line terminators differ.
		last := len(pl) - 1
		d := Difference{Kind: LineChanged, ExpectedLine: last + 1, ActualLine: len(al)}
		if last >= 0 {
			d.Expected = pl[last]
		}
		if len(al) > 0 {
			d.Actual = al[len(al)-1]
		}
		res.diffs = append(res.diffs, d)
	}
	return res
}

func matchOrdered(pl, al []string, elide func(int) bool, lineEq func(p, a string) (bool, []string)) textResult {
	aln := align.Sequences(len(pl), len(al), elide, func(i, j int) bool {
		ok, _ := lineEq(pl[i], al[j])
		return ok
	})
	var res textResult
	var b strings.Builder
	for _, st := range aln.Steps {
		switch st.Op {
		case align.Match:
			_, applied := lineEq(pl[st.P], al[st.A])
			res.applied = append(res.applied, applied...)
			b.WriteString(pl[st.P])
		case align.Elide:
			b.WriteString(pl[st.P])
		case align.Substitute:
			b.WriteString(al[st.A])
			res.diffs = append(res.diffs, Difference{
				Kind:         LineChanged,
				ExpectedLine: st.P + 1,
				ActualLine:   st.A + 1,
				Expected:     pl[st.P],
				Actual:       al[st.A],
			})
		case align.Extra:
			b.WriteString(al[st.A])
			res.diffs = append(res.diffs, Difference{Kind: LineUnexpected, ActualLine: st.A + 1, Actual: al[st.A]})
		case align.Missing:
			res.diffs = append(res.diffs, Difference{Kind: LineMissing, ExpectedLine: st.P + 1, Expected: pl[st.P]})
		}
	}
	res.normalized = b.String()
	return res
}

// matchUnordered pairs expected lines with actual lines regardless of
// order, matching as many expected lines as possible. The normalized text
// lists the expected lines that matched, in expected order, followed by the
// actual lines left over. An elision line in the pattern absorbs the
// leftover lines.
func matchUnordered(pl, al []string, elide func(int) bool, lineEq func(p, a string) (bool, []string)) textResult {
	var res textResult
	var b strings.Builder
	partner := align.Assign(len(pl), len(al), func(i, j int) bool {
		if elide(i) {
			return false
		}
		ok, _ := lineEq(withNewline(pl[i]), withNewline(al[j]))
		return ok
	})
	claimed := make([]bool, len(al))
	hasElide := false
	for i, p := range pl {
		switch j := partner[i]; {
		case elide(i):
			hasElide = true
			b.WriteString(withNewline(p))
		case j >= 0:
			claimed[j] = true
			_, applied := lineEq(withNewline(p), withNewline(al[j]))
			res.applied = append(res.applied, applied...)
			b.WriteString(withNewline(p))
		default:
			res.diffs = append(res.diffs, Difference{Kind: LineMissing, ExpectedLine: i + 1, Expected: p})
		}
	}
	for j, a := range al {
		if claimed[j] || hasElide {
			continue
		}
		b.WriteString(withNewline(a))
		res.diffs = append(res.diffs, Difference{Kind: LineUnexpected, ActualLine: j + 1, Actual: a})
	}
	res.normalized = b.String()
	if len(al) > 0 && !strings.HasSuffix(al[len(al)-1], "\n") {
		res.normalized = strings.TrimSuffix(res.normalized, "\n")
	}
	return res
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
