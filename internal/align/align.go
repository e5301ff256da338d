// Package align pairs the items of a pattern sequence with the items of an
// actual sequence. Pattern items may be elisions that absorb zero or more
// actual items. It is shared by the line matcher and the JSON array matcher.
package align

// Op identifies what a Step does.
type Op int

const (
	// Match pairs a pattern item with an actual item it matches.
	Match Op = iota
	// Substitute pairs a pattern item with an actual item it does not match.
	Substitute
	// Extra is an actual item with no pattern counterpart.
	Extra
	// Missing is a pattern item with no actual counterpart.
	Missing
	// Elide is an elision pattern item absorbing N actual items starting at A.
	Elide
)

func (o Op) String() string {
	switch o {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Extra:
		return "extra"
	case Missing:
		return "missing"
	case Elide:
		return "elide"
	default:
		return "unknown"
	}
}

// Step is one element of an alignment. P indexes the pattern and A the
// actual sequence; the index that does not apply to Op is -1.
type Step struct {
	Op Op
	P  int
	A  int
	N  int
}

// Result is a complete alignment.
type Result struct {
	Steps []Step
	// Cost counts the Substitute, Extra and Missing steps.
	Cost int
}

// Equal reports whether every pattern item matched.
func (r Result) Equal() bool {
	return r.Cost == 0
}

// MaxCells bounds the dynamic programming table. Larger inputs fall back to
// a linear forward scan.
const MaxCells = 4 << 20

// Sequences aligns a pattern of n items with an actual sequence of m items.
// elide reports whether pattern item i is an elision; match reports whether
// pattern item i matches actual item j. match is called at most once per
// pair.
//
// The alignment minimizes Cost. Ties prefer, in order: a match, a
// substitution, an extra actual item, a missing pattern item. An elision
// absorbs the fewest actual items that still reach the minimal cost, so of
// two adjacent elisions the first absorbs nothing.
func Sequences(n, m int, elide func(i int) bool, match func(i, j int) bool) Result {
	if (n+1)*(m+1) > MaxCells {
		return scan(n, m, elide, match)
	}

	w := m + 1
	cost := make([]int32, (n+1)*w)
	// matched caches match(i, j) for non-elision rows: 0 unknown, 1 yes, 2 no.
	matched := make([]uint8, n*w)
	isMatch := func(i, j int) bool {
		k := i*w + j
		if matched[k] == 0 {
			if match(i, j) {
				matched[k] = 1
			} else {
				matched[k] = 2
			}
		}
		return matched[k] == 1
	}

	for j := 0; j <= m; j++ {
		cost[n*w+j] = int32(m - j)
	}
	for i := n - 1; i >= 0; i-- {
		row := cost[i*w : (i+1)*w]
		next := cost[(i+1)*w : (i+2)*w]
		if elide(i) {
			row[m] = next[m]
			for j := m - 1; j >= 0; j-- {
				row[j] = min(next[j], row[j+1])
			}
			continue
		}
		row[m] = next[m] + 1
		for j := m - 1; j >= 0; j-- {
			best := next[j+1] + 1
			if isMatch(i, j) {
				best = next[j+1]
			}
			best = min(best, row[j+1]+1, next[j]+1)
			row[j] = best
		}
	}

	res := Result{Cost: int(cost[0])}
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i == n:
			res.Steps = append(res.Steps, Step{Op: Extra, P: -1, A: j})
			j++
		case elide(i):
			start := j
			for j < m && cost[(i+1)*w+j] != cost[i*w+j] {
				j++
			}
			res.Steps = append(res.Steps, Step{Op: Elide, P: i, A: start, N: j - start})
			i++
		case j == m:
			res.Steps = append(res.Steps, Step{Op: Missing, P: i, A: -1})
			i++
		default:
			here := cost[i*w+j]
			switch {
			case isMatch(i, j) && cost[(i+1)*w+j+1] == here:
				res.Steps = append(res.Steps, Step{Op: Match, P: i, A: j})
				i++
				j++
			case cost[(i+1)*w+j+1]+1 == here && !isMatch(i, j):
				res.Steps = append(res.Steps, Step{Op: Substitute, P: i, A: j})
				i++
				j++
			case cost[i*w+j+1]+1 == here:
				res.Steps = append(res.Steps, Step{Op: Extra, P: -1, A: j})
				j++
			default:
				res.Steps = append(res.Steps, Step{Op: Missing, P: i, A: -1})
				i++
			}
		}
	}
	return res
}

// scan is the linear fallback: elisions absorb actual items up to the next
// occurrence of the following pattern item, and everything else pairs up
// positionally.
func scan(n, m int, elide func(i int) bool, match func(i, j int) bool) Result {
	var res Result
	i, j := 0, 0
	for i < n {
		if elide(i) {
			start := j
			next := i + 1
			for next < n && elide(next) {
				next++
			}
			if next == n {
				j = m
			} else {
				k := j
				for k < m && !match(next, k) {
					k++
				}
				if k < m {
					j = k
				}
			}
			for p := i; p < next-1; p++ {
				res.Steps = append(res.Steps, Step{Op: Elide, P: p, A: start, N: 0})
			}
			res.Steps = append(res.Steps, Step{Op: Elide, P: next - 1, A: start, N: j - start})
			i = next
			continue
		}
		if j == m {
			res.Steps = append(res.Steps, Step{Op: Missing, P: i, A: -1})
			res.Cost++
			i++
			continue
		}
		if match(i, j) {
			res.Steps = append(res.Steps, Step{Op: Match, P: i, A: j})
		} else {
			res.Steps = append(res.Steps, Step{Op: Substitute, P: i, A: j})
			res.Cost++
		}
		i++
		j++
	}
	for ; j < m; j++ {
		res.Steps = append(res.Steps, Step{Op: Extra, P: -1, A: j})
		res.Cost++
	}
	return res
}

// Assign pairs pattern items with actual items regardless of order, so
// that as many pattern items as possible find a partner they match. ok
// reports whether pattern item i accepts actual item j and is called at
// most once per pair. The result holds the partner of each pattern item,
// or -1. Earlier items keep their first choice unless a later item has no
// other partner.
func Assign(n, m int, ok func(i, j int) bool) []int {
	known := make([]uint8, n*m)
	accepts := func(i, j int) bool {
		k := i*m + j
		if known[k] == 0 {
			if ok(i, j) {
				known[k] = 1
			} else {
				known[k] = 2
			}
		}
		return known[k] == 1
	}

	partner := make([]int, n)
	owner := make([]int, m)
	for i := range partner {
		partner[i] = -1
	}
	for j := range owner {
		owner[j] = -1
	}
	seen := make([]bool, m)
	var augment func(i int) bool
	augment = func(i int) bool {
		// Free partners first, then take one over from an item that can
		// move elsewhere.
		for j := 0; j < m; j++ {
			if owner[j] < 0 && !seen[j] && accepts(i, j) {
				seen[j] = true
				owner[j], partner[i] = i, j
				return true
			}
		}
		for j := 0; j < m; j++ {
			if seen[j] || !accepts(i, j) {
				continue
			}
			seen[j] = true
			if augment(owner[j]) {
				owner[j], partner[i] = i, j
				return true
			}
		}
		return false
	}
	for i := 0; i < n; i++ {
		clear(seen)
		augment(i)
	}
	return partner
}
