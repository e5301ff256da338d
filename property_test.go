package golden_test

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/cboone/golden"
)

func pick(alphabet ...string) gopter.Gen {
	return gen.IntRange(0, len(alphabet)-1).Map(func(i int) string { return alphabet[i] })
}

func doc(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestMatchProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	plainLine := pick("a", "b", "c", "x y", "", "path\\to")
	patternLine := pick("a", "b", "[..]", "...", "a [..]", "x y", "")

	properties.Property("matching is deterministic", prop.ForAll(
		func(exp, act []string) bool {
			first, err1 := golden.Match(golden.Text(doc(exp)), golden.Text(doc(act)), quiet()...)
			second, err2 := golden.Match(golden.Text(doc(exp)), golden.Text(doc(act)), quiet()...)
			return err1 == nil && err2 == nil &&
				first.Equal == second.Equal &&
				first.Summary() == second.Summary() &&
				first.Actual.String() == second.Actual.String()
		},
		gen.SliceOf(patternLine), gen.SliceOf(plainLine),
	))

	properties.Property("content matches itself", prop.ForAll(
		func(lines []string) bool {
			out, err := golden.Match(golden.Text(doc(lines)), golden.Text(doc(lines)), quiet()...)
			return err == nil && out.Equal
		},
		gen.SliceOf(patternLine),
	))

	properties.Property("line order is ignored when unordered", prop.ForAll(
		func(lines []string) bool {
			reversed := slices.Clone(lines)
			slices.Reverse(reversed)
			out, err := golden.Match(golden.Text(doc(lines)).Unordered(), golden.Text(doc(reversed)), quiet()...)
			return err == nil && out.Equal
		},
		gen.SliceOf(plainLine),
	))

	properties.Property("overwritten snapshots match their source", prop.ForAll(
		func(exp, act []string) bool {
			target := &memTarget{}
			actual := golden.Text(doc(act))
			res, err := golden.Verify(golden.Text(doc(exp)).WithTarget(target), actual, withAction(golden.ActionOverwrite)...)
			if err != nil {
				return false
			}
			if res.Passed {
				return len(target.written) == 0
			}
			if len(target.written) != 1 {
				return false
			}
			again, err := golden.Match(target.written[0], actual, quiet()...)
			return err == nil && again.Equal
		},
		gen.SliceOf(patternLine), gen.SliceOf(plainLine),
	))

	properties.Property("raw overwritten snapshots hold the actual bytes", prop.ForAll(
		func(exp, act []string) bool {
			target := &memTarget{}
			actual := golden.Text(doc(act))
			res, err := golden.Verify(golden.Text(doc(exp)).Raw().WithTarget(target), actual, withAction(golden.ActionOverwrite)...)
			if err != nil {
				return false
			}
			if res.Passed {
				return len(target.written) == 0
			}
			if len(target.written) != 1 || target.written[0].String() != actual.String() {
				return false
			}
			again, err := golden.Match(target.written[0].Raw(), actual, quiet()...)
			return err == nil && again.Equal
		},
		gen.SliceOf(patternLine), gen.SliceOf(plainLine),
	))

	properties.Property("binary content compares bytes exactly", prop.ForAll(
		func(a, b []byte) bool {
			out, err := golden.Match(golden.Binary(a), golden.Binary(b), quiet()...)
			return err == nil && out.Equal == bytes.Equal(a, b)
		},
		gen.SliceOf(gen.UInt8()), gen.SliceOf(gen.UInt8()),
	))

	properties.Property("JSON documents match themselves", prop.ForAll(
		func(m map[string]int) bool {
			out, err := golden.Match(golden.JSON(m), golden.JSON(m), quiet()...)
			return err == nil && out.Equal
		},
		gen.MapOf(gen.AlphaString(), gen.Int()),
	))

	properties.TestingRun(t)
}

func TestRedactionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("redacted text matches its source", prop.ForAll(
		func(prefix, value, suffix string) bool {
			r := golden.NewRedactions()
			if err := r.Insert("[VALUE]", value); err != nil {
				return false
			}
			line := prefix + value + suffix
			return r.MatchLine(r.Redact(line), line)
		},
		gen.AlphaString(), gen.AlphaString().SuchThat(func(s string) bool { return s != "" }), gen.AlphaString(),
	))

	properties.Property("registering a placeholder never breaks a match", prop.ForAll(
		func(exp, act []string, value string, unordered bool) bool {
			e, a := golden.Text(doc(exp)), golden.Text(doc(act))
			if unordered {
				e = e.Unordered()
			}
			before, err := golden.Match(e, a, quiet()...)
			if err != nil || !before.Equal {
				return err == nil
			}
			after, err := golden.Match(e, a, quiet(golden.WithRedaction("[ID]", value))...)
			return err == nil && after.Equal
		},
		gen.SliceOf(pick("[ID]", "id=[ID] at [..]", "[..] [ID]", "a", "...", "[..]")),
		gen.SliceOf(pick("[ID]", "id=[ID] at home", "x [ID]", "a", "abc", "id=abc at home")),
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.Bool(),
	))

	properties.Property("wildcard spans any middle", prop.ForAll(
		func(head, middle, tail string) bool {
			r := golden.NewRedactions()
			return r.MatchLine(head+golden.AnyText+tail, head+middle+tail)
		},
		gen.AlphaString(), gen.AnyString(), gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestFilterProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	piece := pick("a", "\r", "\n", "\r\n", `\`, "/", " ")

	properties.Property("filters are idempotent", prop.ForAll(
		func(parts []string) bool {
			in := golden.Text(strings.Join(parts, ""))
			for _, f := range []golden.Filter{golden.Newlines, golden.Paths} {
				once := golden.Apply(in, f)
				if golden.Apply(once, f).String() != once.String() {
					return false
				}
			}
			return true
		},
		gen.SliceOf(piece),
	))

	properties.TestingRun(t)
}
