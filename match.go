package golden

import (
	"bytes"

	"github.com/dustin/go-humanize"
)

// Match compares actual content against an expected pattern. It has no
// side effects and ignores the action. Mismatches are reported in the
// Outcome; the error is non-nil only for malformed content or options.
func Match(expected, actual Data, opts ...Option) (Outcome, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return Outcome{}, err
	}
	return o.match(expected, actual)
}

func (o *options) match(expected, actual Data) (Outcome, error) {
	if expected.err != nil {
		return Outcome{}, expected.err
	}
	if expected.missing {
		act := actual
		if act.err == nil {
			act = act.Coerce(expected.format)
			if !expected.raw && !act.raw {
				act = Apply(act, append(o.filters(), RedactWith(o.redactions))...)
			}
		}
		return Outcome{
			Diffs:    []Difference{{Kind: SnapshotMissing, Expected: expected.source.String()}},
			Expected: expected,
			Actual:   act,
		}, nil
	}

	exp, err := expected.Is(expected.format)
	if err != nil {
		return Outcome{}, err
	}
	act := actual
	if act.err == nil {
		act = act.Coerce(exp.format)
	}
	literal := exp.raw || act.raw
	unordered := exp.unordered || act.unordered || o.unordered
	if !literal {
		exp = Apply(exp, o.filters()...)
		act = Apply(act, o.filters()...)
	}

	out := Outcome{Expected: exp, Actual: act}
	switch {
	case exp.format == FormatBinary || act.format == FormatBinary:
		out.Equal = act.err == nil && bytes.Equal(exp.b, act.b)
		if !out.Equal {
			out.Diffs = []Difference{{
				Kind:     BinaryChanged,
				Expected: humanize.Bytes(uint64(len(exp.b))),
				Actual:   humanize.Bytes(uint64(len(act.Bytes()))),
			}}
		}
	case !literal && act.err == nil && act.format == exp.format &&
		(exp.format == FormatJSON || exp.format == FormatJSONLines):
		res, err := matchStructured(exp, act, o.redactions, unordered)
		if err != nil {
			return Outcome{}, err
		}
		out.Expected = exp.withBytes(res.expected)
		out.Actual = act.withBytes(res.normalized)
		out.Diffs = res.diffs
		out.Applied = res.applied
		out.Equal = len(res.diffs) == 0
	default:
		res := matchText(string(exp.b), act.String(), o.redactions, literal, unordered)
		if act.err == nil {
			out.Actual = act.withBytes([]byte(res.normalized))
		}
		out.Diffs = res.diffs
		out.Applied = res.applied
		out.Equal = res.equal()
	}
	return out, nil
}
