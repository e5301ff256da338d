package golden

import (
	"fmt"
	"strings"
	"testing"
)

// Result records what an assertion did.
type Result struct {
	Action  Action
	Outcome Outcome
	// Passed is false only when the assertion should fail the test.
	Passed bool
	// Skipped reports that no comparison ran.
	Skipped bool
	// Wrote reports that the expected snapshot was rewritten.
	Wrote bool
	Note  string
}

// Verify compares actual against expected and carries out the resolved
// action. Snapshot writes happen through the expected content's
// UpdateTarget. The error is non-nil for malformed content, misuse, or a
// failed write; a plain mismatch is reported through Result.Passed.
func Verify(expected, actual Data, opts ...Option) (Result, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return Result{}, err
	}
	return o.verify(expected, actual)
}

func (o *options) verify(expected, actual Data) (Result, error) {
	action, _, err := o.resolveAction()
	if err != nil {
		return Result{}, err
	}
	res := Result{Action: action}
	if action == ActionSkip {
		res.Passed, res.Skipped = true, true
		return res, nil
	}

	target := expected.source.target
	if action == ActionOverwrite && target == nil {
		return res, &UsageError{Op: "overwrite", Msg: "expected content has no update target; read it with Read, write it with Inline, or attach one with WithTarget"}
	}

	out, err := o.match(expected, actual)
	if err != nil {
		return res, err
	}
	res.Outcome = out
	label := o.label(expected.source)

	switch action {
	case ActionVerify:
		res.Passed = out.Equal
	case ActionIgnore:
		res.Passed = true
		if !out.Equal {
			res.Note = fmt.Sprintf("ignored %d difference(s)", len(out.Diffs))
			o.logger.Warn("snapshot mismatch ignored", "source", label, "differences", len(out.Diffs))
		}
	case ActionCreate:
		if !expected.missing {
			res.Passed = out.Equal
			break
		}
		if target == nil {
			return res, &UsageError{Op: "create", Msg: "missing snapshot has no update target"}
		}
		if err := o.write(target, out.Actual, label); err != nil {
			return res, err
		}
		res.Passed, res.Wrote = true, true
		res.Note = "created snapshot " + label
	case ActionOverwrite:
		if out.Equal {
			res.Passed = true
			break
		}
		if err := o.write(target, o.snapshotContent(out), label); err != nil {
			return res, err
		}
		res.Wrote = true
		res.Note = "updated snapshot " + label
	default:
		return res, &UsageError{Op: "verify", Msg: fmt.Sprintf("unsupported action %s", action)}
	}
	return res, nil
}

// snapshotContent is what Overwrite writes for out: the normalized actual
// with known values redacted. Literal comparisons write the actual bytes.
func (o *options) snapshotContent(out Outcome) Data {
	if out.Expected.raw || out.Actual.raw {
		return out.Actual
	}
	return Apply(out.Actual, RedactWith(o.redactions))
}

func (o *options) write(target UpdateTarget, d Data, label string) error {
	if d.err != nil {
		return &UsageError{Op: "overwrite", Msg: "actual content cannot be written", Err: d.err}
	}
	if err := target.WriteSnapshot(d); err != nil {
		return err
	}
	o.logger.Info("snapshot written", "target", label, "format", d.format.String(), "bytes", len(d.b))
	return nil
}

// report renders a failed assertion: a headline, the diff, the list of
// differences and a hint on how to accept the new content.
func (o *options) report(expected Data, res Result) string {
	var b strings.Builder
	out := res.Outcome
	label := o.label(expected.source)
	switch {
	case expected.missing:
		fmt.Fprintf(&b, "golden: snapshot %s does not exist\n", label)
	case res.Wrote:
		fmt.Fprintf(&b, "golden: snapshot mismatch (%d difference(s)); %s\n", len(out.Diffs), res.Note)
	default:
		fmt.Fprintf(&b, "golden: snapshot mismatch (%d difference(s))\n", len(out.Diffs))
	}
	b.WriteString(o.render(out))
	if !expected.missing && len(out.Diffs) > 0 {
		b.WriteString("\ndifferences:\n")
		for _, d := range out.Diffs {
			b.WriteString("  " + d.String() + "\n")
		}
	}
	if res.Wrote || expected.source.target == nil {
		return b.String()
	}
	env := o.actionEnv
	if o.config != nil && o.config.Env != "" {
		env = o.config.Env
	}
	if expected.missing {
		fmt.Fprintf(&b, "\nRun with %s=create to create it.\n", env)
	} else {
		fmt.Fprintf(&b, "\nRun with %s=overwrite to update the snapshot.\n", env)
	}
	return b.String()
}

// Report renders the failure report for a Result returned by Verify.
func Report(expected Data, res Result, opts ...Option) string {
	o, err := buildOptions(opts)
	if err != nil {
		return err.Error() + "\n"
	}
	return o.report(expected, res)
}

// Assert binds assertions to a test.
type Assert struct {
	t    testing.TB
	opts []Option
}

// New returns an Assert for t. opts apply to every assertion made with it.
func New(t testing.TB, opts ...Option) *Assert {
	return &Assert{t: t, opts: opts}
}

// Eq fails the test when actual does not match expected under the
// resolved action. Errors fail the test immediately.
func (a *Assert) Eq(expected, actual Data, opts ...Option) Result {
	a.t.Helper()
	o, err := buildOptions(append(append([]Option{}, a.opts...), opts...))
	if err != nil {
		a.t.Fatalf("%v", err)
	}
	res, err := o.verify(expected, actual)
	if err != nil {
		a.t.Fatalf("%v", err)
	}
	if res.Note != "" {
		a.t.Logf("golden: %s", res.Note)
	}
	if !res.Passed {
		a.t.Fatalf("%s", o.report(expected, res))
	}
	return res
}

// Snapshot compares actual against the named snapshot file of the test.
// See SnapshotPath.
func (a *Assert) Snapshot(name string, actual Data, opts ...Option) Result {
	a.t.Helper()
	return a.Eq(Snapshot(a.t, name, actual.format), actual, opts...)
}

// SubsetEq fails the test unless every entry under expectedDir has a
// matching entry under actualDir. Entries only present in actualDir are
// ignored.
func (a *Assert) SubsetEq(expectedDir, actualDir string, opts ...Option) DirOutcome {
	a.t.Helper()
	o, err := buildOptions(append(append([]Option{}, a.opts...), opts...))
	if err != nil {
		a.t.Fatalf("%v", err)
	}
	out, passed, err := o.verifyDir(expectedDir, actualDir)
	if err != nil {
		a.t.Fatalf("%v", err)
	}
	if !passed {
		a.t.Fatalf("%s", o.reportDir(out))
	}
	return out
}

// Eq is shorthand for New(t).Eq(expected, actual, opts...).
func Eq(t testing.TB, expected, actual Data, opts ...Option) Result {
	t.Helper()
	return New(t).Eq(expected, actual, opts...)
}
