package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DirKind classifies a DirDifference.
type DirKind int

const (
	// EntryMissing is an expected entry absent from the actual tree.
	EntryMissing DirKind = iota
	// EntryTypeMismatch is an entry that is a file on one side and a
	// directory or link on the other.
	EntryTypeMismatch
	// LinkMismatch is a symbolic link pointing somewhere else.
	LinkMismatch
	// ContentMismatch is a file whose content does not match.
	ContentMismatch
)

func (k DirKind) String() string {
	switch k {
	case EntryMissing:
		return "missing"
	case EntryTypeMismatch:
		return "type mismatch"
	case LinkMismatch:
		return "link target differs"
	case ContentMismatch:
		return "content differs"
	default:
		return fmt.Sprintf("DirKind(%d)", int(k))
	}
}

// DirDifference is one mismatch in a directory comparison. Path is
// slash-separated and relative to the compared roots.
type DirDifference struct {
	Path     string
	Kind     DirKind
	Expected string
	Actual   string
	// Outcome holds the file comparison for ContentMismatch.
	Outcome *Outcome
}

func (d DirDifference) String() string {
	switch d.Kind {
	case EntryTypeMismatch, LinkMismatch:
		return fmt.Sprintf("%s: %s: expected %s, got %s", d.Path, d.Kind, d.Expected, d.Actual)
	default:
		return fmt.Sprintf("%s: %s", d.Path, d.Kind)
	}
}

// DirOutcome is the result of comparing two directory trees.
type DirOutcome struct {
	Equal   bool
	Diffs   []DirDifference
	Checked int
	// Written lists the expected files rewritten by Overwrite.
	Written []string
}

// MatchDir checks that every entry under expectedRoot has a matching entry
// under actualRoot. Files are compared with the same rules as Match, using
// the format implied by each expected file's extension. Entries only found
// under actualRoot are ignored.
func MatchDir(expectedRoot, actualRoot string, opts ...Option) (DirOutcome, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return DirOutcome{}, err
	}
	return o.matchDir(expectedRoot, actualRoot)
}

func (o *options) included(rel string) (bool, error) {
	if len(o.include) == 0 {
		return true, nil
	}
	for _, g := range o.include {
		ok, err := doublestar.Match(g, rel)
		if err != nil {
			return false, &UsageError{Op: "include", Msg: fmt.Sprintf("bad glob %q", g), Err: err}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (o *options) matchDir(expectedRoot, actualRoot string) (DirOutcome, error) {
	var out DirOutcome
	for _, g := range o.include {
		if !doublestar.ValidatePattern(g) {
			return out, &UsageError{Op: "include", Msg: fmt.Sprintf("bad glob %q", g)}
		}
	}
	err := filepath.WalkDir(expectedRoot, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(expectedRoot, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		// With globs, directories only matter through the files they hold.
		if de.IsDir() && len(o.include) > 0 {
			return nil
		}
		if !de.IsDir() {
			ok, err := o.included(slashRel)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		out.Checked++

		actPath := filepath.Join(actualRoot, rel)
		ai, err := os.Lstat(actPath)
		if errors.Is(err, fs.ErrNotExist) {
			out.Diffs = append(out.Diffs, DirDifference{Path: slashRel, Kind: EntryMissing})
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err != nil {
			return err
		}

		et, at := entryType(de.Type()), entryType(ai.Mode().Type())
		if et != at {
			out.Diffs = append(out.Diffs, DirDifference{Path: slashRel, Kind: EntryTypeMismatch, Expected: et, Actual: at})
			if de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		switch et {
		case "directory":
			return nil
		case "symlink":
			return o.matchLink(&out, slashRel, path, actPath)
		default:
			exp := Read(path)
			act := ReadAs(actPath, exp.format)
			if act.err != nil {
				return act.err
			}
			m, err := o.match(exp, act)
			if err != nil {
				return err
			}
			if !m.Equal {
				out.Diffs = append(out.Diffs, DirDifference{Path: slashRel, Kind: ContentMismatch, Outcome: &m})
			}
			return nil
		}
	})
	if err != nil {
		var ue *UsageError
		var fe *FormatError
		if errors.As(err, &ue) || errors.As(err, &fe) {
			return out, err
		}
		return out, fmt.Errorf("golden: compare directories: %w", err)
	}
	out.Equal = len(out.Diffs) == 0
	return out, nil
}

func (o *options) matchLink(out *DirOutcome, rel, expPath, actPath string) error {
	want, err := os.Readlink(expPath)
	if err != nil {
		return err
	}
	got, err := os.Readlink(actPath)
	if err != nil {
		return err
	}
	if ok, _ := o.redactions.matchLine(filepath.ToSlash(want), filepath.ToSlash(got)); !ok {
		out.Diffs = append(out.Diffs, DirDifference{Path: rel, Kind: LinkMismatch, Expected: want, Actual: got})
	}
	return nil
}

func entryType(m fs.FileMode) string {
	switch {
	case m&fs.ModeSymlink != 0:
		return "symlink"
	case m.IsDir():
		return "directory"
	case m.IsRegular():
		return "file"
	default:
		return "special file"
	}
}

// VerifyDir compares two trees like MatchDir under the resolved action.
// passed is false when the comparison should count as a failure.
func VerifyDir(expectedRoot, actualRoot string, opts ...Option) (out DirOutcome, passed bool, err error) {
	o, err := buildOptions(opts)
	if err != nil {
		return DirOutcome{}, false, err
	}
	return o.verifyDir(expectedRoot, actualRoot)
}

// ReportDir renders a directory comparison: one line per difference
// followed by the diff of every file whose content differs.
func ReportDir(out DirOutcome, opts ...Option) string {
	o, err := buildOptions(opts)
	if err != nil {
		return err.Error() + "\n"
	}
	return o.reportDir(out)
}

// verifyDir runs matchDir under the resolved action. Overwrite rewrites
// expected files whose content differs; Create has nothing to create for a
// tree that exists and behaves like Verify.
func (o *options) verifyDir(expectedRoot, actualRoot string) (DirOutcome, bool, error) {
	action, _, err := o.resolveAction()
	if err != nil {
		return DirOutcome{}, false, err
	}
	if action == ActionSkip {
		return DirOutcome{Equal: true}, true, nil
	}
	out, err := o.matchDir(expectedRoot, actualRoot)
	if err != nil {
		return out, false, err
	}
	switch action {
	case ActionIgnore:
		if !out.Equal {
			o.logger.Warn("directory mismatch ignored", "expected", expectedRoot, "differences", len(out.Diffs))
		}
		return out, true, nil
	case ActionOverwrite:
		for _, d := range out.Diffs {
			if d.Kind != ContentMismatch {
				continue
			}
			path := filepath.Join(expectedRoot, filepath.FromSlash(d.Path))
			if err := o.write(FileTarget(path), o.snapshotContent(*d.Outcome), path); err != nil {
				return out, false, err
			}
			out.Written = append(out.Written, d.Path)
		}
	}
	return out, out.Equal, nil
}

func (o *options) reportDir(out DirOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "golden: directory mismatch (%d of %d entries)\n", len(out.Diffs), out.Checked)
	for _, d := range out.Diffs {
		b.WriteString("  " + d.String() + "\n")
	}
	for _, d := range out.Diffs {
		if d.Outcome == nil {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(o.render(*d.Outcome))
		for _, fd := range d.Outcome.Diffs {
			b.WriteString("  " + fd.String() + "\n")
		}
	}
	if len(out.Written) > 0 {
		fmt.Fprintf(&b, "\nupdated %s\n", strings.Join(out.Written, ", "))
	}
	return b.String()
}
