package golden_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cboone/golden"
)

type tree map[string]string

func (tr tree) write(t *testing.T, root string) string {
	t.Helper()
	for name, body := range tr {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), body)
	}
	return root
}

func TestMatchDirEqual(t *testing.T) {
	dir := t.TempDir()
	exp := tree{
		"a.txt":          "a [..]\n",
		"sub/b.json":     `{"n": "..."}`,
		"sub/deep/c.txt": "c\n",
	}.write(t, filepath.Join(dir, "want"))
	act := tree{
		"a.txt":          "a 1\r\n",
		"sub/b.json":     `{"n": 5}`,
		"sub/deep/c.txt": "c",
		"extra.txt":      "only in actual\n",
	}.write(t, filepath.Join(dir, "got"))

	out, err := golden.MatchDir(exp, act, quiet()...)
	require.NoError(t, err)
	assert.True(t, out.Equal, "%v", out.Diffs)
	assert.Equal(t, 5, out.Checked)
}

func TestMatchDirDifferences(t *testing.T) {
	dir := t.TempDir()
	exp := tree{
		"same.txt":     "same\n",
		"changed.txt":  "old\n",
		"missing.txt":  "x\n",
		"gone/f.txt":   "x\n",
		"kind/f.txt":   "x\n",
		"notadir/x.md": "x\n",
	}.write(t, filepath.Join(dir, "want"))
	act := tree{
		"same.txt":           "same\n",
		"changed.txt":        "new\n",
		"kind":               "a file where a directory was\n",
		"notadir/x.md/inner": "dir where a file was\n",
	}.write(t, filepath.Join(dir, "got"))

	out, err := golden.MatchDir(exp, act, quiet()...)
	require.NoError(t, err)
	assert.False(t, out.Equal)

	got := map[string]golden.DirKind{}
	for _, d := range out.Diffs {
		got[d.Path] = d.Kind
	}
	assert.Equal(t, map[string]golden.DirKind{
		"changed.txt":  golden.ContentMismatch,
		"gone":         golden.EntryMissing,
		"kind":         golden.EntryTypeMismatch,
		"missing.txt":  golden.EntryMissing,
		"notadir/x.md": golden.EntryTypeMismatch,
	}, got)

	for _, d := range out.Diffs {
		if d.Kind == golden.ContentMismatch {
			require.NotNil(t, d.Outcome)
			assert.Equal(t, "line 1 (actual line 1): line changed: expected \"old\\n\", got \"new\\n\"", d.Outcome.Summary())
		}
		if d.Path == "kind" {
			assert.Equal(t, "kind: type mismatch: expected directory, got file", d.String())
		}
	}
}

func TestMatchDirSymlinks(t *testing.T) {
	dir := t.TempDir()
	exp := filepath.Join(dir, "want")
	act := filepath.Join(dir, "got")
	require.NoError(t, os.MkdirAll(exp, 0o755))
	require.NoError(t, os.MkdirAll(act, 0o755))

	require.NoError(t, os.Symlink("[..]/target", filepath.Join(exp, "wild")))
	require.NoError(t, os.Symlink("/opt/build-42/target", filepath.Join(act, "wild")))
	require.NoError(t, os.Symlink("same", filepath.Join(exp, "same")))
	require.NoError(t, os.Symlink("same", filepath.Join(act, "same")))
	require.NoError(t, os.Symlink("one", filepath.Join(exp, "moved")))
	require.NoError(t, os.Symlink("two", filepath.Join(act, "moved")))

	out, err := golden.MatchDir(exp, act, quiet()...)
	require.NoError(t, err)
	require.Len(t, out.Diffs, 1)
	assert.Equal(t, golden.DirDifference{Path: "moved", Kind: golden.LinkMismatch, Expected: "one", Actual: "two"}, out.Diffs[0])
}

func TestMatchDirInclude(t *testing.T) {
	dir := t.TempDir()
	exp := tree{
		"keep/a.json": `{"a": 1}`,
		"skip/b.log":  "b\n",
		"top.txt":     "top\n",
	}.write(t, filepath.Join(dir, "want"))
	act := tree{"keep/a.json": `{"a": 1}`}.write(t, filepath.Join(dir, "got"))

	out, err := golden.MatchDir(exp, act, quiet(golden.WithInclude("**/*.json"))...)
	require.NoError(t, err)
	assert.True(t, out.Equal, "%v", out.Diffs)

	_, err = golden.MatchDir(exp, act, quiet(golden.WithInclude("[bad"))...)
	var ue *golden.UsageError
	assert.True(t, errors.As(err, &ue))
}

func TestMatchDirMissingRoot(t *testing.T) {
	_, err := golden.MatchDir(filepath.Join(t.TempDir(), "nope"), t.TempDir(), quiet()...)
	assert.Error(t, err)
}

func TestVerifyDirOverwrite(t *testing.T) {
	dir := t.TempDir()
	exp := tree{
		"a.txt":   "keep [..]\nold\n",
		"b.txt":   "same\n",
		"gone.md": "x\n",
	}.write(t, filepath.Join(dir, "want"))
	act := tree{
		"a.txt": "keep 1\nnew\n",
		"b.txt": "same\n",
	}.write(t, filepath.Join(dir, "got"))

	out, passed, err := golden.VerifyDir(exp, act, withAction(golden.ActionOverwrite)...)
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Equal(t, []string{"a.txt"}, out.Written)
	assert.Equal(t, "keep [..]\nnew\n", readFile(t, filepath.Join(exp, "a.txt")))

	report := golden.ReportDir(out, quiet()...)
	assert.Contains(t, report, "golden: directory mismatch (2 of 3 entries)")
	assert.Contains(t, report, "  gone.md: missing\n")
	assert.Contains(t, report, "  a.txt: content differs\n")
	assert.Contains(t, report, "updated a.txt")
}

func TestVerifyDirActions(t *testing.T) {
	dir := t.TempDir()
	exp := tree{"a.txt": "a\n"}.write(t, filepath.Join(dir, "want"))
	act := tree{"a.txt": "b\n"}.write(t, filepath.Join(dir, "got"))

	_, passed, err := golden.VerifyDir(exp, act, withAction(golden.ActionVerify)...)
	require.NoError(t, err)
	assert.False(t, passed)

	out, passed, err := golden.VerifyDir(exp, act, withAction(golden.ActionIgnore)...)
	require.NoError(t, err)
	assert.True(t, passed)
	assert.False(t, out.Equal)

	out, passed, err = golden.VerifyDir(exp, act, withAction(golden.ActionSkip)...)
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Zero(t, out.Checked)

	assert.Equal(t, "a\n", readFile(t, filepath.Join(exp, "a.txt")))
}

func TestSubsetEq(t *testing.T) {
	dir := t.TempDir()
	exp := tree{"a.txt": "a\n"}.write(t, filepath.Join(dir, "want"))
	act := tree{"a.txt": "a\n", "b.txt": "b\n"}.write(t, filepath.Join(dir, "got"))

	out := golden.New(t, withAction(golden.ActionVerify)...).SubsetEq(exp, act)
	assert.True(t, out.Equal)

	rt := &recordingT{TB: t}
	golden.New(rt, withAction(golden.ActionVerify)...).SubsetEq(act, exp)
	require.True(t, rt.failed)
	assert.Contains(t, rt.msgs[0], "b.txt: missing")
}
