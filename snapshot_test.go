package golden_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/cboone/golden"
)

func TestSnapshotPath(t *testing.T) {
	got := filepath.ToSlash(golden.SnapshotPath(t, "render output", golden.FormatJSON))
	if !strings.HasPrefix(got, "testdata/TestSnapshotPath-") {
		t.Errorf("SnapshotPath = %q, want testdata/TestSnapshotPath-<hash>/...", got)
	}
	if !strings.HasSuffix(got, "/render_output.json") {
		t.Errorf("SnapshotPath = %q, want suffix /render_output.json", got)
	}
	if again := filepath.ToSlash(golden.SnapshotPath(t, "render output", golden.FormatJSON)); again != got {
		t.Errorf("SnapshotPath is not stable: %q then %q", got, again)
	}
}

func TestSnapshotPathSubtests(t *testing.T) {
	var dirs []string
	for _, name := range []string{"a:b", "a;b"} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Dir(golden.SnapshotPath(t, "x", golden.FormatText))
			if !strings.Contains(filepath.Base(dir), "TestSnapshotPathSubtests_a_b-") {
				t.Errorf("dir = %q", dir)
			}
			dirs = append(dirs, dir)
		})
	}
	if len(dirs) == 2 && dirs[0] == dirs[1] {
		t.Errorf("subtests %q share snapshot directory %q", []string{"a:b", "a;b"}, dirs[0])
	}
}

func TestSnapshotPathLongNames(t *testing.T) {
	name := strings.Repeat("x", 200)
	base := filepath.Base(golden.SnapshotPath(t, name, golden.FormatText))
	if want := strings.Repeat("x", 60) + ".txt"; base != want {
		t.Errorf("base = %q, want %q", base, want)
	}
}

func TestSnapshotMissing(t *testing.T) {
	d := golden.Snapshot(t, "never-written", golden.FormatText)
	if !d.Missing() {
		t.Errorf("Snapshot(never-written).Missing() = false")
	}
	if d.Source().Target() == nil {
		t.Errorf("missing snapshot has no update target")
	}
}
