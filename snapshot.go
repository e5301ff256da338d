package golden

import (
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

// SnapshotPath returns the file holding the named snapshot of the current
// test: testdata/<sanitized-test-name>-<hash>/<sanitized-name><ext>. The hash
// keeps tests whose names sanitize to the same string apart.
func SnapshotPath(t testing.TB, name string, f Format) string {
	t.Helper()
	return filepath.Join(snapshotDir(t.Name()), sanitizeName(name)+f.Ext())
}

// Snapshot reads the named snapshot of the current test. A snapshot that
// does not exist yet yields missing Data.
func Snapshot(t testing.TB, name string, f Format) Data {
	t.Helper()
	return ReadAs(SnapshotPath(t, name, f), f)
}

func snapshotDir(testName string) string {
	h := blake3.Sum256([]byte(testName))
	return filepath.Join("testdata", sanitizeName(testName)+"-"+hex.EncodeToString(h[:4]))
}

// sanitizeName maps name to a portable file name component.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
