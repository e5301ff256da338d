package golden_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cboone/golden"
)

// quiet keeps assertion logs and colors out of test output.
func quiet(opts ...golden.Option) []golden.Option {
	return append([]golden.Option{
		golden.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		golden.WithPalette(golden.PlainPalette()),
	}, opts...)
}

func withAction(a golden.Action, opts ...golden.Option) []golden.Option {
	return quiet(append([]golden.Option{
		golden.WithConfig(golden.Config{Action: a, Env: golden.DefaultActionEnv}),
	}, opts...)...)
}

// memTarget records snapshot writes in memory.
type memTarget struct {
	written []golden.Data
	err     error
}

func (m *memTarget) WriteSnapshot(d golden.Data) error {
	if m.err != nil {
		return m.err
	}
	m.written = append(m.written, d)
	return nil
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
