package golden

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cboone/golden/internal/inline"
)

// SourceKind says where snapshot content came from.
type SourceKind int

const (
	// SourceGenerated is content produced at run time, such as program output.
	SourceGenerated SourceKind = iota
	// SourceFile is content read from a snapshot file.
	SourceFile
	// SourceInline is a string literal passed to Inline in a test file.
	SourceInline
)

// Source identifies the origin of a Data value and, when the origin can be
// rewritten, carries its UpdateTarget.
type Source struct {
	kind   SourceKind
	path   string
	line   int
	target UpdateTarget
}

// Kind returns the kind of origin.
func (s Source) Kind() SourceKind { return s.kind }

// Path returns the snapshot file, or the test file holding an inline literal.
func (s Source) Path() string { return s.path }

// Line returns the line of an inline literal, or 0.
func (s Source) Line() int { return s.line }

// Target returns the update target, or nil when the source cannot be rewritten.
func (s Source) Target() UpdateTarget { return s.target }

func (s Source) String() string {
	switch s.kind {
	case SourceFile:
		return s.path
	case SourceInline:
		return fmt.Sprintf("%s:%d", s.path, s.line)
	case SourceGenerated:
		return ""
	default:
		panic(fmt.Sprintf("golden: unknown source kind %d", int(s.kind)))
	}
}

// An UpdateTarget is a place expected content can be written back to.
type UpdateTarget interface {
	WriteSnapshot(d Data) error
}

// FileTarget writes snapshots to a file, creating parent directories.
type FileTarget string

// WriteSnapshot implements UpdateTarget.
func (f FileTarget) WriteSnapshot(d Data) error {
	path := string(f)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("golden: write snapshot: %w", err)
	}
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		return fmt.Errorf("golden: write snapshot: %w", err)
	}
	return nil
}

// inlineTarget rewrites the string literal of an Inline call.
type inlineTarget struct {
	file string
	line int
}

func (it inlineTarget) WriteSnapshot(d Data) error {
	if d.format == FormatBinary {
		return &UsageError{Op: "overwrite", Msg: fmt.Sprintf("binary content cannot be written to inline snapshot at %s:%d", it.file, it.line)}
	}
	if err := inline.Patch(it.file, it.line, d.String()); err != nil {
		return &UsageError{Op: "overwrite", Msg: "cannot rewrite inline snapshot", Err: err}
	}
	return nil
}
