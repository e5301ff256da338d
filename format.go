package golden

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is the shape of snapshot content.
type Format int

const (
	// FormatText is UTF-8 text compared line by line.
	FormatText Format = iota
	// FormatBinary is opaque bytes compared byte for byte.
	FormatBinary
	// FormatJSON is a single JSON document compared structurally.
	FormatJSON
	// FormatJSONLines is a sequence of JSON documents, one per line.
	FormatJSONLines
	// FormatTermStyled is terminal output that keeps its escape sequences.
	FormatTermStyled
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	case FormatJSON:
		return "json"
	case FormatJSONLines:
		return "jsonl"
	case FormatTermStyled:
		return "term"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file extension used for snapshots of this format.
func (f Format) Ext() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatBinary:
		return ".bin"
	case FormatJSON:
		return ".json"
	case FormatJSONLines:
		return ".jsonl"
	case FormatTermStyled:
		return ".term"
	default:
		panic(fmt.Sprintf("golden: unknown format %d", int(f)))
	}
}

// isText reports whether filters and wildcard matching apply line by line.
func (f Format) isText() bool {
	switch f {
	case FormatText, FormatTermStyled:
		return true
	case FormatBinary, FormatJSON, FormatJSONLines:
		return false
	default:
		panic(fmt.Sprintf("golden: unknown format %d", int(f)))
	}
}

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "text", "txt", "":
		return FormatText, nil
	case "binary", "bin":
		return FormatBinary, nil
	case "json", "jsonc":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONLines, nil
	case "term", "ansi":
		return FormatTermStyled, nil
	default:
		return FormatText, &UsageError{Op: "format", Msg: fmt.Sprintf("unknown format %q", s)}
	}
}

// formatFromPath infers a format from a file extension. ok is false when the
// extension says nothing and the content must be sniffed.
func formatFromPath(path string) (f Format, ok bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON, true
	case ".jsonl", ".ndjson":
		return FormatJSONLines, true
	case ".term", ".ansi":
		return FormatTermStyled, true
	case ".bin":
		return FormatBinary, true
	default:
		return FormatText, false
	}
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
)

// looksBinary reports whether b cannot be treated as text.
func looksBinary(b []byte) bool {
	if bytes.HasPrefix(b, bomUTF32BE) || bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE) {
		return true
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return true
	}
	return !utf8.Valid(b)
}
