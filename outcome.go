package golden

import (
	"fmt"
	"strings"
)

// Kind classifies a Difference.
type Kind int

const (
	// LineChanged is an expected line paired with an actual line it does not match.
	LineChanged Kind = iota
	// LineMissing is an expected line with no actual counterpart.
	LineMissing
	// LineUnexpected is an actual line with no expected counterpart.
	LineUnexpected
	// ValueChanged is a JSON scalar that differs.
	ValueChanged
	// TypeMismatch is a JSON value of a different type than expected.
	TypeMismatch
	// KeyMissing is an expected object key absent from the actual object.
	KeyMissing
	// KeyUnexpected is an actual object key the expected object does not list.
	KeyUnexpected
	// ElementMissing is an expected array element with no actual counterpart.
	ElementMissing
	// ElementUnexpected is an actual array element with no expected counterpart.
	ElementUnexpected
	// BinaryChanged is binary content that differs.
	BinaryChanged
	// SnapshotMissing is an expected snapshot that does not exist yet.
	SnapshotMissing
)

func (k Kind) String() string {
	switch k {
	case LineChanged:
		return "line changed"
	case LineMissing:
		return "line missing"
	case LineUnexpected:
		return "unexpected line"
	case ValueChanged:
		return "value changed"
	case TypeMismatch:
		return "type mismatch"
	case KeyMissing:
		return "key missing"
	case KeyUnexpected:
		return "unexpected key"
	case ElementMissing:
		return "element missing"
	case ElementUnexpected:
		return "unexpected element"
	case BinaryChanged:
		return "binary content changed"
	case SnapshotMissing:
		return "snapshot missing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Difference is one mismatch between expected and actual content. Text
// differences carry 1-based line numbers (0 when a side has no line); JSON
// differences carry a JSON Pointer path.
type Difference struct {
	Kind         Kind
	Path         string
	ExpectedLine int
	ActualLine   int
	Expected     string
	Actual       string
}

func (d Difference) String() string {
	var where string
	switch {
	case d.Path != "":
		where = d.Path
	case d.ExpectedLine > 0 && d.ActualLine > 0:
		where = fmt.Sprintf("line %d (actual line %d)", d.ExpectedLine, d.ActualLine)
	case d.ExpectedLine > 0:
		where = fmt.Sprintf("line %d", d.ExpectedLine)
	case d.ActualLine > 0:
		where = fmt.Sprintf("actual line %d", d.ActualLine)
	default:
		where = "/"
	}
	msg := where + ": " + d.Kind.String()
	switch d.Kind {
	case LineChanged:
		msg += fmt.Sprintf(": expected %q, got %q", d.Expected, d.Actual)
	case ValueChanged, TypeMismatch:
		msg += fmt.Sprintf(": expected %s, got %s", d.Expected, d.Actual)
	case LineMissing:
		msg += fmt.Sprintf(": %q", d.Expected)
	case LineUnexpected:
		msg += fmt.Sprintf(": %q", d.Actual)
	case KeyMissing, ElementMissing:
		msg += ": " + d.Expected
	case KeyUnexpected, ElementUnexpected:
		msg += ": " + d.Actual
	}
	return msg
}

// Outcome is the result of comparing expected and actual content.
//
// Expected is the filtered expected content. Actual is the actual content
// normalized toward the expected pattern: wherever a wildcard or
// placeholder matched, it holds the pattern text, so writing it back as the
// new snapshot keeps the wildcards.
type Outcome struct {
	Equal    bool
	Diffs    []Difference
	Applied  []string
	Expected Data
	Actual   Data
}

// Summary lists the differences, one per line.
func (o Outcome) Summary() string {
	if o.Equal {
		return "equal"
	}
	lines := make([]string, len(o.Diffs))
	for i, d := range o.Diffs {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
