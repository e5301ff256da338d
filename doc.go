// Package golden verifies program output against expected snapshots.
//
// Expected content is a pattern: it may hold wildcards and placeholders
// that stand for volatile parts of the actual output. Both sides pass
// through the same filters before they are compared, a mismatch is
// reported as a diff, and the snapshot can be rewritten from the actual
// output instead of being edited by hand.
//
// # Quick Start
//
//	func TestVersion(t *testing.T) {
//		out := runApp(t, "--version")
//		golden.Eq(t, golden.Inline(`
//			myapp [..]
//			built at [ROOT]/cmd/myapp
//			`), golden.Text(out))
//	}
//
// Run the test with GOLDEN_ACTION=overwrite to replace the literal with
// whatever the program printed.
//
// # Content
//
// [Data] is an immutable value: bytes, a [Format] and a [Source]. Formats
// are text, binary, JSON, JSON lines and terminal output with escape
// sequences. Content read from a file takes its format from the extension
// (.txt, .bin, .json, .jsonl, .term) and otherwise from sniffing the bytes.
// [Data.Is] converts between formats and fails with a [FormatError] when
// the bytes do not fit.
//
// # Filters
//
// Before comparison both sides go through [Newlines] and [Paths]. Filters
// never touch binary content, and [Data.Raw] turns them off for one value
// along with every wildcard.
//
// # Wildcards and Redactions
//
// In text patterns:
//
//   - "[..]" matches any run of characters within a line
//   - a line holding only "..." matches any number of lines
//   - a placeholder such as "[ROOT]" matches any value registered for it
//
// Matching is non-greedy: a "..." line absorbs as few lines as it can.
// Placeholders come from [Redactions]: [ROOT], [CWD] and [EXE] are built
// in, and [WithRedaction], [WithPathRedaction], [WithRegexpRedaction] and
// [WithUUIDRedaction] add more. New snapshots are written with every known
// value already replaced by its placeholder.
//
// JSON content is compared structurally. A string value may use the text
// wildcards, the value "{...}" matches any value, a "..." element in an
// array matches any number of elements, and a "..." key lets an object
// carry keys the pattern does not list. [WithUnordered] compares arrays,
// and lines of text, as multisets.
//
// # Actions
//
// Each assertion resolves an [Action]: the call's [WithAction] if given,
// then the GOLDEN_ACTION environment variable, then [ActionVerify].
// GOLDEN_ACTION is read once per process.
//
//   - verify: fail on mismatch
//   - overwrite: rewrite the snapshot on mismatch, and still fail
//   - create: write snapshots that do not exist, verify the rest
//   - ignore: compare and log, never fail
//   - skip: do nothing
//
// A snapshot is rewritten through its [UpdateTarget]: a file for content
// from [Read], the string literal itself for [Inline]. Asking to overwrite
// content with no target is a [UsageError].
//
// # Diffs
//
// Reports show a line diff of the filtered expected content against the
// actual content, with changed characters highlighted when the output is a
// terminal. Long unchanged runs are elided, a missing final newline is
// marked with "∅", and escape characters are made visible.
//
// # Directories
//
// [Assert.SubsetEq] and [MatchDir] check that every file under an expected
// directory exists under an actual directory with matching content.
// [WithInclude] limits the check to doublestar globs.
package golden
