package golden

import "fmt"

// FormatError reports content that cannot be read as the requested format,
// such as invalid JSON in a snapshot declared as JSON.
type FormatError struct {
	Format Format
	Path   string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("golden: content is not valid %s", e.Format)
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// RedactionError reports a malformed redaction rule: an invalid
// placeholder name or a regular expression that does not compile.
type RedactionError struct {
	Placeholder string
	Expr        string
	Err         error
}

func (e *RedactionError) Error() string {
	msg := fmt.Sprintf("golden: redaction %s", e.Placeholder)
	if e.Expr != "" {
		msg += fmt.Sprintf(" (%q)", e.Expr)
	}
	return msg + ": " + e.Err.Error()
}

func (e *RedactionError) Unwrap() error {
	return e.Err
}

// UsageError reports a misconfigured assertion, as opposed to output that
// does not match.
type UsageError struct {
	Op  string
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	msg := "golden: " + e.Op + ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
