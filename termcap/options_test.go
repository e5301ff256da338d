package termcap

import (
	"testing"
	"time"

	"github.com/cboone/golden"
)

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		version string
		min     string
		want    bool
	}{
		{"3.4", "3.0", true},
		{"3.0", "3.0", true},
		{"2.9", "3.0", false},
		{"next-3.5", "3.0", true},
		{"3.3a", "3.0", true},
		{"4.0", "3.9", true},
		{"garbage", "3.0", false},
	}
	for _, tt := range tests {
		if got := versionAtLeast(tt.version, tt.min); got != tt.want {
			t.Errorf("versionAtLeast(%q, %q) = %v, want %v", tt.version, tt.min, got, tt.want)
		}
	}
}

func TestValidateClampsPollInterval(t *testing.T) {
	o := defaultOptions()
	WithPollInterval(time.Millisecond)(&o)
	if err := o.validate(); err != nil {
		t.Fatal(err)
	}
	if o.pollInterval != minPollInterval {
		t.Errorf("pollInterval = %v, want %v", o.pollInterval, minPollInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, opt := range map[string]Option{
		"size":    WithSize(0, 24),
		"history": WithHistoryLimit(-1),
		"poll":    WithPollInterval(-time.Second),
	} {
		o := defaultOptions()
		opt(&o)
		if err := o.validate(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDropDeadNotice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "out\n\nPane is dead (status 0, Mon Jan  1 00:00:00 2026)\n\n\n", "out\n\n"},
		{"styled", "out\n\x1b[7mPane is dead (status 1)\x1b[0m\n", "out\n"},
		{"no notice", "out\nmore\n\n", "out\nmore\n"},
	}
	for _, tt := range tests {
		if got := dropDeadNotice(tt.in); got != tt.want {
			t.Errorf("%s: dropDeadNotice(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestPlain(t *testing.T) {
	got := Plain(golden.TermStyled("\x1b[1mbold\x1b[0m text\n"))
	if got.Format() != golden.FormatText {
		t.Errorf("format = %v, want text", got.Format())
	}
	if got.String() != "bold text\n" {
		t.Errorf("Plain = %q", got.String())
	}

	bin := golden.Binary([]byte{0, 1})
	if Plain(bin).Format() != golden.FormatBinary {
		t.Error("Plain changed binary content")
	}
}

func TestInputString(t *testing.T) {
	tests := []struct {
		in   Input
		want string
	}{
		{Type("hi"), `type "hi"`},
		{Press(Enter, Ctrl('c'), Alt('x')), "press Enter C-c M-x"},
		{WaitFor("ready>"), `wait for "ready>"`},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestWithInputAppends(t *testing.T) {
	o := defaultOptions()
	WithInput(Type("a"))(&o)
	WithInput(Press(Tab), WaitFor("b"))(&o)
	if len(o.input) != 3 {
		t.Fatalf("len(input) = %d, want 3", len(o.input))
	}
}
