package textnorm_test

import (
	"reflect"
	"testing"

	"github.com/cboone/golden/internal/textnorm"
)

func TestNewlines(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "a\n"},
		{"a\n", "a\n"},
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb\n"},
		{"a\n\n", "a\n\n"},
	}
	for _, tt := range tests {
		got := textnorm.Newlines(tt.in)
		if got != tt.want {
			t.Errorf("Newlines(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := textnorm.Newlines(got); again != got {
			t.Errorf("Newlines not idempotent on %q: %q", got, again)
		}
	}
}

func TestPaths(t *testing.T) {
	got := textnorm.Paths(`C:\work\out.txt`)
	if got != "C:/work/out.txt" {
		t.Errorf("Paths() = %q", got)
	}
}

func TestScreen(t *testing.T) {
	got := textnorm.Screen("hello   \r\nworld  \n\n\n")
	want := "hello\nworld\n"
	if got != want {
		t.Errorf("Screen() = %q, want %q", got, want)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\n\nb\n", []string{"a\n", "\n", "b\n"}},
	}
	for _, tt := range tests {
		if got := textnorm.SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
