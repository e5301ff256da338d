package golden

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Palette holds the styles used to render diffs. The zero value renders
// plain text.
type Palette struct {
	color bool

	header    lipgloss.Style
	gutter    lipgloss.Style
	removed   lipgloss.Style
	added     lipgloss.Style
	removedHi lipgloss.Style
	addedHi   lipgloss.Style
	elided    lipgloss.Style
	marker    lipgloss.Style
}

// PlainPalette renders diffs without escape sequences.
func PlainPalette() Palette {
	return Palette{}
}

// ColorPalette renders diffs with the colors profile supports. The Ascii
// profile yields a plain palette.
func ColorPalette(profile termenv.Profile) Palette {
	if profile == termenv.Ascii {
		return PlainPalette()
	}
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)

	red := lipgloss.Color("1")
	green := lipgloss.Color("2")
	return Palette{
		color:     true,
		header:    base.Bold(true),
		gutter:    base.Faint(true),
		removed:   base.Foreground(red),
		added:     base.Foreground(green),
		removedHi: base.Foreground(red).Reverse(true),
		addedHi:   base.Foreground(green).Reverse(true),
		elided:    base.Faint(true).Italic(true),
		marker:    base.Faint(true),
	}
}

// AutoPalette picks colors for f: plain when NO_COLOR is set or f is not a
// terminal, otherwise the profile the environment advertises.
func AutoPalette(f *os.File) Palette {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return PlainPalette()
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return PlainPalette()
	}
	return ColorPalette(termenv.NewOutput(f).EnvColorProfile())
}

// Colored reports whether the palette emits escape sequences.
func (p Palette) Colored() bool { return p.color }

func (p Palette) paint(s lipgloss.Style, text string) string {
	if !p.color || text == "" {
		return text
	}
	return s.Render(text)
}
