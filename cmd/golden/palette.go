package main

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"

	"github.com/cboone/golden"
)

// palette maps the --color flag to diff styling for w.
func palette(mode string, w io.Writer) (golden.Palette, error) {
	switch mode {
	case "never":
		return golden.PlainPalette(), nil
	case "always":
		profile := termenv.NewOutput(w).EnvColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI
		}
		return golden.ColorPalette(profile), nil
	case "auto", "":
		if f, ok := w.(*os.File); ok {
			return golden.AutoPalette(f), nil
		}
		return golden.PlainPalette(), nil
	default:
		return golden.Palette{}, fmt.Errorf("unknown --color %q (want auto, always or never)", mode)
	}
}
