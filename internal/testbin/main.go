// Command testbin is a fixture program for terminal capture tests. It
// prints styled output and exits.
//
// Usage:
//
//	testbin [--exit N] [--uuid] MODE
//
// Modes:
//   - "styled": a bold title, a red error line and a plain line
//   - "size": the terminal size
//   - "path": the working directory, for redaction tests
//   - "prompt": asks for a name on stdin and greets it
//   - anything else: the mode name echoed back
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	exit := flag.Int("exit", 0, "exit status")
	withID := flag.Bool("uuid", false, "print a random request id")
	flag.Parse()

	r := lipgloss.NewRenderer(os.Stdout)
	r.SetColorProfile(termenv.ANSI)

	switch mode := flag.Arg(0); mode {
	case "styled":
		fmt.Println(r.NewStyle().Bold(true).Render("Title"))
		fmt.Println(r.NewStyle().Foreground(lipgloss.Color("1")).Render("error: something failed"))
		fmt.Println("plain line")
	case "size":
		cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Printf("size: %dx%d\n", cols, rows)
	case "path":
		wd, err := os.Getwd()
		if err != nil {
			fmt.Printf("error: %v\n", err)
			break
		}
		fmt.Printf("cwd: %s\n", wd)
	case "prompt":
		fmt.Print("name? ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			break
		}
		fmt.Printf("hello, %s\n", strings.TrimSpace(line))
	default:
		fmt.Printf("echo: %s\n", mode)
	}
	if *withID {
		fmt.Printf("request: %s\n", uuid.NewString())
	}
	os.Exit(*exit)
}
