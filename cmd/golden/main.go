// golden compares files against snapshot files from the command line,
// with the same wildcards, redactions and actions as the library.
//
// Usage:
//
//	golden verify [flags] EXPECTED ACTUAL
//	golden dir [flags] EXPECTED_DIR ACTUAL_DIR
//	golden diff [flags] EXPECTED ACTUAL
//
// ACTUAL may be "-" to read standard input. Exit status is 0 when the
// content matches, 1 on a mismatch and 2 on usage or format errors.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/cboone/golden"
	"github.com/cboone/golden/internal/config"
)

const (
	exitMismatch = 1
	exitUsage    = 2
)

// exitError carries a process exit status. A nil err means the report was
// already written.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) ExitCode() int { return e.code }

func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		code := exitUsage
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			code = coder.ExitCode()
		}
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}

type flags struct {
	action     string
	configPath string
	unordered  bool
	raw        bool
	color      string
	verbose    bool
	include    []string
	format     string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return usageErr("missing command")
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "verify", "dir", "diff":
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return usageErr("unknown command %q", cmd)
	}

	var f flags
	flagSet := pflag.NewFlagSet("golden "+cmd, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&f.action, "action", "", "overwrite, create, verify, skip or ignore (default from $GOLDEN_ACTION)")
	flagSet.StringVar(&f.configPath, "config", "", "settings file (default: nearest "+config.FileName+")")
	flagSet.BoolVar(&f.unordered, "unordered", false, "ignore line and array element order")
	flagSet.BoolVar(&f.raw, "raw", false, "compare bytes exactly, without filters or wildcards")
	flagSet.StringVar(&f.color, "color", "auto", "auto, always or never")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details")
	flagSet.StringSliceVar(&f.include, "include", nil, "doublestar globs limiting dir comparisons")
	flagSet.StringVar(&f.format, "format", "", "format of both sides (text, binary, json, jsonl, term); default from extension")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &exitError{code: exitUsage, err: err}
	}
	if flagSet.NArg() != 2 {
		return usageErr("%s needs two arguments, got %d", cmd, flagSet.NArg())
	}

	opts, err := f.options(stdout, stderr)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	expected, actual := flagSet.Arg(0), flagSet.Arg(1)

	switch cmd {
	case "dir":
		return runDir(expected, actual, opts, stdout)
	default:
		exp, act, err := f.load(expected, actual, stdin)
		if err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		if cmd == "diff" {
			return runDiff(exp, act, opts, stdout)
		}
		return runVerify(exp, act, opts, stdout, stderr)
	}
}

func (f *flags) options(stdout, stderr io.Writer) ([]golden.Option, error) {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var opts []golden.Option
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		fromFile, err := cfg.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, fromFile...)
		logger.Debug("loaded settings", "options", len(fromFile))
	}

	opts = append(opts, golden.WithLogger(logger))
	if f.action != "" {
		a, err := golden.ParseAction(f.action)
		if err != nil {
			return nil, err
		}
		opts = append(opts, golden.WithAction(a))
	}
	if f.unordered {
		opts = append(opts, golden.WithUnordered())
	}
	if len(f.include) > 0 {
		opts = append(opts, golden.WithInclude(f.include...))
	}
	p, err := palette(f.color, stdout)
	if err != nil {
		return nil, err
	}
	return append(opts, golden.WithPalette(p)), nil
}

func (f *flags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.Load(f.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Find(wd)
}

// load reads both sides. The actual side takes the expected side's format
// unless --format names one.
func (f *flags) load(expectedPath, actualPath string, stdin io.Reader) (golden.Data, golden.Data, error) {
	var exp golden.Data
	if f.format != "" {
		format, err := golden.ParseFormat(f.format)
		if err != nil {
			return exp, exp, err
		}
		exp = golden.ReadAs(expectedPath, format)
	} else {
		exp = golden.Read(expectedPath)
	}
	if err := exp.Err(); err != nil {
		return exp, exp, err
	}

	var act golden.Data
	if actualPath == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return exp, act, fmt.Errorf("read stdin: %w", err)
		}
		act = golden.FromBytes(b, exp.Format())
	} else {
		act = golden.ReadAs(actualPath, exp.Format())
		if act.Missing() {
			return exp, act, fmt.Errorf("%s does not exist", actualPath)
		}
		if err := act.Err(); err != nil {
			return exp, act, err
		}
	}
	if f.raw {
		exp, act = exp.Raw(), act.Raw()
	}
	return exp, act, nil
}

func runVerify(exp, act golden.Data, opts []golden.Option, stdout, stderr io.Writer) error {
	res, err := golden.Verify(exp, act, opts...)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	if res.Note != "" {
		fmt.Fprintln(stderr, res.Note)
	}
	if res.Passed {
		return nil
	}
	fmt.Fprint(stdout, golden.Report(exp, res, opts...))
	return &exitError{code: exitMismatch}
}

func runDiff(exp, act golden.Data, opts []golden.Option, stdout io.Writer) error {
	out, err := golden.Match(exp, act, opts...)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	fmt.Fprint(stdout, golden.Diff(exp, act, opts...))
	if !out.Equal {
		return &exitError{code: exitMismatch}
	}
	return nil
}

func runDir(expected, actual string, opts []golden.Option, stdout io.Writer) error {
	out, passed, err := golden.VerifyDir(expected, actual, opts...)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	if !out.Equal {
		fmt.Fprint(stdout, golden.ReportDir(out, opts...))
	}
	if !passed {
		return &exitError{code: exitMismatch}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `golden compares content against snapshot files.

Usage:
  golden verify [flags] EXPECTED ACTUAL
  golden dir [flags] EXPECTED_DIR ACTUAL_DIR
  golden diff [flags] EXPECTED ACTUAL

ACTUAL may be "-" to read standard input.

Examples:
  # Check program output against a snapshot
  ./app | golden verify testdata/app.txt -

  # Accept the new output
  ./app | golden verify --action overwrite testdata/app.txt -

  # Check that every file under want/ exists and matches under got/
  golden dir --include '**/*.json' want/ got/

Run "golden COMMAND --help" for the flags of a command.
`)
}
