// Package termcap runs a program inside an isolated tmux server and
// captures its final screen as golden.Data.
//
// Each capture starts a dedicated tmux server on a socket in a fresh
// temporary directory, so parallel tests never share state. The server is
// configured with:
//
//   - remain-on-exit on
//   - status off
//   - deterministic history-limit
//
// Scripted input from [WithInput] is sent first. The program then runs
// until it exits or the context is done, the pane is captured with its SGR
// escape sequences, and the server is killed.
//
// tmux is resolved in this order:
//
//   - [WithTmuxPath]
//   - GOLDEN_TMUX
//   - PATH lookup for tmux
package termcap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/cboone/golden"
	"github.com/cboone/golden/internal/textnorm"
	"github.com/cboone/golden/internal/tmuxcli"
)

// ErrUnavailable reports that no usable tmux binary was found. Tests
// usually skip when Capture returns it.
var ErrUnavailable = errors.New("termcap: tmux unavailable")

// Screen is the final state of a captured program.
type Screen struct {
	// Data is the normalized screen, TermStyled unless WithPlain was used.
	Data golden.Data
	// ExitStatus is the program's exit status, or -1 when it was still
	// running when the context ended.
	ExitStatus int
	Width      int
	Height     int
}

// Capture runs binary in a new tmux session and returns its screen once it
// exits. If ctx ends first the screen is captured as it is and the context
// error is returned alongside it.
func Capture(ctx context.Context, binary string, userOpts ...Option) (Screen, error) {
	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}
	if err := opts.validate(); err != nil {
		return Screen{}, err
	}

	tmuxPath, err := resolveTmuxPath(opts.tmuxPath)
	if err != nil {
		return Screen{}, err
	}
	if err := checkTmuxVersion(ctx, tmuxPath); err != nil {
		return Screen{}, err
	}

	dir, err := os.MkdirTemp("", "golden-tmux-")
	if err != nil {
		return Screen{}, fmt.Errorf("termcap: %w", err)
	}
	defer os.RemoveAll(dir)

	runner := tmuxcli.New(tmuxPath, filepath.Join(dir, "tmux.sock"))
	configPath := filepath.Join(dir, "tmux.conf")
	if err := writeConfig(configPath, opts); err != nil {
		return Screen{}, err
	}
	runner.SetConfigPath(configPath)

	if err := startSession(ctx, runner, binary, opts); err != nil {
		return Screen{}, err
	}
	defer func() {
		_, _ = runner.Run(context.Background(), "kill-server")
	}()

	if err := runner.WaitForSession(ctx, opts.pollInterval); err != nil {
		return Screen{}, fmt.Errorf("termcap: %w", err)
	}
	out, err := runner.Run(ctx, "list-panes", "-F", "#{pane_id}")
	if err != nil {
		return Screen{}, fmt.Errorf("termcap: failed to get pane ID: %w", err)
	}
	pane := strings.TrimSpace(out)

	scr := Screen{ExitStatus: -1, Width: opts.width, Height: opts.height}
	waitErr := play(ctx, runner, pane, opts.pollInterval, opts.input)
	if waitErr == nil {
		waitErr = waitForExit(ctx, runner, pane, opts.pollInterval, &scr)
	}

	// The capture must still work after ctx has ended.
	raw, err := runner.Capture(context.Background(), pane, !opts.plain)
	if err != nil {
		return scr, fmt.Errorf("termcap: capture: %w", err)
	}
	raw = textnorm.Screen(dropDeadNotice(raw))
	if opts.plain {
		scr.Data = golden.Text(raw)
	} else {
		scr.Data = golden.TermStyled(raw)
	}
	return scr, waitErr
}

func waitForExit(ctx context.Context, runner *tmuxcli.Runner, pane string, poll time.Duration, scr *Screen) error {
	for {
		dead, status, err := runner.PaneState(ctx, pane)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("termcap: pane state: %w", err)
		}
		if dead {
			scr.ExitStatus = status
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
}

// dropDeadNotice removes the "Pane is dead" line tmux writes below the
// output of an exited program.
func dropDeadNotice(raw string) string {
	lines := strings.Split(strings.TrimRight(raw, "\n "), "\n")
	last := len(lines) - 1
	if strings.HasPrefix(strings.TrimSpace(ansi.Strip(lines[last])), "Pane is dead") {
		lines = lines[:last]
	}
	return strings.Join(lines, "\n") + "\n"
}

// Plain strips escape sequences from terminal content and returns it as
// text. Other content is returned unchanged.
func Plain(d golden.Data) golden.Data {
	if d.Format() != golden.FormatTermStyled || d.Err() != nil {
		return d
	}
	return golden.Text(ansi.Strip(d.String()))
}

func startSession(ctx context.Context, runner *tmuxcli.Runner, binary string, opts options) error {
	args := []string{
		"new-session", "-d",
		"-x", strconv.Itoa(opts.width),
		"-y", strconv.Itoa(opts.height),
	}
	if opts.dir != "" {
		args = append(args, "-c", opts.dir)
	}
	args = append(args, "--")

	// Environment variables go through /usr/bin/env so they reach the
	// program and not just the session.
	if len(opts.env) > 0 {
		args = append(args, "/usr/bin/env")
		args = append(args, opts.env...)
	}
	args = append(args, binary)
	args = append(args, opts.args...)

	if _, err := runner.Run(ctx, args...); err != nil {
		return fmt.Errorf("termcap: failed to start tmux session: %w", err)
	}
	return nil
}

func writeConfig(path string, opts options) error {
	config := fmt.Sprintf("set-option -g history-limit %d\nset-option -g remain-on-exit on\nset-option -g status off\n", opts.historyLimit)
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		return fmt.Errorf("termcap: failed to write tmux config: %w", err)
	}
	return nil
}
