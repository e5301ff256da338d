// Package tmuxcli runs tmux commands against an isolated server socket. It
// is internal to the termcap package.
package tmuxcli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes tmux commands against a specific server socket.
type Runner struct {
	tmuxPath   string
	socketPath string
	configPath string
}

// New creates a Runner bound to the given tmux binary and socket path.
func New(tmuxPath, socketPath string) *Runner {
	return &Runner{
		tmuxPath:   tmuxPath,
		socketPath: socketPath,
	}
}

// SetConfigPath sets the path to a tmux config file. When set, all tmux
// invocations will include -f <configPath> before other arguments.
func (r *Runner) SetConfigPath(path string) {
	r.configPath = path
}

// Run executes a tmux command and returns its stdout. If the command
// fails, the error is an *Error carrying stderr.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	var fullArgs []string
	if r.configPath != "" {
		fullArgs = append(fullArgs, "-f", r.configPath)
	}
	fullArgs = append(fullArgs, "-S", r.socketPath)
	fullArgs = append(fullArgs, args...)
	cmd := exec.CommandContext(ctx, r.tmuxPath, fullArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &Error{
			Op:     args[0],
			Args:   fullArgs,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}

	return stdout.String(), nil
}

// Error represents a tmux command failure.
type Error struct {
	Op     string
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tmux %s failed: %v", e.Op, e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Version runs "tmux -V" and returns the version string (e.g. "3.4").
func Version(ctx context.Context, tmuxPath string) (string, error) {
	cmd := exec.CommandContext(ctx, tmuxPath, "-V")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux -V failed: %v (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	// "tmux 3.4" or "tmux next-3.5"
	return strings.TrimPrefix(strings.TrimSpace(stdout.String()), "tmux "), nil
}

// WaitForSession polls until the tmux session answers or ctx is done.
func (r *Runner) WaitForSession(ctx context.Context, poll time.Duration) error {
	for {
		_, err := r.Run(ctx, "list-panes", "-F", "#{pane_id}")
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("tmux session not ready: %w (last error: %v)", ctx.Err(), err)
		case <-time.After(poll):
		}
	}
}

// PaneState reports whether the process in pane has exited and, if so,
// its exit status.
func (r *Runner) PaneState(ctx context.Context, pane string) (dead bool, status int, err error) {
	out, err := r.Run(ctx, "list-panes", "-t", pane, "-F", "#{pane_dead} #{pane_dead_status}")
	if err != nil {
		return false, 0, err
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 || fields[0] != "1" {
		return false, 0, nil
	}
	if len(fields) > 1 {
		status, err = strconv.Atoi(fields[1])
		if err != nil {
			return true, 0, fmt.Errorf("tmux: bad pane status %q", fields[1])
		}
	}
	return true, status, nil
}

// Capture returns the visible content of pane. With styled set, SGR escape
// sequences are kept.
func (r *Runner) Capture(ctx context.Context, pane string, styled bool) (string, error) {
	args := []string{"capture-pane", "-p", "-t", pane}
	if styled {
		args = append(args, "-e")
	}
	return r.Run(ctx, args...)
}
