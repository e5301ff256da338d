package termcap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/cboone/golden/internal/tmuxcli"
)

const (
	defaultWidth        = 80
	defaultHeight       = 24
	defaultHistoryLimit = 10000
	defaultPollInterval = 20 * time.Millisecond
	minPollInterval     = 5 * time.Millisecond

	minTmuxVersion = "3.0"
)

type options struct {
	args         []string
	env          []string
	dir          string
	width        int
	height       int
	historyLimit int
	pollInterval time.Duration
	tmuxPath     string
	plain        bool
	input        []Input
}

// Option configures a capture.
type Option func(*options)

func defaultOptions() options {
	return options{
		width:        defaultWidth,
		height:       defaultHeight,
		historyLimit: defaultHistoryLimit,
		pollInterval: defaultPollInterval,
	}
}

// WithArgs sets the program arguments.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.args = args
	}
}

// WithEnv adds KEY=VALUE environment variables for the program.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithDir sets the working directory of the program.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithSize sets the terminal size. Defaults to 80x24.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithHistoryLimit sets the tmux scrollback limit.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithPollInterval sets how often the pane is checked for exit.
// Intervals under 5ms are clamped to 5ms.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithTmuxPath sets the tmux binary.
func WithTmuxPath(path string) Option {
	return func(o *options) {
		o.tmuxPath = path
	}
}

// WithPlain captures text without escape sequences.
func WithPlain() Option {
	return func(o *options) {
		o.plain = true
	}
}

// WithInput sends scripted input to the program once its session is up.
// Steps run in order; see Type, Press and WaitFor.
func WithInput(steps ...Input) Option {
	return func(o *options) {
		o.input = append(o.input, steps...)
	}
}

func (o *options) validate() error {
	if o.width <= 0 || o.height <= 0 {
		return fmt.Errorf("termcap: invalid size %dx%d", o.width, o.height)
	}
	if o.historyLimit < 0 {
		return fmt.Errorf("termcap: negative history limit %d", o.historyLimit)
	}
	if o.pollInterval < 0 {
		return fmt.Errorf("termcap: negative poll interval %v", o.pollInterval)
	}
	if o.pollInterval < minPollInterval {
		o.pollInterval = minPollInterval
	}
	return nil
}

// resolveTmuxPath checks WithTmuxPath, then GOLDEN_TMUX, then PATH.
func resolveTmuxPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if envPath := os.Getenv("GOLDEN_TMUX"); envPath != "" {
		return envPath, nil
	}
	found, err := exec.LookPath("tmux")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return found, nil
}

func checkTmuxVersion(ctx context.Context, tmuxPath string) error {
	version, err := tmuxcli.Version(ctx, tmuxPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !versionAtLeast(version, minTmuxVersion) {
		return fmt.Errorf("%w: version %s is below minimum %s", ErrUnavailable, version, minTmuxVersion)
	}
	return nil
}

// versionRe handles version strings like "3.4", "next-3.5", "3.3a".
var versionRe = regexp.MustCompile(`(\d+)\.(\d+)`)

func versionAtLeast(version, minVersion string) bool {
	parseMajorMinor := func(v string) (int, int, bool) {
		m := versionRe.FindStringSubmatch(v)
		if m == nil {
			return 0, 0, false
		}
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		return major, minor, true
	}

	vMajor, vMinor, ok1 := parseMajorMinor(version)
	mMajor, mMinor, ok2 := parseMajorMinor(minVersion)
	if !ok1 || !ok2 {
		return false
	}
	if vMajor != mMajor {
		return vMajor > mMajor
	}
	return vMinor >= mMinor
}
