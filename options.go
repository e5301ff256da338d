package golden

import (
	"log/slog"
	"os"
)

type options struct {
	action         Action
	hasAction      bool
	actionEnv      string
	config         *Config
	redactions     *Redactions
	edits          []func(*Redactions) error
	root           string
	normalizePaths bool
	unordered      bool
	palette        *Palette
	logger         *slog.Logger
	include        []string
}

// Option configures an assertion.
type Option func(*options)

// WithAction sets the action for the call, overriding the environment.
func WithAction(a Action) Option {
	return func(o *options) {
		o.action = a
		o.hasAction = true
	}
}

// WithActionEnv names the environment variable the action is read from.
// Defaults to GOLDEN_ACTION.
func WithActionEnv(name string) Option {
	return func(o *options) {
		o.actionEnv = name
	}
}

// WithConfig uses cfg instead of reading the environment.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = &cfg
	}
}

// WithRedactions replaces the default placeholder set. The set is copied
// before any other redaction option adds to it.
func WithRedactions(r *Redactions) Option {
	return func(o *options) {
		o.redactions = r
	}
}

// WithRedaction adds literal values for a placeholder.
func WithRedaction(placeholder string, values ...string) Option {
	return func(o *options) {
		o.edits = append(o.edits, func(r *Redactions) error {
			return r.Insert(placeholder, values...)
		})
	}
}

// WithPathRedaction adds every literal form of a filesystem path for a
// placeholder.
func WithPathRedaction(placeholder, path string) Option {
	return func(o *options) {
		o.edits = append(o.edits, func(r *Redactions) error {
			return r.InsertPath(placeholder, path)
		})
	}
}

// WithRegexpRedaction adds a pattern rule for a placeholder. See
// Redactions.InsertRegexp.
func WithRegexpRedaction(placeholder, expr string) Option {
	return func(o *options) {
		o.edits = append(o.edits, func(r *Redactions) error {
			return r.InsertRegexp(placeholder, expr)
		})
	}
}

// WithUUIDRedaction adds a placeholder standing for any UUID.
func WithUUIDRedaction(placeholder string) Option {
	return func(o *options) {
		o.edits = append(o.edits, func(r *Redactions) error {
			return r.InsertUUID(placeholder)
		})
	}
}

// WithRoot sets the project root used for [ROOT] and for the paths shown
// in diff headers. Defaults to the nearest directory holding go.mod.
func WithRoot(dir string) Option {
	return func(o *options) {
		o.root = dir
	}
}

// WithoutPathNormalization keeps backslashes as they are.
func WithoutPathNormalization() Option {
	return func(o *options) {
		o.normalizePaths = false
	}
}

// WithUnordered ignores line order for text and element order for JSON
// arrays.
func WithUnordered() Option {
	return func(o *options) {
		o.unordered = true
	}
}

// WithPalette sets the diff colors. Defaults to AutoPalette(os.Stderr).
func WithPalette(p Palette) Option {
	return func(o *options) {
		o.palette = &p
	}
}

// WithLogger sets the logger for snapshot writes and ignored mismatches.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInclude limits directory comparisons to entries whose slash-separated
// relative path matches one of the doublestar globs.
func WithInclude(globs ...string) Option {
	return func(o *options) {
		o.include = append(o.include, globs...)
	}
}

func defaultOptions() options {
	return options{
		actionEnv:      DefaultActionEnv,
		normalizePaths: true,
	}
}

// buildOptions applies userOpts and materializes the redaction set.
func buildOptions(userOpts []Option) (*options, error) {
	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}

	var r *Redactions
	if opts.redactions != nil {
		r = opts.redactions.Clone()
	} else {
		r = NewRedactions()
	}
	if opts.root != "" {
		r.setLiteral(PhRoot, pathForms(opts.root)...)
	} else if cwd, err := os.Getwd(); err == nil {
		if root, ok := findRoot(cwd); ok {
			opts.root = root
		}
	}
	for _, edit := range opts.edits {
		if err := edit(r); err != nil {
			return nil, err
		}
	}
	opts.redactions = r

	if opts.palette == nil {
		p := AutoPalette(os.Stderr)
		opts.palette = &p
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &opts, nil
}

func (o *options) filters() []Filter {
	if o.normalizePaths {
		return []Filter{Newlines, Paths}
	}
	return []Filter{Newlines}
}
