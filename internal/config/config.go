// Package config loads project settings for golden from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cboone/golden"
)

// FileName is the settings file looked up by Find.
const FileName = ".golden.yaml"

// Config is the contents of a settings file.
type Config struct {
	// Action is used when neither the call site nor the environment
	// chooses one.
	Action string `yaml:"action"`
	// ActionEnv renames the action environment variable.
	ActionEnv string `yaml:"action_env"`
	Unordered bool   `yaml:"unordered"`
	// NormalizePaths defaults to true.
	NormalizePaths *bool    `yaml:"normalize_paths"`
	Include        []string `yaml:"include"`
	Root           string   `yaml:"root"`
	// Redactions maps placeholders to literal values.
	Redactions map[string][]string `yaml:"redactions"`
	// Paths maps placeholders to filesystem paths.
	Paths map[string]string `yaml:"paths"`
	// Patterns maps placeholders to regular expressions.
	Patterns map[string]string `yaml:"patterns"`
	// UUIDs lists placeholders standing for any UUID.
	UUIDs []string `yaml:"uuids"`

	dir string
}

// Load reads a settings file. Relative paths in it are resolved against
// the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// Find walks up from dir to the first directory holding FileName and loads
// it. It returns nil and no error when there is none.
func Find(dir string) (*Config, error) {
	for {
		path := filepath.Join(dir, FileName)
		cfg, err := Load(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// Options converts the settings to golden options.
func (c *Config) Options() ([]golden.Option, error) {
	var opts []golden.Option
	if c.Action != "" {
		a, err := golden.ParseAction(c.Action)
		if err != nil {
			return nil, err
		}
		env := c.ActionEnv
		if env == "" {
			env = golden.DefaultActionEnv
		}
		// The environment still wins over the file.
		cfg, err := golden.LoadConfig(os.Getenv, env)
		if err != nil {
			return nil, err
		}
		if !cfg.Set {
			cfg.Action = a
		}
		opts = append(opts, golden.WithConfig(cfg))
	} else if c.ActionEnv != "" {
		opts = append(opts, golden.WithActionEnv(c.ActionEnv))
	}
	if c.Unordered {
		opts = append(opts, golden.WithUnordered())
	}
	if c.NormalizePaths != nil && !*c.NormalizePaths {
		opts = append(opts, golden.WithoutPathNormalization())
	}
	if len(c.Include) > 0 {
		opts = append(opts, golden.WithInclude(c.Include...))
	}
	if c.Root != "" {
		opts = append(opts, golden.WithRoot(c.resolve(c.Root)))
	}
	for _, ph := range sortedKeys(c.Redactions) {
		opts = append(opts, golden.WithRedaction(ph, c.Redactions[ph]...))
	}
	for _, ph := range sortedKeys(c.Paths) {
		opts = append(opts, golden.WithPathRedaction(ph, c.resolve(c.Paths[ph])))
	}
	for _, ph := range sortedKeys(c.Patterns) {
		opts = append(opts, golden.WithRegexpRedaction(ph, c.Patterns[ph]))
	}
	for _, ph := range c.UUIDs {
		opts = append(opts, golden.WithUUIDRedaction(ph))
	}
	return opts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
