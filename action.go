package golden

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Action decides what an assertion does with a mismatch.
type Action int

const (
	// ActionVerify fails the assertion on mismatch.
	ActionVerify Action = iota
	// ActionOverwrite rewrites the expected snapshot on mismatch and still
	// fails the assertion.
	ActionOverwrite
	// ActionCreate writes snapshots that do not exist yet and verifies the rest.
	ActionCreate
	// ActionIgnore compares but never fails.
	ActionIgnore
	// ActionSkip does not compare at all.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionVerify:
		return "verify"
	case ActionOverwrite:
		return "overwrite"
	case ActionCreate:
		return "create"
	case ActionIgnore:
		return "ignore"
	case ActionSkip:
		return "skip"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verify":
		return ActionVerify, nil
	case "overwrite":
		return ActionOverwrite, nil
	case "create":
		return ActionCreate, nil
	case "ignore":
		return ActionIgnore, nil
	case "skip":
		return ActionSkip, nil
	default:
		return ActionVerify, &UsageError{Op: "action", Msg: fmt.Sprintf("unknown action %q (want overwrite, create, verify, skip or ignore)", s)}
	}
}

// DefaultActionEnv is the environment variable holding the process-wide
// action.
const DefaultActionEnv = "GOLDEN_ACTION"

// legacyUpdateEnv set to a truthy value means overwrite. It is consulted
// only when DefaultActionEnv is unset.
const legacyUpdateEnv = "GOLDEN_UPDATE"

// Config is the process-wide action setting.
type Config struct {
	// Action applies when a call site does not choose one.
	Action Action
	// Env names the variable Action was read from, for hints in reports.
	Env string
	// Set reports whether the variable was present.
	Set bool
}

// LoadConfig reads the action from the variable env using getenv. An
// unknown value is a *UsageError.
func LoadConfig(getenv func(string) string, env string) (Config, error) {
	cfg := Config{Action: ActionVerify, Env: env}
	if v := strings.TrimSpace(getenv(env)); v != "" {
		a, err := ParseAction(v)
		if err != nil {
			return cfg, &UsageError{Op: "config", Msg: fmt.Sprintf("%s=%q is not a valid action", env, v), Err: err}
		}
		cfg.Action = a
		cfg.Set = true
		return cfg, nil
	}
	if env == DefaultActionEnv {
		switch strings.ToLower(getenv(legacyUpdateEnv)) {
		case "1", "true", "yes":
			cfg.Action = ActionOverwrite
			cfg.Set = true
		}
	}
	return cfg, nil
}

type configEntry struct {
	cfg Config
	err error
}

var (
	configMu    sync.Mutex
	configCache = map[string]configEntry{}
)

// processConfig reads env from the process environment once and caches
// the result for the life of the process.
func processConfig(env string) (Config, error) {
	configMu.Lock()
	defer configMu.Unlock()
	if e, ok := configCache[env]; ok {
		return e.cfg, e.err
	}
	cfg, err := LoadConfig(os.Getenv, env)
	configCache[env] = configEntry{cfg: cfg, err: err}
	return cfg, err
}

// resolveAction applies the precedence call site, then process
// configuration, then ActionVerify.
func (o *options) resolveAction() (Action, Config, error) {
	cfg := Config{Action: ActionVerify, Env: o.actionEnv}
	if o.config != nil {
		cfg = *o.config
	} else {
		var err error
		cfg, err = processConfig(o.actionEnv)
		if err != nil {
			return ActionVerify, cfg, err
		}
	}
	if o.hasAction {
		return o.action, cfg, nil
	}
	return cfg.Action, cfg, nil
}
