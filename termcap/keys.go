package termcap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/cboone/golden/internal/tmuxcli"
)

// Key is a tmux key name.
type Key string

// Special keys for Press.
const (
	Enter     Key = "Enter"
	Escape    Key = "Escape"
	Tab       Key = "Tab"
	Backspace Key = "BSpace"
	Up        Key = "Up"
	Down      Key = "Down"
	Left      Key = "Left"
	Right     Key = "Right"
	Home      Key = "Home"
	End       Key = "End"
	PageUp    Key = "PageUp"
	PageDown  Key = "PageDown"
	Space     Key = "Space"
	Delete    Key = "DC"
)

// Ctrl returns the key for Ctrl+<c>.
func Ctrl(c byte) Key {
	return Key(fmt.Sprintf("C-%c", c))
}

// Alt returns the key for Alt+<c>.
func Alt(c byte) Key {
	return Key(fmt.Sprintf("M-%c", c))
}

type inputKind int

const (
	inputText inputKind = iota
	inputKeys
	inputWait
)

// Input is one step of scripted input sent to the program. See WithInput.
type Input struct {
	kind inputKind
	text string
	keys []Key
}

// Type sends s literally, one keypress per character.
func Type(s string) Input {
	return Input{kind: inputText, text: s}
}

// Press sends special keys.
func Press(keys ...Key) Input {
	return Input{kind: inputKeys, keys: keys}
}

// WaitFor pauses the script until the unstyled screen contains text.
// Waiting for a prompt before typing keeps the terminal echo in order.
func WaitFor(text string) Input {
	return Input{kind: inputWait, text: text}
}

func (in Input) String() string {
	switch in.kind {
	case inputText:
		return fmt.Sprintf("type %q", in.text)
	case inputKeys:
		names := make([]string, len(in.keys))
		for i, k := range in.keys {
			names[i] = string(k)
		}
		return "press " + strings.Join(names, " ")
	default:
		return fmt.Sprintf("wait for %q", in.text)
	}
}

// play runs the input script against pane.
func play(ctx context.Context, runner *tmuxcli.Runner, pane string, poll time.Duration, script []Input) error {
	for _, in := range script {
		var err error
		switch in.kind {
		case inputText:
			_, err = runner.Run(ctx, "send-keys", "-t", pane, "-l", in.text)
		case inputKeys:
			args := []string{"send-keys", "-t", pane}
			for _, k := range in.keys {
				args = append(args, string(k))
			}
			_, err = runner.Run(ctx, args...)
		case inputWait:
			err = waitForText(ctx, runner, pane, poll, in.text)
		}
		if err != nil {
			return fmt.Errorf("termcap: %s: %w", in, err)
		}
	}
	return nil
}

func waitForText(ctx context.Context, runner *tmuxcli.Runner, pane string, poll time.Duration, text string) error {
	var last string
	for {
		raw, err := runner.Capture(ctx, pane, false)
		if err == nil {
			last = raw
			if strings.Contains(ansi.Strip(raw), text) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (screen: %q)", ctx.Err(), strings.TrimSpace(last))
		case <-time.After(poll):
		}
	}
}
