package termhost

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/vtree/internal/errors"
)

// KeyMap defines the model's key bindings. It implements help.KeyMap.
type KeyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "previous"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "click"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Activate, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Activate},
		{k.Help, k.Quit},
	}
}

var namedKeys = map[string]tea.KeyType{
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"enter":     tea.KeyEnter,
	"space":     tea.KeySpace,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"esc":       tea.KeyEsc,
	"ctrl+c":    tea.KeyCtrlC,
}

// ParseKey turns a script line into a key message: a key name from the
// default bindings, "space", "backspace", or a single printable character.
func ParseKey(s string) (tea.KeyMsg, error) {
	if t, ok := namedKeys[s]; ok {
		msg := tea.KeyMsg{Type: t}
		if t == tea.KeySpace {
			msg.Runes = []rune{' '}
		}
		return msg, nil
	}
	if r := []rune(s); len(r) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: r}, nil
	}
	return tea.KeyMsg{}, errors.New(errors.CLIInvalidInput).WithDetailf("Unknown key %q.", s)
}

// ReadScript reads a demo script. Each non-blank line is a key for ParseKey
// or "type <text>", which types text one rune at a time. Lines starting
// with # are comments.
func ReadScript(r io.Reader) ([]tea.KeyMsg, error) {
	var msgs []tea.KeyMsg
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(text, "type "); ok {
			for _, c := range rest {
				if c == ' ' {
					msgs = append(msgs, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
					continue
				}
				msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{c}})
			}
			continue
		}
		msg, err := ParseKey(text)
		if err != nil {
			return nil, errors.FromError(err, errors.CLIInvalidInput).WithLocation("script", line)
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return msgs, nil
}
