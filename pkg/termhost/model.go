package termhost

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-dev/vtree/pkg/memhost"
)

// Model is a bubbletea model over a memhost tree. Nodes with listeners are
// focusable; keys move the focus and raise events on the focused node.
//
// Enter raises click. On an input, typed characters and backspace raise
// input with the edited value as Data, and enter raises keydown with Data
// "Enter". Inputs are controlled: the shown value is the node's value
// attribute, so a component must re-render it for typing to show.
//
// Handlers run inside Update, on the program's goroutine. Nothing else may
// touch the document while the program runs.
type Model struct {
	doc       *memhost.Document
	container *memhost.Node
	renderer  *Renderer
	keys      KeyMap
	help      help.Model
	title     string
	logger    *slog.Logger

	focus  *memhost.Node
	index  int
	status string
}

// Option configures a Model.
type Option func(*Model)

// WithTitle shows a title bar above the tree.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *Renderer) Option {
	return func(m *Model) { m.renderer = r }
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// WithLogger sets the logger for dispatched events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// NewModel creates a model showing the children of container.
func NewModel(doc *memhost.Document, container *memhost.Node, opts ...Option) *Model {
	m := &Model{
		doc:       doc,
		container: container,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.renderer == nil {
		m.renderer = NewRenderer(nil, DefaultStyles(nil))
	}
	return m
}

// Focusables returns the nodes that can take focus, in document order:
// those with at least one listener that are not disabled.
func (m *Model) Focusables() []*memhost.Node {
	return memhost.FindAll(m.container, func(n *memhost.Node) bool {
		return !n.IsText() && len(n.Events()) > 0 && !disabled(n)
	})
}

// Focused returns the focused node. When the focused node has left the tree
// the focus moves to the node now at its position.
func (m *Model) Focused() *memhost.Node {
	nodes := m.Focusables()
	if len(nodes) == 0 {
		m.focus = nil
		m.index = 0
		return nil
	}
	for i, n := range nodes {
		if n == m.focus {
			m.index = i
			return n
		}
	}
	m.index = min(m.index, len(nodes)-1)
	m.focus = nodes[m.index]
	return m.focus
}

func (m *Model) move(delta int) {
	if m.Focused() == nil {
		return
	}
	nodes := m.Focusables()
	m.index = (m.index + delta + len(nodes)) % len(nodes)
	m.focus = nodes[m.index]
}

// Status returns the line describing the last dispatched event.
func (m *Model) Status() string { return m.status }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		focused := m.Focused()
		if focused != nil && editable(focused) && m.edit(focused, msg) {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Next):
			m.move(1)
		case key.Matches(msg, m.keys.Prev):
			m.move(-1)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Activate):
			if focused != nil {
				m.dispatch(focused, "click", "")
			}
		}
	}
	return m, nil
}

func editable(n *memhost.Node) bool {
	return n.Tag() == "input" || n.Tag() == "textarea"
}

// edit handles keys typed into an input. It reports whether msg was used.
func (m *Model) edit(n *memhost.Node, msg tea.KeyMsg) bool {
	value := attrString(n, "value")
	switch msg.Type {
	case tea.KeyRunes:
		m.dispatch(n, "input", value+string(msg.Runes))
	case tea.KeySpace:
		m.dispatch(n, "input", value+" ")
	case tea.KeyBackspace:
		if r := []rune(value); len(r) > 0 {
			m.dispatch(n, "input", string(r[:len(r)-1]))
		}
	case tea.KeyEnter:
		m.dispatch(n, "keydown", "Enter")
	default:
		return false
	}
	return true
}

func (m *Model) dispatch(n *memhost.Node, event, data string) {
	invoked := m.doc.Dispatch(n, memhost.Event{Type: event, Data: data})
	m.status = fmt.Sprintf("%s on <%s>: %d handler(s)", event, n.Tag(), invoked)
	m.logger.Debug("event dispatched",
		"event", event,
		"node", n.ID(),
		"handlers", invoked)
}

// Frame draws the tree with the current focus.
func (m *Model) Frame() string {
	return m.renderer.Render(m.container, m.Focused())
}

func (m *Model) View() string {
	styles := m.renderer.Styles()
	var b strings.Builder
	if m.title != "" {
		b.WriteString(styles.Title.Render(m.title))
		b.WriteString("\n\n")
	}
	b.WriteString(m.Frame())
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Run runs m as a full-screen program until the user quits or ctx ends.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Play feeds msgs to m without a terminal and writes the frame after each
// key. It stops early when a key quits.
func Play(m *Model, msgs []tea.KeyMsg, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", m.Frame()); err != nil {
		return err
	}
	for _, msg := range msgs {
		_, cmd := m.Update(msg)
		if cmd != nil {
			if _, quit := cmd().(tea.QuitMsg); quit {
				_, err := fmt.Fprintf(w, "# %s: quit\n", msg)
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n%s\n\n", msg, m.Frame()); err != nil {
			return err
		}
	}
	return nil
}
