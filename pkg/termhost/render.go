package termhost

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vango-dev/vtree/pkg/memhost"
)

// Styles holds the lipgloss styles used to draw a tree.
type Styles struct {
	Title       lipgloss.Style
	Heading     lipgloss.Style
	Button      lipgloss.Style
	Focused     lipgloss.Style
	Disabled    lipgloss.Style
	Input       lipgloss.Style
	Placeholder lipgloss.Style
	Code        lipgloss.Style
	Rule        lipgloss.Style
	Status      lipgloss.Style
}

// DefaultStyles builds the default palette on r. A nil r uses the default
// lipgloss renderer.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		Heading: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),
		Button: r.NewStyle().
			Foreground(lipgloss.Color("#98FB98")),
		Focused: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
		Disabled:    r.NewStyle().Faint(true),
		Input:       r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		Placeholder: r.NewStyle().Foreground(lipgloss.Color("#666666")),
		Code:        r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		Rule:        r.NewStyle().Foreground(lipgloss.Color("#666666")),
		Status:      r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
	}
}

// Renderer draws a memhost tree as terminal text.
//
// Block tags (div, p, ul, li, ...) start a new line; text and inline tags
// flow on the current one. A row lays out all its children side by side and
// a column stacks them. Buttons render as [ label ] and inputs as
// [ value ]; the focused node is drawn as [>label<].
//
// The presentation attributes bold, color, background and border are
// applied to any element.
type Renderer struct {
	lg     *lipgloss.Renderer
	styles Styles
}

// NewRenderer creates a renderer on lg with the given styles. A nil lg uses
// the default lipgloss renderer.
func NewRenderer(lg *lipgloss.Renderer, styles Styles) *Renderer {
	if lg == nil {
		lg = lipgloss.DefaultRenderer()
	}
	return &Renderer{lg: lg, styles: styles}
}

// Styles returns the renderer's styles.
func (r *Renderer) Styles() Styles { return r.styles }

// Render draws the children of container. focus may be nil.
func (r *Renderer) Render(container, focus *memhost.Node) string {
	return r.children(container, focus)
}

var blockTags = map[string]bool{
	"div": true, "p": true, "section": true, "header": true, "footer": true,
	"h1": true, "h2": true, "h3": true, "pre": true, "ul": true, "ol": true,
	"li": true, "hr": true, "form": true, "row": true, "column": true,
}

func isBlock(n *memhost.Node) bool {
	return !n.IsText() && blockTags[n.Tag()]
}

func (r *Renderer) node(n, focus *memhost.Node) string {
	if n.IsText() {
		return n.Value()
	}

	var s string
	switch n.Tag() {
	case "button":
		s = r.button(n, n == focus)
	case "input", "textarea":
		s = r.input(n, n == focus)
	case "hr":
		s = r.styles.Rule.Render(strings.Repeat("─", 24))
	default:
		s = r.children(n, focus)
	}

	switch n.Tag() {
	case "h1", "h2", "h3":
		s = r.styles.Heading.Render(s)
	case "li":
		s = "• " + s
	case "strong":
		s = r.lg.NewStyle().Bold(true).Render(s)
	case "em":
		s = r.lg.NewStyle().Italic(true).Render(s)
	case "code":
		s = r.styles.Code.Render(s)
	}
	return r.decorate(n, s)
}

func (r *Renderer) children(n, focus *memhost.Node) string {
	kids := n.Children()
	if len(kids) == 0 {
		return ""
	}

	if n.Tag() == "row" {
		parts := make([]string, 0, 2*len(kids))
		for i, c := range kids {
			if i > 0 {
				parts = append(parts, " ")
			}
			parts = append(parts, r.node(c, focus))
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	stack := n.Tag() == "column"
	var lines, run []string
	flush := func() {
		if len(run) > 0 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, run...))
			run = nil
		}
	}
	for _, c := range kids {
		out := r.node(c, focus)
		if out == "" {
			continue
		}
		if stack || isBlock(c) {
			flush()
			lines = append(lines, out)
			continue
		}
		run = append(run, out)
	}
	flush()
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) button(n *memhost.Node, focused bool) string {
	label := memhost.TextContent(n)
	switch {
	case disabled(n):
		return r.styles.Disabled.Render("[ " + label + " ]")
	case focused:
		return r.styles.Focused.Render("[>" + label + "<]")
	default:
		return r.styles.Button.Render("[ " + label + " ]")
	}
}

func (r *Renderer) input(n *memhost.Node, focused bool) string {
	value := attrString(n, "value")
	switch {
	case focused:
		return r.styles.Focused.Render("[>" + value + "_<]")
	case value == "" && attrString(n, "placeholder") != "":
		return r.styles.Placeholder.Render("[ " + attrString(n, "placeholder") + " ]")
	default:
		return r.styles.Input.Render("[ " + value + " ]")
	}
}

// decorate applies presentation attributes.
func (r *Renderer) decorate(n *memhost.Node, s string) string {
	style := r.lg.NewStyle()
	styled := false
	if v, ok := n.Attr("bold"); ok && v == true {
		style = style.Bold(true)
		styled = true
	}
	if c := attrString(n, "color"); c != "" {
		style = style.Foreground(lipgloss.Color(c))
		styled = true
	}
	if c := attrString(n, "background"); c != "" {
		style = style.Background(lipgloss.Color(c))
		styled = true
	}
	if b, ok := borders[attrString(n, "border")]; ok {
		style = style.Border(b)
		styled = true
	}
	if !styled {
		return s
	}
	return style.Render(s)
}

var borders = map[string]lipgloss.Border{
	"normal":  lipgloss.NormalBorder(),
	"rounded": lipgloss.RoundedBorder(),
	"thick":   lipgloss.ThickBorder(),
	"double":  lipgloss.DoubleBorder(),
}

func attrString(n *memhost.Node, name string) string {
	v, ok := n.Attr(name)
	if !ok || v == nil {
		return ""
	}
	return memhost.FormatValue(v)
}

func disabled(n *memhost.Node) bool {
	v, ok := n.Attr("disabled")
	return ok && v == true
}
