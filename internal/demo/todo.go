package demo

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Item is one todo entry.
type Item struct {
	Text string
	Done bool
}

// Todo is a list with an input. Typing updates the draft; enter or the add
// button appends it. Each item can be toggled or deleted.
type Todo struct {
	vdom.Base
	logger *slog.Logger
}

// TodoType is the Todo component. Props: logger (*slog.Logger), title
// (string) and items ([]Item) for the initial list.
var TodoType = vdom.DefineComponent("Todo", func(props vdom.Props) vdom.Component {
	c := &Todo{logger: loggerFrom(props).With("component", "Todo")}
	items, _ := props["items"].([]Item)
	c.InitState(vdom.State{"draft": "", "items": slices.Clone(items)})
	return c
})

func (c *Todo) items() []Item { return c.State()["items"].([]Item) }
func (c *Todo) draft() string { return c.State()["draft"].(string) }

// Input handles input events on the text box.
func (c *Todo) Input(e memhost.Event) {
	c.SetState(vdom.State{"draft": e.Data})
}

// KeyDown adds the draft on Enter.
func (c *Todo) KeyDown(e memhost.Event) {
	if e.Data == "Enter" {
		c.Add()
	}
}

// Add appends the draft unless it is blank.
func (c *Todo) Add() {
	text := strings.TrimSpace(c.draft())
	if text == "" {
		return
	}
	c.logger.Debug("item added", "text", text)
	c.SetState(vdom.State{
		"draft": "",
		"items": append(slices.Clone(c.items()), Item{Text: text}),
	})
}

// Toggle flips the done flag of item i.
func (c *Todo) Toggle(i int) {
	items := slices.Clone(c.items())
	items[i].Done = !items[i].Done
	c.SetState(vdom.State{"items": items})
}

// Remove deletes item i.
func (c *Todo) Remove(i int) {
	c.SetState(vdom.State{"items": slices.Delete(slices.Clone(c.items()), i, i+1)})
}

// ClearDone deletes every finished item.
func (c *Todo) ClearDone() {
	c.SetState(vdom.State{"items": slices.DeleteFunc(slices.Clone(c.items()), func(it Item) bool {
		return it.Done
	})})
}

func (c *Todo) Render() *vdom.Element {
	items := c.items()
	left := 0
	for _, it := range items {
		if !it.Done {
			left++
		}
	}
	title, _ := c.Props()["title"].(string)

	return vdom.Div(
		vdom.Class("todo"),
		vdom.If(title != "", vdom.H1(title)),
		vdom.Row(
			vdom.Input(
				vdom.Value(c.draft()),
				vdom.Placeholder("What needs doing?"),
				vdom.OnInput(c.Input),
				vdom.OnKeyDown(c.KeyDown),
			),
			vdom.Button(vdom.OnClick(c.Add), "Add"),
		),
		vdom.Ul(vdom.Range(items, func(it Item, i int) *vdom.Element {
			mark := "·"
			if it.Done {
				mark = "x"
			}
			return vdom.Li(
				vdom.ClassIf(it.Done, "done"),
				vdom.Row(
					vdom.Button(vdom.OnClick(func() { c.Toggle(i) }), mark),
					vdom.Span(it.Text),
					vdom.Button(vdom.OnClick(func() { c.Remove(i) }), "delete"),
				),
			)
		})),
		vdom.P(
			fmt.Sprintf("%d left", left),
			vdom.If(left < len(items), vdom.Button(vdom.OnClick(c.ClearDone), "Clear done")),
		),
	)
}
