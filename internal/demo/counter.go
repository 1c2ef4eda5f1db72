package demo

import (
	"log/slog"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Counter greets, shows a count and increments it on click. Every click
// also flips the greeted flag, shown as a trailing greeting.
type Counter struct {
	vdom.Base
	logger *slog.Logger
}

// CounterType is the Counter component. Props: logger (*slog.Logger).
var CounterType = vdom.DefineComponent("Counter", func(props vdom.Props) vdom.Component {
	c := &Counter{logger: loggerFrom(props).With("component", "Counter")}
	c.InitState(vdom.State{"count": 0, "greeted": false})
	return c
})

// Increment is the button's click handler.
func (c *Counter) Increment() {
	s := c.State()
	c.SetState(vdom.State{
		"count":   s["count"].(int) + 1,
		"greeted": !s["greeted"].(bool),
	})
}

func (c *Counter) Render() *vdom.Element {
	s := c.State()
	return vdom.Div(
		"Hello World!",
		vdom.Div(vdom.Textf("Counter: %d", s["count"].(int))),
		vdom.Button(vdom.OnClick(c.Increment), "Click Me!"),
		vdom.If(s["greeted"].(bool), vdom.Span(vdom.Color("#FFD700"), " Hello again!")),
	)
}

func (c *Counter) WillMount()   { c.logger.Debug("will mount") }
func (c *Counter) DidMount()    { c.logger.Debug("did mount") }
func (c *Counter) WillUnmount() { c.logger.Debug("will unmount") }

func (c *Counter) WillReceiveProps(next vdom.Props) {
	c.logger.Debug("will receive props", "props", len(next))
}

func (c *Counter) ShouldUpdate() bool {
	c.logger.Debug("should update")
	return true
}

func (c *Counter) WillUpdate(_ vdom.Props, next vdom.State) {
	c.logger.Debug("will update", "count", next["count"])
}

func (c *Counter) DidUpdate(_ vdom.Props, prev vdom.State) {
	c.logger.Debug("did update", "previous", prev["count"])
}
