package vdom

import (
	"log/slog"
	"time"
)

// Observer receives notifications about reconciliation work. Calls happen
// synchronously on the rendering goroutine, nested in the order the work
// happens: a SetState issued from DidMount produces UpdateStarted and
// UpdateFinished between the RenderStarted and RenderFinished of the pass
// that mounted the component.
type Observer interface {
	RenderStarted(container Node)
	RenderFinished(container Node, elapsed time.Duration)
	Reconciled(op Op, typ Type)
	UpdateStarted(c *ComponentType)
	UpdateFinished(c *ComponentType, elapsed time.Duration)
	UpdateSkipped(c *ComponentType)
}

// NopObserver ignores every notification. Embed it to implement only some
// of the Observer methods.
type NopObserver struct{}

func (NopObserver) RenderStarted(Node)                           {}
func (NopObserver) RenderFinished(Node, time.Duration)           {}
func (NopObserver) Reconciled(Op, Type)                          {}
func (NopObserver) UpdateStarted(*ComponentType)                 {}
func (NopObserver) UpdateFinished(*ComponentType, time.Duration) {}
func (NopObserver) UpdateSkipped(*ComponentType)                 {}

// Observers fans notifications out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	list := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return NopObserver{}
	case 1:
		return list[0]
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) RenderStarted(container Node) {
	for _, o := range m {
		o.RenderStarted(container)
	}
}

func (m multiObserver) RenderFinished(container Node, elapsed time.Duration) {
	for _, o := range m {
		o.RenderFinished(container, elapsed)
	}
}

func (m multiObserver) Reconciled(op Op, typ Type) {
	for _, o := range m {
		o.Reconciled(op, typ)
	}
}

func (m multiObserver) UpdateStarted(c *ComponentType) {
	for _, o := range m {
		o.UpdateStarted(c)
	}
}

func (m multiObserver) UpdateFinished(c *ComponentType, elapsed time.Duration) {
	for _, o := range m {
		o.UpdateFinished(c, elapsed)
	}
}

func (m multiObserver) UpdateSkipped(c *ComponentType) {
	for _, o := range m {
		o.UpdateSkipped(c)
	}
}

// LogObserver logs every reconcile transition at debug level.
type LogObserver struct {
	NopObserver
	Logger *slog.Logger
}

// NewLogObserver creates a LogObserver writing to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) Reconciled(op Op, typ Type) {
	o.Logger.Debug("vdom: reconciled", "op", op.String(), "type", typ.String())
}

func (o *LogObserver) UpdateSkipped(c *ComponentType) {
	o.Logger.Debug("vdom: update skipped", "component", c.Name())
}
