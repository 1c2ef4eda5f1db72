package memhost

import "slices"

// Event is delivered to listeners by Dispatch.
type Event struct {
	Type   string
	Target *Node
	// Current is the node whose listener is running.
	Current *Node
	// Data carries event-specific input, such as a key name or input value.
	Data string
}

// Dispatch delivers ev to the listeners of target and then of each ancestor
// in turn, like a bubbling DOM event. It returns the number of handlers
// invoked. Handlers may re-render; the listener list of each node is
// snapshotted before its handlers run.
func (d *Document) Dispatch(target *Node, ev Event) int {
	ev.Target = target
	invoked := 0
	for n := target; n != nil; n = n.parent {
		handlers := slices.Clone(n.listeners[ev.Type])
		ev.Current = n
		for _, h := range handlers {
			if call(h, ev) {
				invoked++
			}
		}
	}
	return invoked
}

// DispatchByID is Dispatch addressed by node ID. It reports false when the
// node is unknown.
func (d *Document) DispatchByID(id uint64, ev Event) (int, bool) {
	n := d.nodes[id]
	if n == nil {
		return 0, false
	}
	return d.Dispatch(n, ev), true
}

func call(handler any, ev Event) bool {
	switch h := handler.(type) {
	case func():
		h()
	case func(Event):
		h(ev)
	default:
		return false
	}
	return true
}
