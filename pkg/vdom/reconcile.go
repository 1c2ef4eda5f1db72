package vdom

import (
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Op names the transition reconcile applied to one position of the tree.
type Op uint8

const (
	OpCreate   Op = iota + 1 // Fresh subtree appended
	OpRemove                 // Subtree removed
	OpReplace                // Subtree swapped for one of a different type
	OpPatch                  // Host node patched in place
	OpRerender               // Component re-rendered in place
)

// String returns the string representation of the Op.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpReplace:
		return "replace"
	case OpPatch:
		return "patch"
	case OpRerender:
		return "rerender"
	default:
		return "unknown"
	}
}

// reconciler carries the collaborators of one Root through the recursion.
type reconciler struct {
	host     Host
	observer Observer
	logger   *slog.Logger
}

// reconcile advances prev to match next under parent and returns the
// instance now occupying that position, or nil when it was removed.
func (r *reconciler) reconcile(parent Node, prev Instance, next *Element) Instance {
	switch {
	case prev == nil:
		if next == nil {
			return nil
		}
		inst := r.instantiate(next)
		comp := componentOf(inst)
		if comp != nil {
			comp.WillMount()
		}
		r.host.AppendChild(parent, inst.HostNode())
		if comp != nil {
			comp.DidMount()
		}
		r.observer.Reconciled(OpCreate, next.Type)
		return inst

	case next == nil:
		if comp := componentOf(prev); comp != nil {
			comp.WillUnmount()
		}
		r.host.RemoveChild(parent, prev.HostNode())
		r.observer.Reconciled(OpRemove, prev.Element().Type)
		return nil

	case prev.Element().Type != next.Type:
		// The discarded subtree does not get WillUnmount here, only on the
		// removal path above.
		inst := r.instantiate(next)
		r.host.ReplaceChild(parent, inst.HostNode(), prev.HostNode())
		r.observer.Reconciled(OpReplace, next.Type)
		return inst
	}

	switch inst := prev.(type) {
	case *HostInstance:
		r.patchProps(inst.hostNode, inst.element.Props, next.Props)
		inst.childInstances = r.reconcileChildren(inst, next)
		inst.element = next
		r.observer.Reconciled(OpPatch, next.Type)
		return inst

	case *CompositeInstance:
		inst.component.base().props = next.Props
		rendered := render(inst.component, next.Type.(*ComponentType))
		inst.childInstance = r.reconcile(parent, inst.childInstance, rendered)
		inst.element = next
		r.observer.Reconciled(OpRerender, next.Type)
		return inst
	}
	return prev
}

// reconcileChildren pairs old instances and new elements by index.
func (r *reconciler) reconcileChildren(inst *HostInstance, next *Element) []Instance {
	old := inst.childInstances
	elems := next.Children()
	n := max(len(old), len(elems))

	out := make([]Instance, 0, len(elems))
	for i := 0; i < n; i++ {
		var prevChild Instance
		var nextChild *Element
		if i < len(old) {
			prevChild = old[i]
		}
		if i < len(elems) {
			nextChild = elems[i]
		}
		if child := r.reconcile(inst.hostNode, prevChild, nextChild); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// patchProps detaches and clears everything in prev, then attaches and sets
// everything in next. Values are never compared.
func (r *reconciler) patchProps(node Node, prev, next Props) {
	prevNames := slices.Sorted(maps.Keys(prev))
	nextNames := slices.Sorted(maps.Keys(next))

	for _, name := range prevNames {
		if IsListener(name) {
			r.host.RemoveListener(node, ListenerEvent(name), prev[name])
		}
	}
	for _, name := range prevNames {
		if isAttribute(name) {
			r.host.ClearAttribute(node, name)
		}
	}
	for _, name := range nextNames {
		if IsListener(name) {
			r.host.AddListener(node, ListenerEvent(name), next[name])
		}
	}
	for _, name := range nextNames {
		if isAttribute(name) {
			r.host.SetAttribute(node, name, next[name])
		}
	}
}

// update performs the localized re-render triggered by SetState.
func (r *reconciler) update(inst *CompositeInstance) {
	t := inst.element.Type.(*ComponentType)
	parent := r.parentOf(inst)
	if parent == nil {
		r.logger.Debug("vdom: skipping update of detached component", "component", t.Name())
		return
	}

	start := time.Now()
	r.observer.UpdateStarted(t)
	// A panicking Render still closes the update so observers stay balanced.
	defer func() {
		r.observer.UpdateFinished(t, time.Since(start))
	}()

	comp := inst.component
	b := comp.base()
	comp.WillUpdate(b.props, b.state)
	r.reconcile(parent, inst, inst.element)
	comp.DidUpdate(b.props, b.prevState)

	r.logger.Debug("vdom: component updated", "component", t.Name(), "duration", time.Since(start))
}

func (r *reconciler) updateSkipped(inst *CompositeInstance) {
	t := inst.element.Type.(*ComponentType)
	r.observer.UpdateSkipped(t)
	r.logger.Debug("vdom: update vetoed by ShouldUpdate", "component", t.Name())
}

func (r *reconciler) parentOf(inst *CompositeInstance) Node {
	node := inst.HostNode()
	if node == nil {
		return nil
	}
	return r.host.Parent(node)
}

func componentOf(inst Instance) Component {
	if c, ok := inst.(*CompositeInstance); ok {
		return c.component
	}
	return nil
}
