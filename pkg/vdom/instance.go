package vdom

import "fmt"

// Instance is the persistent record of what was last rendered for one
// element. It is either a *HostInstance or a *CompositeInstance.
type Instance interface {
	// HostNode returns the host node this instance resolves to.
	HostNode() Node
	// Element returns the element this instance was last reconciled against.
	Element() *Element
	isInstance()
}

// HostInstance mirrors a host-tag element and owns its host node.
type HostInstance struct {
	hostNode       Node
	element        *Element
	childInstances []Instance
}

func (i *HostInstance) HostNode() Node    { return i.hostNode }
func (i *HostInstance) Element() *Element { return i.element }
func (*HostInstance) isInstance()         {}

// Children returns the child instances in host order. The slice must not be
// modified.
func (i *HostInstance) Children() []Instance { return i.childInstances }

// CompositeInstance mirrors a component element. It never creates a host
// node of its own; it adopts the node of the single instance it wraps.
type CompositeInstance struct {
	element       *Element
	childInstance Instance
	component     Component
	rec           *reconciler
}

func (i *CompositeInstance) Element() *Element { return i.element }
func (*CompositeInstance) isInstance()         {}

// HostNode resolves through the child chain, so a nested component that
// replaced its own subtree is still seen through its ancestors.
func (i *CompositeInstance) HostNode() Node {
	if i.childInstance == nil {
		return nil
	}
	return i.childInstance.HostNode()
}

// Child returns the instance of the component's rendered element.
func (i *CompositeInstance) Child() Instance { return i.childInstance }

// Component returns the component backing this instance.
func (i *CompositeInstance) Component() Component { return i.component }

// instantiate builds a detached instance subtree for el.
func (r *reconciler) instantiate(el *Element) Instance {
	switch t := el.Type.(type) {
	case Tag:
		var node Node
		if t == TextTag {
			node = r.host.CreateText()
		} else {
			node = r.host.CreateElement(string(t))
		}
		r.patchProps(node, nil, el.Props)

		children := el.Children()
		childInstances := make([]Instance, 0, len(children))
		for _, child := range children {
			ci := r.instantiate(child)
			childInstances = append(childInstances, ci)
			r.host.AppendChild(node, ci.HostNode())
		}
		return &HostInstance{hostNode: node, element: el, childInstances: childInstances}

	case *ComponentType:
		inst := &CompositeInstance{element: el, rec: r}
		inst.component = construct(t, el.Props, inst)

		inst.childInstance = r.instantiate(render(inst.component, t))
		return inst

	default:
		panic(fmt.Sprintf("vdom: unsupported element type %T", el.Type))
	}
}

// render calls Render and rejects a nil result, which would leave the
// instance without a host node.
func render(c Component, t *ComponentType) *Element {
	el := c.Render()
	if el == nil {
		panic(fmt.Sprintf("vdom: component %s rendered nil", t.Name()))
	}
	return el
}

// Walk visits inst and its descendants depth-first. Returning false from fn
// skips the instance's descendants.
func Walk(inst Instance, fn func(inst Instance, depth int) bool) {
	walk(inst, 0, fn)
}

func walk(inst Instance, depth int, fn func(Instance, int) bool) {
	if inst == nil || !fn(inst, depth) {
		return
	}
	switch v := inst.(type) {
	case *HostInstance:
		for _, child := range v.childInstances {
			walk(child, depth+1, fn)
		}
	case *CompositeInstance:
		walk(v.childInstance, depth+1, fn)
	}
}
