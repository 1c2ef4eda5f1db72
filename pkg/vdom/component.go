package vdom

import "maps"

// State is a component's local state. SetState replaces it with a merged
// copy, so a State value obtained earlier is never mutated by the runtime.
type State map[string]any

// Component is the runtime behind a composite element. Implementations embed
// Base, which supplies props and state storage, SetState, and no-op
// lifecycle hooks; they only need to implement Render.
type Component interface {
	// Render returns exactly one element describing the component's subtree.
	Render() *Element

	// WillMount fires before the component's host node is attached.
	WillMount()
	// DidMount fires after the component's host node is attached.
	DidMount()
	// WillReceiveProps fires during construction, before props are stored.
	WillReceiveProps(next Props)
	// WillUpdate fires before a state-triggered re-render.
	WillUpdate(nextProps Props, nextState State)
	// DidUpdate fires after a state-triggered re-render. prevProps carries
	// the current props: props are not versioned across a state update.
	DidUpdate(prevProps Props, prevState State)
	// ShouldUpdate gates the re-render after SetState.
	ShouldUpdate() bool
	// WillUnmount fires before the component's host node is removed.
	WillUnmount()

	base() *Base
}

// Base holds the props and state of a component and provides the default
// lifecycle hooks.
type Base struct {
	props     Props
	state     State
	prevState State
	instance  *CompositeInstance
}

// Props returns the props the component was last reconciled with.
func (b *Base) Props() Props { return b.props }

// State returns the current state.
func (b *Base) State() State { return b.state }

// PrevState returns the state as it was before the last SetState.
func (b *Base) PrevState() State { return b.prevState }

// Instance returns the composite instance created together with this
// component. The reference never changes, even after the instance has been
// replaced in the tree.
func (b *Base) Instance() *CompositeInstance { return b.instance }

// InitState seeds the state without triggering an update. It is meant for
// constructors.
func (b *Base) InitState(s State) {
	b.state = maps.Clone(s)
	if b.state == nil {
		b.state = State{}
	}
}

// SetState shallow-merges partial into the state and, unless ShouldUpdate
// returns false, re-reconciles this component's subtree before returning.
func (b *Base) SetState(partial State) {
	b.prevState = cloneState(b.state)
	next := cloneState(b.state)
	maps.Copy(next, partial)
	b.state = next

	inst := b.instance
	if inst == nil {
		return
	}
	if !inst.component.ShouldUpdate() {
		inst.rec.updateSkipped(inst)
		return
	}
	inst.rec.update(inst)
}

func (b *Base) WillMount()              {}
func (b *Base) DidMount()               {}
func (b *Base) WillReceiveProps(Props)  {}
func (b *Base) WillUpdate(Props, State) {}
func (b *Base) DidUpdate(Props, State)  {}
func (b *Base) ShouldUpdate() bool      { return true }
func (b *Base) WillUnmount()            {}
func (b *Base) base() *Base             { return b }

func cloneState(s State) State {
	if s == nil {
		return State{}
	}
	return maps.Clone(s)
}

// construct runs the constructed phase of a component's lifecycle.
func construct(t *ComponentType, props Props, inst *CompositeInstance) Component {
	c := t.ctor(props)
	c.WillReceiveProps(props)

	b := c.base()
	b.props = props
	if b.state == nil {
		b.state = State{}
	}
	if b.prevState == nil {
		b.prevState = State{}
	}
	b.instance = inst
	return c
}

// funcComponent adapts a render function to Component.
type funcComponent struct {
	Base
	render func(Props) *Element
}

func (f *funcComponent) Render() *Element { return f.render(f.Props()) }

// Func defines a stateless component from a render function.
func Func(name string, render func(Props) *Element) *ComponentType {
	return DefineComponent(name, func(Props) Component {
		return &funcComponent{render: render}
	})
}
