// Package vdom provides the virtual element model and the reconciliation
// engine for vtree.
//
// A virtual element is an immutable description of the desired tree shape.
// Rendering turns elements into a persistent instance tree whose leaves own
// nodes in an externally owned host tree (an in-memory document, a terminal
// screen, a remote browser). Each later render compares the previous instance
// tree with the new elements and applies only the host mutations needed to
// make the two agree.
//
// # Elements
//
// Elements are built with CreateElement or the factory helpers:
//
//	Div(Class("card"),
//	    H1("Title"),
//	    Button(OnClick(handler), "Click Me!"),
//	)
//
// Children that are not elements are wrapped into text elements (TextTag)
// carrying the value under the "nodeValue" property.
//
// # Reconciliation
//
// Root.Render reconciles one container at a time. Children are matched by
// position only: the element at index i is always compared against the
// instance at index i. A type change at any position discards the old subtree
// and builds a new one in its place.
//
// Property updates always detach every previous listener and clear every
// previous attribute before attaching and setting the next ones. Hosts see
// the full pass even when nothing changed.
//
// # Components
//
// Stateful components embed Base, implement Render, and override the
// lifecycle hooks they care about:
//
//	type Counter struct {
//	    vdom.Base
//	}
//
//	func (c *Counter) Render() *vdom.Element {
//	    return vdom.Div(vdom.Textf("Counter: %d", c.State()["count"]))
//	}
//
//	var CounterType = vdom.DefineComponent("Counter", func(p vdom.Props) vdom.Component {
//	    c := &Counter{}
//	    c.InitState(vdom.State{"count": 0})
//	    return c
//	})
//
// SetState merges a partial state and, unless ShouldUpdate vetoes it,
// synchronously re-reconciles only the component's own subtree.
package vdom
