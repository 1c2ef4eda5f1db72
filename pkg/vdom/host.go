package vdom

// Node is an opaque handle to a node of the host tree. Handles must be
// comparable because containers key the root registry.
type Node any

// Host is the set of primitive host-tree operations the reconciler needs.
// The reconciler never inspects nodes itself; tags, attribute values and
// listener handlers are passed through unchanged.
type Host interface {
	// CreateElement creates a detached node of the given kind.
	CreateElement(tag string) Node
	// CreateText creates a detached text node. Its content arrives through
	// SetAttribute with NodeValueKey.
	CreateText() Node

	AppendChild(parent, child Node)
	RemoveChild(parent, child Node)
	// ReplaceChild swaps oldChild for newChild at the same position.
	ReplaceChild(parent, newChild, oldChild Node)
	// Parent returns the node's parent, or nil when it is detached.
	Parent(n Node) Node

	SetAttribute(n Node, name string, value any)
	ClearAttribute(n Node, name string)

	// AddListener and RemoveListener receive the event name derived with
	// ListenerEvent, not the property name.
	AddListener(n Node, event string, handler any)
	RemoveListener(n Node, event string, handler any)
}
