package memhost

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// TextTag is the tag reported by text nodes.
const TextTag = "#text"

// Node is one node of the in-memory host tree.
type Node struct {
	id        uint64
	tag       string
	attrs     map[string]any
	listeners map[string][]any
	parent    *Node
	children  []*Node
}

// ID returns the node's document-unique identifier.
func (n *Node) ID() uint64 { return n.id }

// Tag returns the node's tag, or TextTag for text nodes.
func (n *Node) Tag() string { return n.tag }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.tag == TextTag }

// Parent returns the parent node, or nil when n is detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Attr returns an attribute value.
func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs returns a copy of all attributes.
func (n *Node) Attrs() map[string]any { return maps.Clone(n.attrs) }

// Listeners returns the number of handlers registered for event.
func (n *Node) Listeners(event string) int { return len(n.listeners[event]) }

// Events returns the sorted names of events with at least one handler.
func (n *Node) Events() []string {
	events := make([]string, 0, len(n.listeners))
	for ev, hs := range n.listeners {
		if len(hs) > 0 {
			events = append(events, ev)
		}
	}
	slices.Sort(events)
	return events
}

// Value returns the text of a text node.
func (n *Node) Value() string {
	v, ok := n.attrs[vdom.NodeValueKey]
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

func (n *Node) String() string {
	if n.IsText() {
		return fmt.Sprintf("#%d %q", n.id, n.Value())
	}
	return fmt.Sprintf("#%d <%s>", n.id, n.tag)
}

// Stats counts the host operations applied to a Document.
type Stats struct {
	Created         int
	Appended        int
	Removed         int
	Replaced        int
	AttrSets        int
	AttrClears      int
	ListenerAdds    int
	ListenerRemoves int
}

// Structural returns the number of operations that changed tree shape.
func (s Stats) Structural() int {
	return s.Created + s.Appended + s.Removed + s.Replaced
}

// Document owns a set of nodes and implements vdom.Host. It is not safe for
// concurrent use.
type Document struct {
	nextID uint64
	nodes  map[uint64]*Node
	stats  Stats
}

var _ vdom.Host = (*Document)(nil)

// New creates an empty document.
func New() *Document {
	return &Document{nodes: make(map[uint64]*Node)}
}

func (d *Document) newNode(tag string) *Node {
	d.nextID++
	n := &Node{
		id:        d.nextID,
		tag:       tag,
		attrs:     make(map[string]any),
		listeners: make(map[string][]any),
	}
	d.nodes[n.id] = n
	return n
}

// NewContainer creates a detached node to render into. It is not counted in
// Stats.
func (d *Document) NewContainer(tag string) *Node {
	return d.newNode(tag)
}

// NodeByID looks up a live node.
func (d *Document) NodeByID(id uint64) *Node {
	return d.nodes[id]
}

// Len returns the number of live nodes, containers included.
func (d *Document) Len() int { return len(d.nodes) }

// Stats returns the operation counters.
func (d *Document) Stats() Stats { return d.stats }

// ResetStats zeroes the operation counters.
func (d *Document) ResetStats() { d.stats = Stats{} }

// CreateElement implements vdom.Host.
func (d *Document) CreateElement(tag string) vdom.Node {
	d.stats.Created++
	return d.newNode(tag)
}

// CreateText implements vdom.Host.
func (d *Document) CreateText() vdom.Node {
	d.stats.Created++
	return d.newNode(TextTag)
}

// AppendChild implements vdom.Host. A child that already has a parent is
// moved.
func (d *Document) AppendChild(parent, child vdom.Node) {
	p, c := mustNode(parent), mustNode(child)
	d.stats.Appended++
	if c.parent != nil {
		c.parent.removeChild(c)
	}
	c.parent = p
	p.children = append(p.children, c)
}

// RemoveChild implements vdom.Host. The removed subtree is forgotten: its
// IDs no longer resolve through NodeByID.
func (d *Document) RemoveChild(parent, child vdom.Node) {
	p, c := mustNode(parent), mustNode(child)
	if c.parent != p {
		panic(fmt.Sprintf("memhost: %v is not a child of %v", c, p))
	}
	d.stats.Removed++
	p.removeChild(c)
	c.parent = nil
	d.forget(c)
}

// ReplaceChild implements vdom.Host.
func (d *Document) ReplaceChild(parent, newChild, oldChild vdom.Node) {
	p, nc, oc := mustNode(parent), mustNode(newChild), mustNode(oldChild)
	i := slices.Index(p.children, oc)
	if i < 0 {
		panic(fmt.Sprintf("memhost: %v is not a child of %v", oc, p))
	}
	d.stats.Replaced++
	if nc.parent != nil {
		nc.parent.removeChild(nc)
		i = slices.Index(p.children, oc)
	}
	p.children[i] = nc
	nc.parent = p
	oc.parent = nil
	d.forget(oc)
}

// Parent implements vdom.Host.
func (d *Document) Parent(n vdom.Node) vdom.Node {
	p := mustNode(n).parent
	if p == nil {
		return nil
	}
	return p
}

// SetAttribute implements vdom.Host.
func (d *Document) SetAttribute(n vdom.Node, name string, value any) {
	d.stats.AttrSets++
	mustNode(n).attrs[name] = value
}

// ClearAttribute implements vdom.Host.
func (d *Document) ClearAttribute(n vdom.Node, name string) {
	d.stats.AttrClears++
	delete(mustNode(n).attrs, name)
}

// AddListener implements vdom.Host.
func (d *Document) AddListener(n vdom.Node, event string, handler any) {
	d.stats.ListenerAdds++
	node := mustNode(n)
	node.listeners[event] = append(node.listeners[event], handler)
}

// RemoveListener implements vdom.Host. It removes the first registered
// handler that is the same as handler.
func (d *Document) RemoveListener(n vdom.Node, event string, handler any) {
	d.stats.ListenerRemoves++
	node := mustNode(n)
	hs := node.listeners[event]
	for i, h := range hs {
		if sameHandler(h, handler) {
			node.listeners[event] = slices.Delete(hs, i, i+1)
			break
		}
	}
	if len(node.listeners[event]) == 0 {
		delete(node.listeners, event)
	}
}

func (d *Document) forget(n *Node) {
	delete(d.nodes, n.id)
	for _, c := range n.children {
		d.forget(c)
	}
}

func (n *Node) removeChild(c *Node) {
	if i := slices.Index(n.children, c); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

func mustNode(n vdom.Node) *Node {
	node, ok := n.(*Node)
	if !ok || node == nil {
		panic(fmt.Sprintf("memhost: foreign node %T", n))
	}
	return node
}

// sameHandler compares functions by code pointer and everything else with ==.
func sameHandler(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
