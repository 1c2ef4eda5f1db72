package remote

import (
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Host is the server side of a remote tree. It applies every operation to
// an in-memory document, which keeps listeners and answers Parent, and
// records the operation so it can be shipped to a replica.
type Host struct {
	doc     *memhost.Document
	pending []protocol.HostOp
}

var _ vdom.Host = (*Host)(nil)

// NewHost creates a recording host over doc.
func NewHost(doc *memhost.Document) *Host {
	return &Host{doc: doc}
}

// Document returns the server-side document.
func (h *Host) Document() *memhost.Document { return h.doc }

// Pending returns the number of recorded operations not yet flushed.
func (h *Host) Pending() int { return len(h.pending) }

// Flush returns the recorded operations and starts a new batch.
func (h *Host) Flush() []protocol.HostOp {
	ops := h.pending
	h.pending = nil
	return ops
}

func (h *Host) record(op protocol.HostOp) {
	h.pending = append(h.pending, op)
}

func id(n vdom.Node) uint64 {
	return n.(*memhost.Node).ID()
}

func (h *Host) CreateElement(tag string) vdom.Node {
	n := h.doc.CreateElement(tag)
	h.record(protocol.HostOp{Kind: protocol.OpCreateElement, Node: id(n), Name: tag})
	return n
}

func (h *Host) CreateText() vdom.Node {
	n := h.doc.CreateText()
	h.record(protocol.HostOp{Kind: protocol.OpCreateText, Node: id(n)})
	return n
}

func (h *Host) AppendChild(parent, child vdom.Node) {
	h.doc.AppendChild(parent, child)
	h.record(protocol.HostOp{Kind: protocol.OpAppendChild, Parent: id(parent), Node: id(child)})
}

func (h *Host) RemoveChild(parent, child vdom.Node) {
	h.doc.RemoveChild(parent, child)
	h.record(protocol.HostOp{Kind: protocol.OpRemoveChild, Parent: id(parent), Node: id(child)})
}

func (h *Host) ReplaceChild(parent, newChild, oldChild vdom.Node) {
	h.doc.ReplaceChild(parent, newChild, oldChild)
	h.record(protocol.HostOp{
		Kind:   protocol.OpReplaceChild,
		Parent: id(parent),
		Node:   id(newChild),
		Old:    id(oldChild),
	})
}

func (h *Host) Parent(n vdom.Node) vdom.Node {
	return h.doc.Parent(n)
}

func (h *Host) SetAttribute(n vdom.Node, name string, value any) {
	h.doc.SetAttribute(n, name, value)
	h.record(protocol.HostOp{Kind: protocol.OpSetAttribute, Node: id(n), Name: name, Value: value})
}

func (h *Host) ClearAttribute(n vdom.Node, name string) {
	h.doc.ClearAttribute(n, name)
	h.record(protocol.HostOp{Kind: protocol.OpClearAttribute, Node: id(n), Name: name})
}

// AddListener keeps the handler on the server. The replica only learns the
// event name.
func (h *Host) AddListener(n vdom.Node, event string, handler any) {
	h.doc.AddListener(n, event, handler)
	h.record(protocol.HostOp{Kind: protocol.OpAddListener, Node: id(n), Name: event})
}

func (h *Host) RemoveListener(n vdom.Node, event string, handler any) {
	h.doc.RemoveListener(n, event, handler)
	h.record(protocol.HostOp{Kind: protocol.OpRemoveListener, Node: id(n), Name: event})
}
