package vdom

import (
	"fmt"
	"slices"
)

// fakeNode is a minimal host node for white-box tests.
type fakeNode struct {
	id       int
	tag      string
	parent   *fakeNode
	children []*fakeNode
	attrs    map[string]any
}

// recordingHost logs every host operation as a string.
type recordingHost struct {
	next int
	ops  []string
}

func (h *recordingHost) node(tag string) *fakeNode {
	h.next++
	return &fakeNode{id: h.next, tag: tag, attrs: map[string]any{}}
}

func (h *recordingHost) container() *fakeNode { return h.node("container") }

func (h *recordingHost) reset() { h.ops = nil }

func (h *recordingHost) log(format string, args ...any) {
	h.ops = append(h.ops, fmt.Sprintf(format, args...))
}

func (h *recordingHost) CreateElement(tag string) Node {
	n := h.node(tag)
	h.log("create %s#%d", tag, n.id)
	return n
}

func (h *recordingHost) CreateText() Node {
	n := h.node("TEXT")
	h.log("text #%d", n.id)
	return n
}

func (h *recordingHost) AppendChild(parent, child Node) {
	p, c := parent.(*fakeNode), child.(*fakeNode)
	c.parent = p
	p.children = append(p.children, c)
	h.log("append #%d>#%d", p.id, c.id)
}

func (h *recordingHost) RemoveChild(parent, child Node) {
	p, c := parent.(*fakeNode), child.(*fakeNode)
	p.children = slices.DeleteFunc(p.children, func(n *fakeNode) bool { return n == c })
	c.parent = nil
	h.log("remove #%d>#%d", p.id, c.id)
}

func (h *recordingHost) ReplaceChild(parent, newChild, oldChild Node) {
	p, nc, oc := parent.(*fakeNode), newChild.(*fakeNode), oldChild.(*fakeNode)
	i := slices.Index(p.children, oc)
	p.children[i] = nc
	nc.parent, oc.parent = p, nil
	h.log("replace #%d>#%d with #%d", p.id, oc.id, nc.id)
}

func (h *recordingHost) Parent(n Node) Node {
	if p := n.(*fakeNode).parent; p != nil {
		return p
	}
	return nil
}

func (h *recordingHost) SetAttribute(n Node, name string, value any) {
	n.(*fakeNode).attrs[name] = value
	h.log("set #%d %s=%v", n.(*fakeNode).id, name, value)
}

func (h *recordingHost) ClearAttribute(n Node, name string) {
	delete(n.(*fakeNode).attrs, name)
	h.log("clear #%d %s", n.(*fakeNode).id, name)
}

func (h *recordingHost) AddListener(n Node, event string, _ any) {
	h.log("listen #%d %s", n.(*fakeNode).id, event)
}

func (h *recordingHost) RemoveListener(n Node, event string, _ any) {
	h.log("unlisten #%d %s", n.(*fakeNode).id, event)
}
