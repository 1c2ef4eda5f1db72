package vtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Harness mounts elements into a fresh memhost document.
type Harness struct {
	t         testing.TB
	doc       *memhost.Document
	container *memhost.Node
	root      *vdom.Root
}

// New creates a harness with an empty container. Options are passed to
// vdom.NewRoot.
func New(t testing.TB, opts ...vdom.Option) *Harness {
	doc := memhost.New()
	return &Harness{
		t:         t,
		doc:       doc,
		container: doc.NewContainer("root"),
		root:      vdom.NewRoot(doc, opts...),
	}
}

// Mount is a shorthand for New(t, opts...).Render(el).
//
// Example:
//
//	h := vtest.Mount(t, vdom.Comp(counterType, nil))
//	h.Click(h.MustFind(memhost.ByTag("button")))
//	h.ExpectContains("Counter: 1")
func Mount(t testing.TB, el *vdom.Element, opts ...vdom.Option) *Harness {
	h := New(t, opts...)
	h.Render(el)
	return h
}

// Render reconciles el against the container.
func (h *Harness) Render(el *vdom.Element) vdom.Instance {
	return h.root.Render(el, h.container)
}

// Unmount removes the tree.
func (h *Harness) Unmount() bool { return h.root.Unmount(h.container) }

func (h *Harness) Document() *memhost.Document { return h.doc }
func (h *Harness) Container() *memhost.Node    { return h.container }
func (h *Harness) Root() *vdom.Root            { return h.root }

// Instance returns the top-level instance, or nil when nothing is mounted.
func (h *Harness) Instance() vdom.Instance { return h.root.Instance(h.container) }

// HTML returns the markup of the mounted tree, without the container.
func (h *Harness) HTML() string {
	var b strings.Builder
	for _, c := range h.container.Children() {
		b.WriteString(h.doc.HTML(c))
	}
	return b.String()
}

// Text returns the concatenated text of the mounted tree.
func (h *Harness) Text() string { return memhost.TextContent(h.container) }

// Find returns the first node that matches, or nil.
func (h *Harness) Find(match func(*memhost.Node) bool) *memhost.Node {
	return memhost.Find(h.container, match)
}

// MustFind is Find that fails the test when nothing matches.
func (h *Harness) MustFind(match func(*memhost.Node) bool) *memhost.Node {
	h.t.Helper()
	n := h.Find(match)
	if n == nil {
		h.t.Fatalf("no matching node in:\n%s", truncate(h.HTML(), 500))
	}
	return n
}

// Dispatch raises event on n and returns the number of handlers run.
func (h *Harness) Dispatch(n *memhost.Node, event, data string) int {
	return h.doc.Dispatch(n, memhost.Event{Type: event, Data: data})
}

// Click raises click on n and fails the test when no handler ran.
func (h *Harness) Click(n *memhost.Node) {
	h.t.Helper()
	if h.Dispatch(n, "click", "") == 0 {
		h.t.Errorf("click on %v ran no handlers", n)
	}
}

// Stats returns the host operations counted since the last ResetStats.
func (h *Harness) Stats() memhost.Stats { return h.doc.Stats() }

// ResetStats zeroes the operation counters.
func (h *Harness) ResetStats() { h.doc.ResetStats() }

// ExpectContains asserts that the markup contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	if html := h.HTML(); !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the markup does not contain unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	if html := h.HTML(); strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectHTML asserts the exact markup.
func (h *Harness) ExpectHTML(want string) {
	h.t.Helper()
	if got := h.HTML(); got != want {
		h.t.Errorf("rendered output mismatch:\n got %s\nwant %s", got, want)
	}
}

// ExpectElement asserts that a node with tag is mounted.
func (h *Harness) ExpectElement(tag string) {
	h.t.Helper()
	if h.Find(memhost.ByTag(tag)) == nil {
		h.t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(h.HTML(), 500))
	}
}

// ExpectAttribute asserts that some node carries attr with value.
func (h *Harness) ExpectAttribute(attr, value string) {
	h.t.Helper()
	if h.Find(memhost.ByAttr(attr, value)) == nil {
		h.t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(h.HTML(), 500))
	}
}

// RenderToString mounts el into a throwaway document and returns its markup.
func RenderToString(el *vdom.Element) string {
	h := New(nil)
	h.Render(el)
	return h.HTML()
}

// Recorder is a vdom.Observer that keeps every notification as a line such
// as "reconciled patch div" or "update Counter".
type Recorder struct {
	Events []string
}

func (r *Recorder) add(format string, args ...any) {
	r.Events = append(r.Events, fmt.Sprintf(format, args...))
}

func (r *Recorder) RenderStarted(vdom.Node)                 { r.add("render") }
func (r *Recorder) RenderFinished(vdom.Node, time.Duration) { r.add("render done") }
func (r *Recorder) Reconciled(op vdom.Op, typ vdom.Type)    { r.add("reconciled %s %s", op, typ) }
func (r *Recorder) UpdateStarted(c *vdom.ComponentType)     { r.add("update %s", c.Name()) }
func (r *Recorder) UpdateSkipped(c *vdom.ComponentType)     { r.add("skipped %s", c.Name()) }

func (r *Recorder) UpdateFinished(c *vdom.ComponentType, _ time.Duration) {
	r.add("update done %s", c.Name())
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() { r.Events = nil }

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
