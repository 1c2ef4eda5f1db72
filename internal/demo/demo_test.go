package demo

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func mount(t *testing.T, el *vdom.Element) (*memhost.Document, *memhost.Node) {
	t.Helper()
	doc := memhost.New()
	container := doc.NewContainer("root")
	vdom.NewRoot(doc).Render(el, container)
	return doc, container
}

func click(t *testing.T, doc *memhost.Document, n *memhost.Node) {
	t.Helper()
	if n == nil {
		t.Fatal("click on nil node")
	}
	if doc.Dispatch(n, memhost.Event{Type: "click"}) == 0 {
		t.Fatalf("no click handler on %v", n)
	}
}

func buttonLabeled(container *memhost.Node, label string) *memhost.Node {
	return memhost.Find(container, func(n *memhost.Node) bool {
		return n.Tag() == "button" && memhost.TextContent(n) == label
	})
}

func TestLookup(t *testing.T) {
	if got := Names(); !slices.Equal(got, []string{"counter", "todo"}) {
		t.Errorf("Names() = %v", got)
	}
	for _, name := range Names() {
		app, err := Lookup(name)
		if err != nil || app.Name != name || app.New(nil) == nil {
			t.Errorf("Lookup(%q) = %+v, %v", name, app, err)
		}
	}
	_, err := Lookup("nope")
	e, ok := err.(*errors.Error)
	if !ok || e.Code != errors.CLIUnknownApp || !strings.Contains(e.Detail, "counter, todo") {
		t.Errorf("Lookup(nope) = %v", err)
	}
}

func TestCounter(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	app, _ := Lookup("counter")
	doc, container := mount(t, app.New(logger))

	if got := memhost.TextContent(container); got != "Hello World!Counter: 0Click Me!" {
		t.Fatalf("text = %q", got)
	}

	button := buttonLabeled(container, "Click Me!")
	click(t, doc, button)
	if got := memhost.TextContent(container); got != "Hello World!Counter: 1Click Me! Hello again!" {
		t.Errorf("after one click text = %q", got)
	}
	click(t, doc, button)
	if got := memhost.TextContent(container); got != "Hello World!Counter: 2Click Me!" {
		t.Errorf("after two clicks text = %q", got)
	}

	for _, want := range []string{"will mount", "did mount", "should update", "will update", "did update", "component=Counter"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}

func TestTodo(t *testing.T) {
	doc, container := mount(t, vdom.Comp(TodoType, vdom.Props{"title": "Todo"}))
	input := memhost.Find(container, memhost.ByTag("input"))
	items := func() []*memhost.Node { return memhost.FindAll(container, memhost.ByTag("li")) }

	// A blank draft is ignored.
	doc.Dispatch(input, memhost.Event{Type: "input", Data: "   "})
	doc.Dispatch(input, memhost.Event{Type: "keydown", Data: "Enter"})
	if len(items()) != 0 {
		t.Fatal("blank draft should not be added")
	}

	for _, text := range []string{"milk", "eggs"} {
		doc.Dispatch(input, memhost.Event{Type: "input", Data: text})
		if v, _ := input.Attr("value"); v != text {
			t.Fatalf("value = %v, want %q", v, text)
		}
		doc.Dispatch(input, memhost.Event{Type: "keydown", Data: "Enter"})
	}
	if len(items()) != 2 {
		t.Fatalf("items = %v", items())
	}
	if v, _ := input.Attr("value"); v != "" {
		t.Errorf("draft not cleared: %v", v)
	}
	if !strings.Contains(memhost.TextContent(container), "2 left") {
		t.Errorf("text = %q", memhost.TextContent(container))
	}

	click(t, doc, buttonLabeled(items()[0], "·"))
	if v, _ := items()[0].Attr("class"); v != "done" {
		t.Errorf("toggled item class = %v", v)
	}
	if !strings.Contains(memhost.TextContent(container), "1 left") {
		t.Errorf("text = %q", memhost.TextContent(container))
	}

	click(t, doc, buttonLabeled(container, "Clear done"))
	if got := items(); len(got) != 1 || !strings.Contains(memhost.TextContent(got[0]), "eggs") {
		t.Fatalf("items after clear = %v", got)
	}
	if buttonLabeled(container, "Clear done") != nil {
		t.Error("clear button should hide when nothing is done")
	}

	doc.Dispatch(input, memhost.Event{Type: "input", Data: "bread"})
	click(t, doc, buttonLabeled(container, "Add"))
	click(t, doc, buttonLabeled(items()[0], "delete"))
	if got := items(); len(got) != 1 || !strings.Contains(memhost.TextContent(got[0]), "bread") {
		t.Errorf("items after delete = %v", got)
	}
}

func TestTodoInitialItems(t *testing.T) {
	initial := []Item{{Text: "a"}, {Text: "b", Done: true}}
	_, container := mount(t, vdom.Comp(TodoType, vdom.Props{"items": initial}))

	if n := len(memhost.FindAll(container, memhost.ByTag("li"))); n != 2 {
		t.Errorf("items = %d", n)
	}
	if memhost.Find(container, memhost.ByTag("h1")) != nil {
		t.Error("no title prop should mean no heading")
	}
	if !strings.Contains(memhost.TextContent(container), "1 left") {
		t.Errorf("text = %q", memhost.TextContent(container))
	}
}
