package vdom

import "testing"

func TestCreateElementWrapsTextChildren(t *testing.T) {
	el := CreateElement(Tag("div"), Props{"id": "x"}, "hello", 0, nil, Span())

	children := el.Children()
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3 (nil dropped)", len(children))
	}
	if !children[0].IsText() || children[0].Props[NodeValueKey] != "hello" {
		t.Errorf("children[0] = %v, want TEXT(hello)", children[0])
	}
	// Zero is a value, not an absent child.
	if !children[1].IsText() || children[1].Props[NodeValueKey] != 0 {
		t.Errorf("children[1] = %v, want TEXT(0)", children[1])
	}
	if children[2].Type != Tag("span") {
		t.Errorf("children[2].Type = %v, want span", children[2].Type)
	}
	if len(children[0].Children()) != 0 {
		t.Error("text element should have an empty children list")
	}
}

func TestCreateElementCopiesProps(t *testing.T) {
	props := Props{"class": "a"}
	el := CreateElement(Tag("div"), props)
	props["class"] = "b"

	if el.Props["class"] != "a" {
		t.Errorf("class = %v, want a (props must be copied)", el.Props["class"])
	}
	if _, ok := props[ChildrenKey]; ok {
		t.Error("CreateElement must not write children into the caller's map")
	}
	if el.Children() == nil {
		t.Error("children must be present even when empty")
	}
}

func TestCreateElementFlattensSlices(t *testing.T) {
	items := []*Element{Li("a"), nil, Li("b")}
	el := Ul(items, Li("c"))

	if got := len(el.Children()); got != 3 {
		t.Fatalf("children = %d, want 3", got)
	}
}

func TestElAcceptsAttrsAndHandlers(t *testing.T) {
	handler := func() {}
	el := Button(Class("primary"), ID("go"), OnClick(handler), AttrIf(false, Disabled()), nil, "Go")

	if el.Props["class"] != "primary" || el.Props["id"] != "go" {
		t.Errorf("props = %v", el.Props)
	}
	if _, ok := el.Props["onClick"]; !ok {
		t.Error("expected onClick listener prop")
	}
	if _, ok := el.Props["disabled"]; ok {
		t.Error("AttrIf(false) must not add a prop")
	}
	if len(el.Children()) != 1 {
		t.Errorf("children = %d, want 1", len(el.Children()))
	}
}

func TestListenerNaming(t *testing.T) {
	tests := []struct {
		name     string
		listener bool
		event    string
	}{
		{"onClick", true, "click"},
		{"onclick", true, "click"},
		{"onKEYDOWN", true, "keydown"},
		{"ONKEYDOWN", false, ""},
		{"Only", false, ""},
		{"on", false, ""},
		{"one", true, "e"},
		{"class", false, ""},
		{"children", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsListener(tt.name); got != tt.listener {
				t.Fatalf("IsListener(%q) = %v, want %v", tt.name, got, tt.listener)
			}
			if tt.listener {
				if got := ListenerEvent(tt.name); got != tt.event {
					t.Errorf("ListenerEvent(%q) = %q, want %q", tt.name, got, tt.event)
				}
			}
		})
	}
}

func TestOnBuildsPropertyName(t *testing.T) {
	if got := On("keydown", nil).Event; got != "onKeydown" {
		t.Errorf("On(keydown).Event = %q, want onKeydown", got)
	}
	if got := ListenerEvent(OnDblClick(nil).Event); got != "dblclick" {
		t.Errorf("round trip = %q, want dblclick", got)
	}
}

func TestTypeIdentity(t *testing.T) {
	ctor := func(Props) Component { return nil }
	a := DefineComponent("A", ctor)
	b := DefineComponent("A", ctor)

	var ta, tb Type = a, b
	if ta == tb {
		t.Error("component types with the same name must still be distinct")
	}
	var div1, div2 Type = Tag("div"), Tag("div")
	if div1 != div2 {
		t.Error("equal tags must compare equal")
	}
	if a.String() != "A" || Tag("p").String() != "p" {
		t.Error("unexpected String output")
	}
}

func TestHelpers(t *testing.T) {
	if If(false, Div()) != nil {
		t.Error("If(false) should be nil")
	}
	if IfElse(false, Div(), Span()).Type != Tag("span") {
		t.Error("IfElse(false) should pick the second element")
	}
	called := false
	When(false, func() *Element { called = true; return nil })
	if called {
		t.Error("When(false) must not evaluate")
	}
	got := Range([]string{"a", "b"}, func(s string, i int) *Element { return Li(s) })
	if len(got) != 2 {
		t.Errorf("Range = %d elements, want 2", len(got))
	}
	if Repeat(0, func(int) *Element { return Div() }) != nil {
		t.Error("Repeat(0) should be nil")
	}
}
