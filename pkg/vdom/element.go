package vdom

import (
	"fmt"
	"maps"
)

// Reserved property keys.
const (
	ChildrenKey  = "children"  // []*Element, present on every element
	NodeValueKey = "nodeValue" // Text content of a TextTag element
)

// Type identifies what an element renders to: a host Tag or a *ComponentType.
// Two types are the same when they compare equal with ==.
type Type interface {
	String() string
	isType()
}

// Tag is a host node kind such as "div". The host adapter decides which tags
// it supports.
type Tag string

// TextTag is the sentinel tag for text leaves.
const TextTag Tag = "TEXT"

func (t Tag) String() string { return string(t) }
func (Tag) isType()          {}

// ComponentType is a component constructor. Element types are compared by
// pointer, so a ComponentType should be defined once, usually as a package
// level variable.
type ComponentType struct {
	name string
	ctor func(Props) Component
}

// DefineComponent registers a constructor under a display name.
func DefineComponent(name string, ctor func(Props) Component) *ComponentType {
	if ctor == nil {
		panic("vdom: DefineComponent with nil constructor")
	}
	return &ComponentType{name: name, ctor: ctor}
}

// Name returns the display name given to DefineComponent.
func (c *ComponentType) Name() string { return c.name }

func (c *ComponentType) String() string { return c.name }
func (*ComponentType) isType()          {}

// Props holds the properties of an element. Keys starting with "on" are
// listeners, ChildrenKey holds the children, everything else is an attribute.
type Props map[string]any

// Children returns the child elements stored under ChildrenKey.
func (p Props) Children() []*Element {
	children, _ := p[ChildrenKey].([]*Element)
	return children
}

// Element is an immutable description of one node of the desired tree.
type Element struct {
	Type  Type
	Props Props
}

// Children returns the element's child elements.
func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	return e.Props.Children()
}

// IsText reports whether e is a text leaf.
func (e *Element) IsText() bool {
	return e != nil && e.Type == TextTag
}

// String returns a compact description such as "div[3]" or "TEXT(hello)".
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.IsText() {
		return fmt.Sprintf("TEXT(%v)", e.Props[NodeValueKey])
	}
	return fmt.Sprintf("%s[%d]", e.Type, len(e.Children()))
}

// CreateElement builds an element of the given type. The props map is copied.
// Nil children are dropped, []*Element children are flattened in place, and
// any child that is not an element becomes a text element carrying the value.
func CreateElement(typ Type, props Props, children ...any) *Element {
	p := make(Props, len(props)+1)
	maps.Copy(p, props)
	p[ChildrenKey] = normalizeChildren(children)
	return &Element{Type: typ, Props: p}
}

func normalizeChildren(children []any) []*Element {
	out := make([]*Element, 0, len(children))
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *Element:
			if v != nil {
				out = append(out, v)
			}
		case []*Element:
			for _, c := range v {
				if c != nil {
					out = append(out, c)
				}
			}
		default:
			out = append(out, textElement(v))
		}
	}
	return out
}

func textElement(value any) *Element {
	return &Element{
		Type:  TextTag,
		Props: Props{NodeValueKey: value, ChildrenKey: []*Element{}},
	}
}

// Text creates a text element.
func Text(content string) *Element {
	return textElement(content)
}

// Textf creates a formatted text element.
func Textf(format string, args ...any) *Element {
	return textElement(fmt.Sprintf(format, args...))
}
