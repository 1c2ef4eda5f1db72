package vdom

// El creates a host element with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, EventHandler, Props, *Element,
// []*Element, or any other value, which becomes a text child.
func El(tag Tag, args ...any) *Element {
	props := make(Props)
	children := make([]any, 0, len(args))

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			if v.Key != "" {
				props[v.Key] = v.Value
			}

		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					props[a.Key] = a.Value
				}
			}

		case EventHandler:
			props[v.Event] = v.Handler

		case Props:
			for k, val := range v {
				if k != ChildrenKey {
					props[k] = val
				}
			}

		default:
			children = append(children, v)
		}
	}

	return CreateElement(tag, props, children...)
}

// Comp creates a component element.
func Comp(t *ComponentType, props Props, children ...any) *Element {
	return CreateElement(t, props, children...)
}

// Sectioning and text content

func Div(args ...any) *Element     { return El("div", args...) }
func Span(args ...any) *Element    { return El("span", args...) }
func P(args ...any) *Element       { return El("p", args...) }
func H1(args ...any) *Element      { return El("h1", args...) }
func H2(args ...any) *Element      { return El("h2", args...) }
func H3(args ...any) *Element      { return El("h3", args...) }
func Header(args ...any) *Element  { return El("header", args...) }
func Footer(args ...any) *Element  { return El("footer", args...) }
func Section(args ...any) *Element { return El("section", args...) }
func Pre(args ...any) *Element     { return El("pre", args...) }
func Ul(args ...any) *Element      { return El("ul", args...) }
func Ol(args ...any) *Element      { return El("ol", args...) }
func Li(args ...any) *Element      { return El("li", args...) }
func Hr(args ...any) *Element      { return El("hr", args...) }
func Strong(args ...any) *Element  { return El("strong", args...) }
func Em(args ...any) *Element      { return El("em", args...) }
func Code(args ...any) *Element    { return El("code", args...) }

// Form elements

func Form(args ...any) *Element     { return El("form", args...) }
func Input(args ...any) *Element    { return El("input", args...) }
func Textarea(args ...any) *Element { return El("textarea", args...) }
func Button(args ...any) *Element   { return El("button", args...) }
func Label(args ...any) *Element    { return El("label", args...) }

// Layout elements understood by termhost.

// Row lays its children out horizontally.
func Row(args ...any) *Element { return El("row", args...) }

// Column lays its children out vertically.
func Column(args ...any) *Element { return El("column", args...) }
