package vdom_test

import (
	"testing"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func BenchmarkElementCreation(b *testing.B) {
	b.Run("simple div", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = vdom.Div(vdom.Class("card"))
		}
	})

	b.Run("with children", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = vdom.Div(vdom.Class("card"),
				vdom.H1("Title"),
				vdom.P("Content"),
			)
		}
	})

	b.Run("with event handler", func(b *testing.B) {
		handler := func() {}
		for i := 0; i < b.N; i++ {
			_ = vdom.Button(vdom.OnClick(handler), "Click")
		}
	})

	b.Run("complex card", func(b *testing.B) {
		handler := func() {}
		for i := 0; i < b.N; i++ {
			_ = vdom.Div(vdom.Class("card"),
				vdom.Header(vdom.H2("Card Title")),
				vdom.Section(
					vdom.P("Card content goes here"),
					vdom.P("More content"),
				),
				vdom.Footer(
					vdom.Button(vdom.OnClick(handler), "Save"),
					vdom.Button(vdom.OnClick(handler), "Cancel"),
				),
			)
		}
	})
}

func deepTree(depth int) *vdom.Element {
	if depth == 0 {
		return vdom.Text("Leaf")
	}
	return vdom.Div(vdom.Class("level"), deepTree(depth-1))
}

func wideTree(width int, label string) *vdom.Element {
	return vdom.Ul(vdom.Repeat(width, func(i int) *vdom.Element {
		return vdom.Li(vdom.Textf("%s %d", label, i))
	}))
}

func BenchmarkMount(b *testing.B) {
	for _, bc := range []struct {
		name string
		el   func() *vdom.Element
	}{
		{"depth 10", func() *vdom.Element { return deepTree(10) }},
		{"100 children", func() *vdom.Element { return wideTree(100, "Item") }},
	} {
		b.Run(bc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, root, container := setup()
				root.Render(bc.el(), container)
			}
		})
	}
}

// benchUpdate mounts prev once, then alternates between next and prev so
// every iteration reconciles a real change.
func benchUpdate(b *testing.B, prev, next func() *vdom.Element) {
	b.Helper()
	_, root, container := setup()
	root.Render(prev(), container)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			root.Render(next(), container)
		} else {
			root.Render(prev(), container)
		}
	}
}

func BenchmarkReconcileSameTree(b *testing.B) {
	tree := func() *vdom.Element { return wideTree(100, "Item") }
	benchUpdate(b, tree, tree)
}

func BenchmarkReconcileTextChange(b *testing.B) {
	benchUpdate(b,
		func() *vdom.Element { return vdom.Div(vdom.H1("Old Title"), vdom.P("Content")) },
		func() *vdom.Element { return vdom.Div(vdom.H1("New Title"), vdom.P("Content")) },
	)
}

func BenchmarkReconcileAttributeChange(b *testing.B) {
	benchUpdate(b,
		func() *vdom.Element { return vdom.Div(vdom.Class("old"), vdom.ID("test")) },
		func() *vdom.Element { return vdom.Div(vdom.Class("new"), vdom.ID("test")) },
	)
}

func BenchmarkReconcileChildren(b *testing.B) {
	b.Run("10 children", func(b *testing.B) {
		benchUpdate(b,
			func() *vdom.Element { return wideTree(10, "Item") },
			func() *vdom.Element { return wideTree(10, "Changed") },
		)
	})

	b.Run("100 children", func(b *testing.B) {
		benchUpdate(b,
			func() *vdom.Element { return wideTree(100, "Item") },
			func() *vdom.Element { return wideTree(100, "Changed") },
		)
	})

	b.Run("grow and shrink", func(b *testing.B) {
		benchUpdate(b,
			func() *vdom.Element { return wideTree(10, "Item") },
			func() *vdom.Element { return wideTree(50, "Item") },
		)
	})
}

func BenchmarkSetState(b *testing.B) {
	doc, root, container := setup()
	root.Render(vdom.Comp(counterType, nil), container)
	button := memhost.Find(container, memhost.ByTag("button"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc.Dispatch(button, memhost.Event{Type: "click"})
	}
}
