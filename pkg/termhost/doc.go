// Package termhost shows a memhost tree in the terminal.
//
// Renderer draws the tree with lipgloss. Model wraps it in a bubbletea
// program: tab cycles the focus over nodes with listeners and enter raises
// click on the focused one, so components rendered into the document run
// unchanged in a terminal.
//
//	doc := memhost.New()
//	container := doc.NewContainer("root")
//	vdom.NewRoot(doc).Render(vdom.Comp(counterType, nil), container)
//	err := termhost.Run(ctx, termhost.NewModel(doc, container))
//
// Play drives the same model from a list of keys for use without a terminal.
package termhost
