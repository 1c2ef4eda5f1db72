// Package memhost is an in-memory host tree for vdom.
//
// A Document creates nodes with stable numeric IDs, keeps attributes and
// listeners on them, and implements vdom.Host. It is the reference host used
// by tests, the terminal renderer, the remote server's mirror, and the remote
// client's replica.
//
//	doc := memhost.New()
//	container := doc.NewContainer("root")
//	root := vdom.NewRoot(doc)
//	root.Render(vdom.Div("hello"), container)
//	fmt.Println(doc.HTML(container)) // <root><div>hello</div></root>
//
// Listeners are plain Go values. Dispatch invokes handlers of type func() and
// func(memhost.Event); other handler values are stored but never called.
package memhost
