// Package remote renders a vdom tree on a server and mirrors it into
// replicas over WebSocket.
//
// The server wraps a memhost.Document in a recording Host. Each render pass
// or component update produces one batch of host operations, which is sent
// as a single Ops frame. Event listeners stay on the server: replicas only
// learn which events a node listens to and report raised events by server
// node ID.
//
// # Server
//
//	srv := remote.NewServer(&remote.ServerConfig{
//	    App: func() *vdom.Element { return vdom.Comp(counterType, nil) },
//	})
//	err := srv.Run(ctx)
//
// Routes: the WebSocket endpoint (default /ws), /healthz, /sessions,
// /snapshot/{session} and, when configured, the metrics handler.
//
// # Client
//
//	c, err := remote.Dial(ctx, "ws://localhost:7070/ws")
//	batch, err := c.Next(ctx) // initial tree
//	button := memhost.Find(c.Container(), memhost.ByTag("button"))
//	err = c.Send(button, "click", "")
//	batch, err = c.Next(ctx) // the update
package remote
