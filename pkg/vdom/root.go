package vdom

import (
	"io"
	"log/slog"
	"time"
)

// Root renders elements into host containers and remembers the root
// instance of each container between calls, which is what makes the next
// render a diff instead of a rebuild.
//
// A Root is not safe for concurrent use. Rendering, event dispatch and
// SetState must all happen on one goroutine.
type Root struct {
	rec   *reconciler
	roots map[Node]Instance
}

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Root) {
		if logger != nil {
			r.rec.logger = logger
		}
	}
}

// WithObserver installs an observer. Use Observers to combine several.
func WithObserver(o Observer) Option {
	return func(r *Root) {
		if o != nil {
			r.rec.observer = o
		}
	}
}

// NewRoot creates a render root over the given host.
func NewRoot(host Host, opts ...Option) *Root {
	r := &Root{
		rec: &reconciler{
			host:     host,
			observer: NopObserver{},
			logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		roots: make(map[Node]Instance),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render reconciles el against whatever was last rendered into container
// and returns the new root instance. Rendering nil removes the previous
// tree. Panics raised by component constructors or Render methods propagate
// to the caller unchanged.
func (r *Root) Render(el *Element, container Node) Instance {
	start := time.Now()
	r.rec.observer.RenderStarted(container)
	defer func() {
		r.rec.observer.RenderFinished(container, time.Since(start))
	}()

	prev := r.roots[container]
	next := r.rec.reconcile(container, prev, el)
	if next == nil {
		delete(r.roots, container)
	} else {
		r.roots[container] = next
	}

	r.rec.logger.Debug("vdom: render",
		"element", el.String(),
		"first", prev == nil,
		"duration", time.Since(start),
	)
	return next
}

// Unmount removes the tree rendered into container. It reports whether
// there was one.
func (r *Root) Unmount(container Node) bool {
	if _, ok := r.roots[container]; !ok {
		return false
	}
	r.Render(nil, container)
	return true
}

// Instance returns the root instance currently rendered into container.
func (r *Root) Instance(container Node) Instance {
	return r.roots[container]
}

// Containers returns the number of containers with a rendered tree.
func (r *Root) Containers() int {
	return len(r.roots)
}

// Host returns the host adapter the root renders into.
func (r *Root) Host() Host {
	return r.rec.host
}
