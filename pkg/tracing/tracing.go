// Package tracing turns reconciler activity into OpenTelemetry spans.
//
// Every root render pass becomes a "vdom.Render" span and every
// state-triggered update a "vdom.Update" span. Updates that happen during a
// render (SetState from DidMount) nest under the render span. Reconcile
// transitions are recorded as span events on the innermost open span.
//
// An Observer keeps a stack of open spans and must not be shared between
// roots that render concurrently. Create one per root.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// DefaultTracerName is the instrumentation name used when none is set.
const DefaultTracerName = "github.com/vango-dev/vtree"

// Span names.
const (
	SpanRender        = "vdom.Render"
	SpanUpdate        = "vdom.Update"
	SpanUpdateSkipped = "vdom.UpdateSkipped"
)

// Attribute keys.
const (
	AttrComponent = attribute.Key("vdom.component")
	AttrOp        = attribute.Key("vdom.op")
	AttrType      = attribute.Key("vdom.type")
	AttrOps       = attribute.Key("vdom.ops")
	AttrElapsed   = attribute.Key("vdom.elapsed_ms")
)

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: DefaultTracerName).
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: otel.GetTracerProvider()
	TracerProvider trace.TracerProvider

	// Context is the parent of top-level spans (default: context.Background()).
	Context context.Context

	// Attributes are added to every span, for example a session ID.
	Attributes []attribute.KeyValue

	// RecordReconciles adds a span event per reconcile transition.
	// Enabled by default.
	RecordReconciles bool
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithContext sets the parent context of top-level spans.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithAttributes adds attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithRecordReconciles enables/disables the per-transition span events.
func WithRecordReconciles(record bool) Option {
	return func(c *Config) {
		c.RecordReconciles = record
	}
}

// Observer implements vdom.Observer with OpenTelemetry spans.
type Observer struct {
	config Config
	tracer trace.Tracer
	stack  []frame
}

type frame struct {
	ctx  context.Context
	span trace.Span
	ops  int
}

var _ vdom.Observer = (*Observer)(nil)

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{
		TracerName:       DefaultTracerName,
		Context:          context.Background(),
		RecordReconciles: true,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerName == "" {
		config.TracerName = DefaultTracerName
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{
		config: config,
		tracer: tp.Tracer(config.TracerName),
	}
}

// Depth returns the number of spans currently open.
func (o *Observer) Depth() int { return len(o.stack) }

func (o *Observer) parent() context.Context {
	if n := len(o.stack); n > 0 {
		return o.stack[n-1].ctx
	}
	return o.config.Context
}

func (o *Observer) push(name string, attrs ...attribute.KeyValue) {
	ctx, span := o.tracer.Start(o.parent(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(o.config.Attributes...),
		trace.WithAttributes(attrs...),
	)
	o.stack = append(o.stack, frame{ctx: ctx, span: span})
}

func (o *Observer) pop(elapsed time.Duration) {
	n := len(o.stack)
	if n == 0 {
		return
	}
	f := o.stack[n-1]
	o.stack = o.stack[:n-1]
	f.span.SetAttributes(
		AttrOps.Int(f.ops),
		AttrElapsed.Float64(float64(elapsed.Microseconds())/1000),
	)
	f.span.End()
}

// RenderStarted implements vdom.Observer.
func (o *Observer) RenderStarted(vdom.Node) {
	o.push(SpanRender)
}

// RenderFinished implements vdom.Observer.
func (o *Observer) RenderFinished(_ vdom.Node, elapsed time.Duration) {
	o.pop(elapsed)
}

// Reconciled implements vdom.Observer.
func (o *Observer) Reconciled(op vdom.Op, typ vdom.Type) {
	n := len(o.stack)
	if n == 0 {
		return
	}
	top := &o.stack[n-1]
	top.ops++
	if o.config.RecordReconciles {
		top.span.AddEvent("reconcile", trace.WithAttributes(
			AttrOp.String(op.String()),
			AttrType.String(typ.String()),
		))
	}
}

// UpdateStarted implements vdom.Observer.
func (o *Observer) UpdateStarted(c *vdom.ComponentType) {
	o.push(SpanUpdate, AttrComponent.String(c.Name()))
}

// UpdateFinished implements vdom.Observer.
func (o *Observer) UpdateFinished(_ *vdom.ComponentType, elapsed time.Duration) {
	o.pop(elapsed)
}

// UpdateSkipped implements vdom.Observer. Inside an open span it adds an
// event; otherwise it records an empty span so the veto stays visible.
func (o *Observer) UpdateSkipped(c *vdom.ComponentType) {
	if n := len(o.stack); n > 0 {
		o.stack[n-1].span.AddEvent("update skipped", trace.WithAttributes(
			AttrComponent.String(c.Name()),
		))
		return
	}
	_, span := o.tracer.Start(o.config.Context, SpanUpdateSkipped,
		trace.WithAttributes(o.config.Attributes...),
		trace.WithAttributes(AttrComponent.String(c.Name())),
	)
	span.End()
}
