package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// recorder is a minimal in-memory TracerProvider.
type recorder struct {
	noop.TracerProvider
	name  string
	spans []*span
}

func (r *recorder) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	r.name = name
	return &tracer{rec: r}
}

type tracer struct {
	noop.Tracer
	rec *recorder
}

func (t *tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &span{name: name, attrs: map[attribute.Key]attribute.Value{}}
	if p, ok := trace.SpanFromContext(ctx).(*span); ok {
		s.parent = p
	}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	t.rec.spans = append(t.rec.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type span struct {
	noop.Span
	name   string
	parent *span
	attrs  map[attribute.Key]attribute.Value
	events []string
	ended  bool
}

func (s *span) End(...trace.SpanEndOption) { s.ended = true }

func (s *span) AddEvent(name string, opts ...trace.EventOption) {
	cfg := trace.NewEventConfig(opts...)
	for _, kv := range cfg.Attributes() {
		if kv.Key == AttrOp {
			name += ":" + kv.Value.AsString()
		}
	}
	s.events = append(s.events, name)
}

func (s *span) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

type greeter struct {
	vdom.Base
}

var greeterType = vdom.DefineComponent("Greeter", func(vdom.Props) vdom.Component {
	g := &greeter{}
	g.InitState(vdom.State{"name": "world"})
	return g
})

func (g *greeter) DidMount() {
	g.SetState(vdom.State{"name": "mounted"})
}

func (g *greeter) Render() *vdom.Element {
	return vdom.P(vdom.Textf("hello %s", g.State()["name"]))
}

func TestRenderAndNestedUpdateSpans(t *testing.T) {
	rec := &recorder{}
	obs := New(
		WithTracerProvider(rec),
		WithAttributes(attribute.String("session", "s1")),
	)
	if rec.name != DefaultTracerName {
		t.Errorf("tracer name = %q, want %q", rec.name, DefaultTracerName)
	}

	doc := memhost.New()
	container := doc.NewContainer("root")
	root := vdom.NewRoot(doc, vdom.WithObserver(obs))
	root.Render(vdom.Comp(greeterType, nil), container)

	if len(rec.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(rec.spans))
	}
	render, update := rec.spans[0], rec.spans[1]

	if render.name != SpanRender || update.name != SpanUpdate {
		t.Fatalf("span names = %q, %q", render.name, update.name)
	}
	if update.parent != render {
		t.Error("update issued from DidMount should nest under the render span")
	}
	if !render.ended || !update.ended {
		t.Error("all spans should be ended")
	}
	if got := update.attrs[AttrComponent].AsString(); got != "Greeter" {
		t.Errorf("component attr = %q", got)
	}
	if got := render.attrs["session"].AsString(); got != "s1" {
		t.Errorf("session attr = %q", got)
	}

	// The update re-renders the component and patches p and its text.
	want := []string{"reconcile:patch", "reconcile:patch", "reconcile:rerender"}
	if len(update.events) != len(want) {
		t.Fatalf("update events = %v, want %v", update.events, want)
	}
	for i := range want {
		if update.events[i] != want[i] {
			t.Errorf("update events = %v, want %v", update.events, want)
			break
		}
	}
	if got := update.attrs[AttrOps].AsInt64(); got != 3 {
		t.Errorf("update ops = %d, want 3", got)
	}
	if got := render.events; len(got) != 1 || got[0] != "reconcile:create" {
		t.Errorf("render events = %v", got)
	}
	if obs.Depth() != 0 {
		t.Errorf("Depth() = %d after render", obs.Depth())
	}
}

type vetoed struct {
	vdom.Base
}

var vetoedType = vdom.DefineComponent("Vetoed", func(vdom.Props) vdom.Component {
	return &vetoed{}
})

func (v *vetoed) ShouldUpdate() bool    { return false }
func (v *vetoed) Render() *vdom.Element { return vdom.Div() }

func TestSkippedUpdateOutsideRender(t *testing.T) {
	rec := &recorder{}
	obs := New(WithTracerProvider(rec), WithTracerName("custom"), WithRecordReconciles(false))

	doc := memhost.New()
	container := doc.NewContainer("root")
	root := vdom.NewRoot(doc, vdom.WithObserver(obs))
	root.Render(vdom.Comp(vetoedType, nil), container)

	if rec.name != "custom" {
		t.Errorf("tracer name = %q", rec.name)
	}
	if len(rec.spans[0].events) != 0 {
		t.Errorf("reconcile events recorded while disabled: %v", rec.spans[0].events)
	}

	v := root.Instance(container).(*vdom.CompositeInstance).Component().(*vetoed)
	v.SetState(vdom.State{"x": 1})

	last := rec.spans[len(rec.spans)-1]
	if last.name != SpanUpdateSkipped || !last.ended || last.parent != nil {
		t.Errorf("skipped span = %+v", last)
	}
}

type fragile struct {
	vdom.Base
	failed bool
}

var fragileType = vdom.DefineComponent("Fragile", func(vdom.Props) vdom.Component {
	f := &fragile{}
	f.InitState(vdom.State{"boom": false})
	return f
})

// Render panics once after boom is set.
func (f *fragile) Render() *vdom.Element {
	if f.State()["boom"] == true && !f.failed {
		f.failed = true
		panic("render failed")
	}
	return vdom.Div("ok")
}

func TestPanickingUpdateEndsSpan(t *testing.T) {
	rec := &recorder{}
	obs := New(WithTracerProvider(rec))

	doc := memhost.New()
	container := doc.NewContainer("root")
	root := vdom.NewRoot(doc, vdom.WithObserver(obs))
	root.Render(vdom.Comp(fragileType, nil), container)

	f := root.Instance(container).(*vdom.CompositeInstance).Component().(*fragile)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("SetState should propagate the render panic")
			}
		}()
		f.SetState(vdom.State{"boom": true})
	}()

	if obs.Depth() != 0 {
		t.Fatalf("Depth() = %d after a recovered update panic", obs.Depth())
	}
	update := rec.spans[len(rec.spans)-1]
	if update.name != SpanUpdate || !update.ended {
		t.Errorf("update span = %q, ended = %v", update.name, update.ended)
	}

	root.Render(vdom.Comp(fragileType, nil), container)
	last := rec.spans[len(rec.spans)-1]
	if last.name != SpanRender || last.parent != nil {
		t.Errorf("next render span = %q with parent %v", last.name, last.parent)
	}
	if obs.Depth() != 0 {
		t.Errorf("Depth() = %d after the next render", obs.Depth())
	}
}
