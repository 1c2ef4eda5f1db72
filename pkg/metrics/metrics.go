// Package metrics exports reconciler activity as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	obs := metrics.New(metrics.WithRegistry(reg))
//	root := vdom.NewRoot(host, vdom.WithObserver(obs))
//
// An Observer is safe for concurrent use, so one instance can be shared by
// every render root in the process.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render and update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vtree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer implements vdom.Observer on top of Prometheus collectors. It also
// records the session and traffic counters of the remote host.
type Observer struct {
	rendersTotal   prometheus.Counter
	renderDuration prometheus.Histogram
	reconcileOps   *prometheus.CounterVec
	updatesTotal   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	updatesSkipped *prometheus.CounterVec
	activeSessions prometheus.Gauge
	batchesSent    prometheus.Counter
	opsSent        prometheus.Counter
	eventsReceived *prometheus.CounterVec
}

var _ vdom.Observer = (*Observer)(nil)

// New registers the collectors and returns the observer. Like promauto, it
// panics if the collectors are already registered with the registry.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}
	histogramOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}
	}

	return &Observer{
		rendersTotal: factory.NewCounter(counterOpts(
			"renders_total", "Total number of root render passes")),

		renderDuration: factory.NewHistogram(histogramOpts(
			"render_duration_seconds", "Root render pass duration in seconds")),

		reconcileOps: factory.NewCounterVec(counterOpts(
			"reconcile_ops_total", "Reconcile transitions by operation and element kind"),
			[]string{"op", "kind"}),

		updatesTotal: factory.NewCounterVec(counterOpts(
			"updates_total", "State-triggered component updates"),
			[]string{"component"}),

		updateDuration: factory.NewHistogramVec(histogramOpts(
			"update_duration_seconds", "State-triggered update duration in seconds"),
			[]string{"component"}),

		updatesSkipped: factory.NewCounterVec(counterOpts(
			"updates_skipped_total", "State updates vetoed by ShouldUpdate"),
			[]string{"component"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of connected remote sessions",
			ConstLabels: config.ConstLabels,
		}),

		batchesSent: factory.NewCounter(counterOpts(
			"batches_sent_total", "Host operation batches sent to replicas")),

		opsSent: factory.NewCounter(counterOpts(
			"ops_sent_total", "Host operations sent to replicas")),

		eventsReceived: factory.NewCounterVec(counterOpts(
			"events_received_total", "Events received from replicas"),
			[]string{"event", "status"}),
	}
}

// RenderStarted implements vdom.Observer.
func (o *Observer) RenderStarted(vdom.Node) {}

// RenderFinished implements vdom.Observer.
func (o *Observer) RenderFinished(_ vdom.Node, elapsed time.Duration) {
	o.rendersTotal.Inc()
	o.renderDuration.Observe(elapsed.Seconds())
}

// Reconciled implements vdom.Observer.
func (o *Observer) Reconciled(op vdom.Op, typ vdom.Type) {
	o.reconcileOps.WithLabelValues(op.String(), kindOf(typ)).Inc()
}

// UpdateStarted implements vdom.Observer.
func (o *Observer) UpdateStarted(*vdom.ComponentType) {}

// UpdateFinished implements vdom.Observer.
func (o *Observer) UpdateFinished(c *vdom.ComponentType, elapsed time.Duration) {
	o.updatesTotal.WithLabelValues(c.Name()).Inc()
	o.updateDuration.WithLabelValues(c.Name()).Observe(elapsed.Seconds())
}

// UpdateSkipped implements vdom.Observer.
func (o *Observer) UpdateSkipped(c *vdom.ComponentType) {
	o.updatesSkipped.WithLabelValues(c.Name()).Inc()
}

// SessionOpened records a new remote session.
func (o *Observer) SessionOpened() { o.activeSessions.Inc() }

// SessionClosed records the end of a remote session.
func (o *Observer) SessionClosed() { o.activeSessions.Dec() }

// BatchSent records one batch of ops written to a replica.
func (o *Observer) BatchSent(ops int) {
	o.batchesSent.Inc()
	o.opsSent.Add(float64(ops))
}

// EventReceived records an inbound event. delivered is false when the target
// node no longer existed.
func (o *Observer) EventReceived(event string, delivered bool) {
	status := "delivered"
	if !delivered {
		status = "dropped"
	}
	o.eventsReceived.WithLabelValues(event, status).Inc()
}

// Handler serves the metrics of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// kindOf keeps the kind label bounded: tags collapse to "host" and component
// types to "component".
func kindOf(typ vdom.Type) string {
	switch typ.(type) {
	case *vdom.ComponentType:
		return "component"
	default:
		if typ == vdom.TextTag {
			return "text"
		}
		return "host"
	}
}
