package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xinjiayu/rxbridge/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that
// constructing the collector never fails.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	subscriptions *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	disposals     *prometheus.CounterVec
	events        *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace (defaults to "rxbridge" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "rxbridge"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.subscriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "adapter",
			Name:      "subscriptions_total",
			Help:      "Total accepted subscriptions by adapter.",
		}, []string{"adapter"})

		p.rejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "adapter",
			Name:      "rejected_subscriptions_total",
			Help:      "Total subscriptions refused because the source was already subscribed.",
		}, []string{"adapter"})

		p.disposals = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "adapter",
			Name:      "disposals_total",
			Help:      "Total subscriptions disposed before the sequence terminated.",
		}, []string{"adapter"})

		p.events = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "adapter",
			Name:      "events_total",
			Help:      "Total notifications delivered to observers by kind (next, error, completed).",
		}, []string{"adapter", "kind"})

		for _, c := range []prometheus.Collector{p.subscriptions, p.rejected, p.disposals, p.events} {
			// A collector already registered under the same descriptor is fine:
			// several bridges may share one registry.
			if err := p.reg.Register(c); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					p.adopt(are.ExistingCollector)
				}
			}
		}
	})
}

// adopt swaps a freshly created vector for the one already registered.
func (p *PrometheusCollector) adopt(existing prometheus.Collector) {
	vec, ok := existing.(*prometheus.CounterVec)
	if !ok {
		return
	}

	desc := func(c prometheus.Collector) string {
		ch := make(chan *prometheus.Desc, 1)
		c.Describe(ch)
		return (<-ch).String()
	}

	name := desc(vec)
	switch name {
	case desc(p.subscriptions):
		p.subscriptions = vec
	case desc(p.rejected):
		p.rejected = vec
	case desc(p.disposals):
		p.disposals = vec
	case desc(p.events):
		p.events = vec
	}
}

// RecordSubscription increments the accepted subscription counter.
func (p *PrometheusCollector) RecordSubscription(adapter string) {
	p.ensureRegistered()
	p.subscriptions.WithLabelValues(adapter).Inc()
}

// RecordRejected increments the rejected subscription counter.
func (p *PrometheusCollector) RecordRejected(adapter string) {
	p.ensureRegistered()
	p.rejected.WithLabelValues(adapter).Inc()
}

// RecordDisposal increments the disposal counter.
func (p *PrometheusCollector) RecordDisposal(adapter string) {
	p.ensureRegistered()
	p.disposals.WithLabelValues(adapter).Inc()
}

// RecordEvent increments the event counter for the given kind.
func (p *PrometheusCollector) RecordEvent(adapter string, kind string) {
	p.ensureRegistered()
	p.events.WithLabelValues(adapter, kind).Inc()
}
