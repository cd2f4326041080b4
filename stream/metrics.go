package stream

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional prometheus.Collector tracking per-operator emitted
// event counts, for the operators whose output isn't a direct function of
// one Process call (rate, percentiles) and so benefit most from an
// independent observability signal. By reports under the operator label
// "by.children", counting one per child graph it creates rather than
// events emitted. Grounded on the same
// Describe/Collect-over-atomics pattern as schedule.Metrics.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]*atomic.Uint64

	desc *prometheus.Desc
}

// NewMetrics constructs an empty Metrics collector.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "riemann_stream"
	}
	return &Metrics{
		counters: make(map[string]*atomic.Uint64),
		desc: prometheus.NewDesc(
			namespace+"_events_emitted_total",
			"Total events emitted by a stream operator.",
			[]string{"operator"}, nil,
		),
	}
}

// Observe increments the emitted-event counter for the named operator
// instance.
func (m *Metrics) Observe(operator string, n uint64) {
	m.mu.Lock()
	c, ok := m.counters[operator]
	if !ok {
		c = new(atomic.Uint64)
		m.counters[operator] = c
	}
	m.mu.Unlock()
	c.Add(n)
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.desc
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for op, c := range m.counters {
		ch <- prometheus.MustNewConstMetric(m.desc, prometheus.CounterValue, float64(c.Load()), op)
	}
}
