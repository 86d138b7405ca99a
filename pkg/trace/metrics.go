package trace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bramblebt/bramble/pkg/domain"
)

// Metrics exposes tree activity as Prometheus collectors: a transition
// counter partitioned by node and resulting status, and a histogram of full
// tick durations.
type Metrics struct {
	transitions *prometheus.CounterVec
	tickSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bramble",
			Name:      "transitions_total",
			Help:      "Status transitions observed, by node name and resulting status.",
		}, []string{"node", "status"}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bramble",
			Name:      "tick_duration_seconds",
			Help:      "Duration of full root tick passes.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	if err := reg.Register(m.transitions); err != nil {
		return nil, err
	}
	if err := reg.Register(m.tickSeconds); err != nil {
		return nil, err
	}
	return m, nil
}

// Record counts one status transition. Attach with tree.Subscribe.
func (m *Metrics) Record(tr domain.Transition) {
	m.transitions.WithLabelValues(tr.Name, tr.Next.String()).Inc()
}

// ObserveTick records the wall time of one root tick pass.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickSeconds.Observe(d.Seconds())
}
