package optimize

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks optimizer progress. A nil *Metrics records nothing.
type Metrics struct {
	evaluated    prometheus.Counter
	failed       prometheus.Counter
	replications *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics registers the optimizer collectors with reg. A nil reg returns a
// nil *Metrics. Collectors already registered by an earlier run are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}
	m := &Metrics{
		evaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linesim_optimizer_scenarios_evaluated_total",
			Help: "Configurations whose replications all finished or aborted.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linesim_optimizer_scenarios_failed_total",
			Help: "Configurations recorded as failed (invalid, aborted or degenerate).",
		}),
		replications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linesim_optimizer_replications_total",
			Help: "Replications run, by outcome.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "linesim_optimizer_replication_duration_seconds",
			Help:    "Wall-clock time of one replication.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	var err error
	m.evaluated, err = register(reg, m.evaluated)
	if err != nil {
		return nil, err
	}
	m.failed, err = register(reg, m.failed)
	if err != nil {
		return nil, err
	}
	m.replications, err = register(reg, m.replications)
	if err != nil {
		return nil, err
	}
	m.duration, err = register(reg, m.duration)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) observeReplication(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.replications.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Metrics) scenarioDone(failed bool) {
	if m == nil {
		return
	}
	m.evaluated.Inc()
	if failed {
		m.failed.Inc()
	}
}
