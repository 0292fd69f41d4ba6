package sim

import "github.com/prometheus/client_golang/prometheus"

// Metrics wraps the counters the driver exports per spec.md §4.F and
// §8's busy_cycles/idle_cycles accounting. It owns a private registry
// (never the global prometheus.DefaultRegisterer) so multiple simulator
// runs in one process — as a benchmark sweep does — never collide.
type Metrics struct {
	Registry *prometheus.Registry

	CyclesTotal     prometheus.Counter
	BusyCycles      prometheus.Counter
	IdleCycles      prometheus.Counter
	Verdicts        *prometheus.CounterVec
	Disagreements   prometheus.Counter
	RunsTotal       prometheus.Counter
}

// NewMetrics constructs and registers a fresh metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satswarm_cycles_total",
			Help: "Total simulated cycles across all runs.",
		}),
		BusyCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satswarm_busy_cycles_total",
			Help: "Sum of per-node busy cycles across all runs.",
		}),
		IdleCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satswarm_idle_cycles_total",
			Help: "Sum of per-node idle cycles across all runs.",
		}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "satswarm_verdicts_total",
			Help: "Count of simulator verdicts by outcome.",
		}, []string{"outcome"}),
		Disagreements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satswarm_oracle_disagreements_total",
			Help: "Count of benchmark files where the simulator and oracle disagreed.",
		}),
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satswarm_runs_total",
			Help: "Total benchmark files simulated.",
		}),
	}
	reg.MustRegister(m.CyclesTotal, m.BusyCycles, m.IdleCycles, m.Verdicts, m.Disagreements, m.RunsTotal)
	return m
}

// Observe records one completed run's counters.
func (m *Metrics) Observe(r Result) {
	m.RunsTotal.Inc()
	m.CyclesTotal.Add(float64(r.Cycles))
	m.BusyCycles.Add(float64(r.BusyCycles))
	m.IdleCycles.Add(float64(r.IdleCycles))
	m.Verdicts.WithLabelValues(string(r.Outcome)).Inc()
}
