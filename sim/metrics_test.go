package sim

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserveExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.Observe(Result{Outcome: SAT, Cycles: 7, BusyCycles: 5, IdleCycles: 2})
	m.Observe(Result{Outcome: UNSAT, Cycles: 3, BusyCycles: 3, IdleCycles: 0})

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	got := make(map[string]float64)
	for _, fam := range families {
		for _, mf := range fam.Metric {
			name := fam.GetName()
			if len(mf.GetLabel()) > 0 {
				name = name + ":" + mf.GetLabel()[0].GetValue()
			}
			got[name] = counterValue(mf)
		}
	}

	require.Equal(t, float64(2), got["satswarm_runs_total"])
	require.Equal(t, float64(10), got["satswarm_cycles_total"])
	require.Equal(t, float64(8), got["satswarm_busy_cycles_total"])
	require.Equal(t, float64(2), got["satswarm_idle_cycles_total"])
	require.Equal(t, float64(1), got["satswarm_verdicts_total:SAT"])
	require.Equal(t, float64(1), got["satswarm_verdicts_total:UNSAT"])
}

func counterValue(mf *dto.Metric) float64 {
	return mf.GetCounter().GetValue()
}
