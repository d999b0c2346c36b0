package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.DocumentsIndexedTotal.Add(3)
	m.BuildsTotal.WithLabelValues("success").Inc()
	m.ShardDocCount.WithLabelValues("0").Set(2)
	m.PhaseDuration.WithLabelValues("merge").Observe(0.01)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.DocumentsIndexedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BuildsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShardDocCount.WithLabelValues("0")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "indexbuilder_documents_indexed_total")
	assert.Contains(t, names, "indexbuilder_phase_duration_seconds")
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)
	assert.Panics(t, func() { NewWithRegistry(reg) })
}
