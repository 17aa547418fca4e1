package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.WorldLoaded()
	m.DoorResolved()
	m.Transferred()
	m.SetFixtures("outside", 4, 1)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.WorldLoaded()
	m.WorldLoaded()
	m.DoorResolved()
	m.Transferred()
	m.SetFixtures("outside", 5, 1)
	m.SetFixtures("house", 4, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.worldsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.doorsResolved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transfers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degradedFixtures))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.fixtures.WithLabelValues("outside")))

	n, err := testutil.GatherAndCount(reg, "tileworlds_fixtures")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
