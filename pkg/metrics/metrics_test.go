package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Import(nil)
	m.Import(errors.New("boom"))
	m.Query("result")
	m.Query("result")
	m.Export("seed", nil)
	m.Refresh(20 * time.Millisecond)
	m.Tables(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("seed", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.tables))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Import(nil)
		m.Query("refresh")
		m.Export("xlsx", nil)
		m.Refresh(time.Second)
		m.Tables(1)
	})
}
