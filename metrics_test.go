package gameshim

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.recursionDetected()
	m.diagnosticRouted(DiagnosticRecursion)
	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.recursionDetections))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recursionDetected()
		m.reconnectAttempted()
		m.reconnectFailed()
		m.sessionFallback()
		m.lowFrameRate()
		m.diagnosticRouted(DiagnosticConnectionLost)
		m.connectionErrorShown()
	})
}
