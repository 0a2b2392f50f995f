package telemetry

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningAverageSlidesWindow(t *testing.T) {
	ra := NewRunningAverage(3)
	assert.Equal(t, 10.0, ra.Add(10))
	assert.Equal(t, 15.0, ra.Add(20))
	assert.InDelta(t, 20.0, ra.Add(30), 1e-9)
	// window now full at {10,20,30}; adding 40 evicts 10.
	assert.InDelta(t, 30.0, ra.Add(40), 1e-9)
	assert.Equal(t, []float64{20, 30, 40}, ra.Samples())
}

func TestRunningAverageDescribe(t *testing.T) {
	ra := NewRunningAverage(4)
	ra.Add(2)
	ra.Add(4)
	ra.Add(4)
	ra.Add(4)

	summary, err := ra.Describe()
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.Mean, 1e-9)
	assert.Greater(t, summary.StdDev, 0.0)
}

func TestBuildChainWritesTickData(t *testing.T) {
	dir := t.TempDir()
	chain, err := Build(DefaultConfig(), dir)
	require.NoError(t, err)
	defer chain.Close()

	chain.Log(TickData, log.InfoLevel, nil, "tick complete")
}
