package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollingAverageWarmup(t *testing.T) {
	a := NewRollingAggregator(3)

	_, ok := a.Average()
	assert.False(t, ok)

	assert.InDelta(t, 10.0, a.Observe(10), 1e-9)
	assert.InDelta(t, 15.0, a.Observe(20), 1e-9)
	assert.InDelta(t, 20.0, a.Observe(30), 1e-9)
}

func TestRollingAverageCoversLastWValuesOnly(t *testing.T) {
	a := NewRollingAggregator(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		a.Observe(v)
	}
	avg, ok := a.Average()
	assert.True(t, ok)
	assert.InDelta(t, 4.0, avg, 1e-9) // mean of 3,4,5
}

func TestStallRequiresFullWindow(t *testing.T) {
	a := NewRollingAggregator(3)
	a.Observe(100.0)
	assert.False(t, a.Stalled(0.2))
	a.Observe(100.05)
	assert.False(t, a.Stalled(0.2))
	a.Observe(100.1)
	assert.True(t, a.Stalled(0.2))
}

func TestStallFalseOnWideRange(t *testing.T) {
	a := NewRollingAggregator(3)
	for _, v := range []float64{100.0, 105.0, 95.0} {
		a.Observe(v)
	}
	assert.False(t, a.Stalled(0.2))
}

func TestStallOnIdenticalValues(t *testing.T) {
	a := NewRollingAggregator(4)
	for i := 0; i < 4; i++ {
		a.Observe(42.0)
	}
	// Zero range is always within threshold, even a zero threshold.
	assert.True(t, a.Stalled(0))
}
