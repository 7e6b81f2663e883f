package glove

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/glove.report/internal/timeutil"
)

func TestRateEstimatorBeforeSamples(t *testing.T) {
	r := NewRateEstimator(10, timeutil.NewMockClock(time.Unix(0, 0)))
	assert.Zero(t, r.Rate())

	// A single tick only seeds the reference time.
	r.Tick()
	assert.Zero(t, r.Rate())
}

func TestRateEstimatorSteadyRate(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := NewRateEstimator(10, clock)

	for i := 0; i < 5; i++ {
		r.Tick()
		clock.Advance(10 * time.Millisecond)
	}
	assert.InDelta(t, 100.0, r.Rate(), 1e-9)
}

func TestRateEstimatorWindowForgetsOldIntervals(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	r := NewRateEstimator(4, clock)

	// Slow start: 100ms intervals.
	for i := 0; i < 5; i++ {
		r.Tick()
		clock.Advance(100 * time.Millisecond)
	}
	// Then enough fast intervals to fill the window.
	for i := 0; i < 5; i++ {
		r.Tick()
		clock.Advance(10 * time.Millisecond)
	}
	assert.InDelta(t, 100.0, r.Rate(), 1e-9)
}
