package glove

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/glove.report/internal/timeutil"
)

// RateEstimator estimates the sampling rate of a polling loop from the
// most recent n inter-sample intervals. It is not safe for concurrent
// use; call Tick from the single polling goroutine.
type RateEstimator struct {
	clock timeutil.Clock

	intervals []float64
	next      int
	count     int

	last    time.Time
	hasLast bool
}

// NewRateEstimator creates an estimator over a window of n intervals.
// A nil clock selects the real clock.
func NewRateEstimator(n int, clock timeutil.Clock) *RateEstimator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &RateEstimator{
		clock:     clock,
		intervals: make([]float64, n),
	}
}

// Tick records that a sample just completed. The first call only seeds
// the reference time.
func (r *RateEstimator) Tick() {
	now := r.clock.Now()
	if r.hasLast {
		r.intervals[r.next] = now.Sub(r.last).Seconds()
		r.next = (r.next + 1) % len(r.intervals)
		if r.count < len(r.intervals) {
			r.count++
		}
	}
	r.last = now
	r.hasLast = true
}

// Rate returns the estimated sampling rate in samples per second, or 0
// before two samples have been observed.
func (r *RateEstimator) Rate() float64 {
	if r.count == 0 {
		return 0
	}
	mean := stat.Mean(r.intervals[:r.count], nil)
	if mean <= 0 {
		return 0
	}
	return 1 / mean
}
