package vox

import "math"

// IntervalTimer fires an overflow once per Interval seconds and reports
// the fractional position within the current interval, used to drive the
// 20ms control-block cadence and the lambda used to interpolate between
// the current and next reflection sets.
type IntervalTimer struct {
	Interval   float64
	time       float64
	overflowed bool
}

// NewIntervalTimer starts a fresh timer that has not yet overflowed.
func NewIntervalTimer(interval float64) *IntervalTimer {
	return &IntervalTimer{Interval: interval}
}

// NewIntervalTimerOverflowed starts a timer already reporting an overflow,
// so the owner's first Process call performs its block-boundary work
// immediately instead of waiting a full interval.
func NewIntervalTimerOverflowed(interval float64) *IntervalTimer {
	return &IntervalTimer{Interval: interval, overflowed: true}
}

func (t *IntervalTimer) Overflowed() bool { return t.overflowed }

// Progress returns the fractional position (lambda) within the interval.
func (t *IntervalTimer) Progress() float64 { return t.time / t.Interval }

// Update advances the timer by dt seconds and recomputes Overflowed.
func (t *IntervalTimer) Update(dt float64) {
	t.time += dt
	t.overflowed = t.time >= t.Interval
	if t.Interval != 0 {
		t.time = math.Mod(t.time, t.Interval)
	}
}
