package engine

import "github.com/buzzline/streaming-insights/internal/window"

// RollingAggregator maintains a rolling average and a plateau predicate over
// the most recent values.
type RollingAggregator struct {
	win *window.Window[float64]
}

// NewRollingAggregator returns an aggregator over a window of the given size.
func NewRollingAggregator(size int) *RollingAggregator {
	return &RollingAggregator{win: window.New[float64](size)}
}

// Observe pushes v and returns the mean over the current window contents.
// While warming up the mean covers however many values have been seen.
func (a *RollingAggregator) Observe(v float64) float64 {
	a.win.Push(v)
	avg, _ := a.Average()
	return avg
}

// Average returns the current rolling average. The second return is false
// when no values have been observed yet.
func (a *RollingAggregator) Average() (float64, bool) {
	items := a.win.Items()
	if len(items) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range items {
		sum += v
	}
	return sum / float64(len(items)), true
}

// Stalled reports whether the series has plateaued: the window is full and
// its max-min range is within threshold. A partially filled window is never
// considered stalled.
func (a *RollingAggregator) Stalled(threshold float64) bool {
	if a.win.Len() < a.win.Cap() {
		return false
	}
	items := a.win.Items()
	lo, hi := items[0], items[0]
	for _, v := range items[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi-lo <= threshold
}

// Values returns the window contents, oldest first.
func (a *RollingAggregator) Values() []float64 { return a.win.Items() }
