package engine

import (
	"math/rand"
	"time"

	"github.com/buzzline/streaming-insights/internal/stream"
)

// Watchdog tracks how long ago the last real sample arrived. When the idle
// threshold elapses the source is considered stale and, if fallback is
// enabled, the loop may synthesize samples to keep the display alive.
// Synthetic samples never feed back into the idle clock.
type Watchdog struct {
	idleThreshold time.Duration
	lastReal      time.Time
}

// NewWatchdog starts the idle clock at now. threshold <= 0 disables the
// synthetic fallback entirely.
func NewWatchdog(threshold time.Duration, now time.Time) *Watchdog {
	return &Watchdog{idleThreshold: threshold, lastReal: now}
}

// MarkReal resets the idle clock. Called for real samples only.
func (w *Watchdog) MarkReal(now time.Time) { w.lastReal = now }

// FallbackEnabled reports whether synthetic samples may be produced.
func (w *Watchdog) FallbackEnabled() bool { return w.idleThreshold > 0 }

// Stale reports whether no real sample has arrived for the idle threshold.
func (w *Watchdog) Stale(now time.Time) bool {
	if w.idleThreshold <= 0 {
		return false
	}
	return now.Sub(w.lastReal) >= w.idleThreshold
}

// Synthesizer fabricates plausible samples from the configured category set
// and value range.
type Synthesizer struct {
	categories []string
	min, max   float64
	rnd        *rand.Rand
}

// NewSynthesizer seeds the generator; pass 0 for a time-based seed.
func NewSynthesizer(categories []string, min, max float64, seed int64) *Synthesizer {
	if len(categories) == 0 {
		categories = []string{stream.DefaultCategory}
	}
	if max < min {
		min, max = max, min
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthesizer{
		categories: categories,
		min:        min,
		max:        max,
		rnd:        rand.New(rand.NewSource(seed)),
	}
}

// Sample returns a synthetic sample stamped at now.
func (s *Synthesizer) Sample(now time.Time) stream.Sample {
	return stream.Sample{
		Timestamp: now,
		Value:     s.min + s.rnd.Float64()*(s.max-s.min),
		Category:  s.categories[s.rnd.Intn(len(s.categories))],
		Synthetic: true,
	}
}
