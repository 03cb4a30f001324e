package engine

import "time"

// RenderScheduler rate-limits redraws to a target frequency regardless of
// how fast samples arrive. It bounds the redraw rate from above only; the
// caller decides when to ask.
type RenderScheduler struct {
	interval   time.Duration
	lastRender time.Time
}

// NewRenderScheduler targets fps redraws per second (minimum 1).
func NewRenderScheduler(fps float64) *RenderScheduler {
	if fps < 1 {
		fps = 1
	}
	return &RenderScheduler{interval: time.Duration(float64(time.Second) / fps)}
}

// ShouldRender returns true and consumes the token iff at least one render
// interval has passed since the last granted render.
func (r *RenderScheduler) ShouldRender(now time.Time) bool {
	if !r.lastRender.IsZero() && now.Sub(r.lastRender) < r.interval {
		return false
	}
	r.lastRender = now
	return true
}
