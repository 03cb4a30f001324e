// Package engine implements the streaming analytics core: bounded rolling
// windows, stall detection, windowed top-N category counts, the idle
// watchdog with synthetic fallback, and the render-rate scheduler. One
// Engine owns all window state for one ingestion session.
package engine

import (
	"time"

	"github.com/keilerkonzept/topk"
	"github.com/keilerkonzept/topk/heap"

	"github.com/buzzline/streaming-insights/internal/stream"
	"github.com/buzzline/streaming-insights/internal/window"
)

// Config carries the per-session tuning knobs.
type Config struct {
	RollingWindow  int     // rolling average length (W)
	HistorySize    int     // points kept for the chart (H)
	BarWindow      int     // labels kept for the top-N table (B)
	TopN           int     // rows shown in the top-N table
	RenderFPS      float64 // redraw rate upper bound
	StallThreshold float64 // max range over a full rolling window

	// IdleThreshold enables the synthetic fallback when > 0.
	IdleThreshold time.Duration

	// Synthetic sample generation.
	Categories []string
	ValueMin   float64
	ValueMax   float64
	Seed       int64

	// LeaderboardK sizes the session-wide approximate category leaderboard.
	LeaderboardK int
}

// Engine aggregates all rolling state for one session. It is owned by the
// ingestion loop; renderers only ever see copies via Snapshot.
type Engine struct {
	history   *window.Window[stream.Sample]
	rollAvg   *window.Window[float64]
	rolling   *RollingAggregator
	freq      *FrequencyWindow
	watchdog  *Watchdog
	scheduler *RenderScheduler
	synth     *Synthesizer
	board     *topk.Sketch
	metrics   *ingestMetrics

	stallThreshold float64
	topN           int
}

// New constructs a fresh engine; now seeds the idle clock.
func New(cfg Config, now time.Time) *Engine {
	topN := cfg.TopN
	if topN < 1 {
		topN = 1
	}
	boardK := cfg.LeaderboardK
	if boardK < 1 {
		boardK = topN
	}
	return &Engine{
		history:        window.New[stream.Sample](cfg.HistorySize),
		rollAvg:        window.New[float64](cfg.HistorySize),
		rolling:        NewRollingAggregator(cfg.RollingWindow),
		freq:           NewFrequencyWindow(cfg.BarWindow),
		watchdog:       NewWatchdog(cfg.IdleThreshold, now),
		scheduler:      NewRenderScheduler(cfg.RenderFPS),
		synth:          NewSynthesizer(cfg.Categories, cfg.ValueMin, cfg.ValueMax, cfg.Seed),
		board:          topk.New(boardK),
		metrics:        newIngestMetrics(),
		stallThreshold: cfg.StallThreshold,
		topN:           topN,
	}
}

// Apply feeds one sample through every window. Samples must be applied in
// the order they were normalized; now is the arrival instant used for the
// idle clock and ingest counters.
func (e *Engine) Apply(s stream.Sample, now time.Time) {
	e.history.Push(s)
	avg := e.rolling.Observe(s.Value)
	e.rollAvg.Push(avg)
	e.freq.Observe(s.Category)
	e.board.Incr(s.Category)
	e.metrics.observeSample(now, s.Synthetic)
	if !s.Synthetic {
		e.watchdog.MarkReal(now)
	}
}

// DropRecord counts a record that failed normalization.
func (e *Engine) DropRecord() {
	e.metrics.observeDrop()
}

// MaybeSynthesize returns a fabricated sample when the source has been idle
// past the threshold and fallback is enabled. The caller applies it through
// the normal path.
func (e *Engine) MaybeSynthesize(now time.Time) (stream.Sample, bool) {
	if !e.watchdog.FallbackEnabled() || !e.watchdog.Stale(now) {
		return stream.Sample{}, false
	}
	return e.synth.Sample(now), true
}

// Stalled reports the plateau predicate over the rolling window.
func (e *Engine) Stalled() bool {
	return e.rolling.Stalled(e.stallThreshold)
}

// ShouldRender consumes a render token when the target FPS allows a redraw.
func (e *Engine) ShouldRender(now time.Time) bool {
	return e.scheduler.ShouldRender(now)
}

// Snapshot is a consistent copy of everything a renderer needs. It shares no
// memory with the engine's windows.
type Snapshot struct {
	Times       []time.Time
	Values      []float64
	RollingAvg  []float64
	TopN        []CategoryCount
	Leaderboard []CategoryCount
	Stalled     bool
	Last        stream.Sample
	HasLast     bool
	Stats       Stats
}

// Snapshot copies the current window contents for rendering.
func (e *Engine) Snapshot() Snapshot {
	samples := e.history.Items()
	times := make([]time.Time, len(samples))
	values := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Timestamp
		values[i] = s.Value
	}
	last, hasLast := e.history.Last()
	return Snapshot{
		Times:       times,
		Values:      values,
		RollingAvg:  e.rollAvg.Items(),
		TopN:        e.freq.TopN(e.topN),
		Leaderboard: boardRows(e.board.SortedSlice()),
		Stalled:     e.Stalled(),
		Last:        last,
		HasLast:     hasLast,
		Stats:       e.metrics.snapshot(),
	}
}

func boardRows(items []heap.Item) []CategoryCount {
	out := make([]CategoryCount, len(items))
	for i, it := range items {
		out[i] = CategoryCount{Category: it.Item, Count: int(it.Count)}
	}
	return out
}
