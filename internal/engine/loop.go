package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/buzzline/streaming-insights/internal/source"
	"github.com/buzzline/streaming-insights/internal/stream"
)

// Renderer receives snapshots at the scheduled redraw rate. A failed render
// skips that frame and never aborts ingestion.
type Renderer interface {
	Render(Snapshot) error
}

// Runner orchestrates one ingestion session: poll the source, normalize,
// feed the engine, consult the watchdog on empty polls, and hand snapshots
// to the renderer when the scheduler allows.
type Runner struct {
	Engine     *Engine
	Source     source.Source
	Renderer   Renderer
	Normalizer stream.Normalizer
	Log        zerolog.Logger

	// Verbose logs every applied sample, as the original consumers did.
	Verbose bool

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// Run consumes until ctx is cancelled (returns nil) or the source becomes
// unavailable (returns the source error). The source is closed on every
// exit path.
func (r *Runner) Run(ctx context.Context) error {
	defer func() {
		if err := r.Source.Close(); err != nil {
			r.Log.Warn().Err(err).Msg("closing source")
		}
	}()

	now := r.Now
	if now == nil {
		now = time.Now
	}

	wasStalled := false
	for {
		if ctx.Err() != nil {
			return nil
		}

		records, err := r.Source.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			r.Log.Error().Err(err).Msg("source failed")
			return err
		}

		applied := 0
		for _, rec := range records {
			s, err := r.Normalizer.Normalize(rec.Payload)
			if err != nil {
				r.Engine.DropRecord()
				r.Log.Debug().Err(err).
					Int64("offset", rec.Offset).
					Int("partition", rec.Partition).
					Msg("record dropped")
				continue
			}
			r.Engine.Apply(s, now())
			applied++
			if r.Verbose {
				r.Log.Info().
					Str("tag", "REAL").
					Time("event_time", s.Timestamp).
					Str("category", s.Category).
					Float64("value", s.Value).
					Msg("sample")
			}
		}

		if applied == 0 {
			if s, ok := r.Engine.MaybeSynthesize(now()); ok {
				r.Engine.Apply(s, now())
				if r.Verbose {
					r.Log.Info().
						Str("tag", "SYNTH").
						Str("category", s.Category).
						Float64("value", s.Value).
						Msg("sample")
				}
			}
		}

		if stalled := r.Engine.Stalled(); stalled != wasStalled {
			wasStalled = stalled
			if stalled {
				r.Log.Info().Msg("stall detected: values plateaued over the rolling window")
			}
		}

		if r.Engine.ShouldRender(now()) {
			if err := r.Renderer.Render(r.Engine.Snapshot()); err != nil {
				r.Log.Warn().Err(err).Msg("render failed, frame skipped")
			}
		}
	}
}
