// Command insights consumes a live event stream (Kafka topic or tailed
// file) and shows rolling analytics in the terminal: a value/rolling-average
// chart, top categories over a sliding window, a session leaderboard, and
// stall/idle indicators.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/buzzline/streaming-insights/internal/config"
	"github.com/buzzline/streaming-insights/internal/engine"
	"github.com/buzzline/streaming-insights/internal/source"
	"github.com/buzzline/streaming-insights/internal/stream"
)

func main() {
	cfg := config.Load()

	var brokers string
	flag.StringVar(&cfg.Mode, "mode", cfg.Mode, "Ingest mode: file or kafka")
	flag.StringVar(&cfg.Topic, "topic", cfg.Topic, "Kafka topic")
	flag.StringVar(&cfg.GroupID, "group", cfg.GroupID, "Kafka consumer group id (default: fresh per session)")
	flag.StringVar(&brokers, "brokers", strings.Join(cfg.Brokers, ","), "Comma-separated Kafka broker addresses")
	flag.StringVar(&cfg.DataFile, "file", cfg.DataFile, "Data file to tail in file mode")
	flag.IntVar(&cfg.RollingWindow, "rolling-window", cfg.RollingWindow, "Rolling average window size")
	flag.IntVar(&cfg.HistorySize, "history", cfg.HistorySize, "Chart history size")
	flag.IntVar(&cfg.BarWindow, "bar-window", cfg.BarWindow, "Sliding window size for the top-N table")
	flag.IntVar(&cfg.TopN, "top-n", cfg.TopN, "Categories shown in the top-N table")
	flag.Float64Var(&cfg.PlotFPS, "fps", cfg.PlotFPS, "Chart refresh rate upper bound (frames per second)")
	flag.Float64Var(&cfg.StallThreshold, "stall-threshold", cfg.StallThreshold, "Max range over a full rolling window before flagging a stall")
	flag.DurationVar(&cfg.IdleFallback, "idle-fallback", cfg.IdleFallback, "Synthesize samples after this much source silence (0 disables)")
	flag.StringVar(&cfg.ValueField, "value-field", cfg.ValueField, "Record field holding the numeric value")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every applied sample")
	flag.BoolVar(&cfg.AltScreen, "alt-screen", cfg.AltScreen, "Use the terminal alternate screen buffer")
	flag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Structured log destination (stdout belongs to the chart)")
	flag.Parse()
	cfg.Brokers = splitBrokers(brokers)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}

	sessionID := uuid.NewString()[:8]
	if cfg.GroupID == "" {
		// A fresh group per session keeps restarts reading from the latest
		// offsets instead of replaying the whole topic.
		cfg.GroupID = "insights-" + sessionID
	}

	logger, logClose, err := openLogger(cfg.LogFile, sessionID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open log file:", err)
		os.Exit(2)
	}
	defer logClose()

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("session ended with error")
		fmt.Fprintln(os.Stderr, "insights:", err)
		os.Exit(1)
	}
	logger.Info().Msg("session closed")
}

func run(cfg config.Config, logger zerolog.Logger) error {
	src, err := openSource(cfg, logger)
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		RollingWindow:  cfg.RollingWindow,
		HistorySize:    cfg.HistorySize,
		BarWindow:      cfg.BarWindow,
		TopN:           cfg.TopN,
		RenderFPS:      cfg.PlotFPS,
		StallThreshold: cfg.StallThreshold,
		IdleThreshold:  cfg.IdleFallback,
		Categories:     cfg.Categories,
		ValueMin:       cfg.ValueMin,
		ValueMax:       cfg.ValueMax,
		LeaderboardK:   cfg.LeaderboardK,
	}, time.Now())

	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if cfg.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	program := tui.NewProgram(newModel(cfg), opts...)

	runner := &engine.Runner{
		Engine:     eng,
		Source:     src,
		Renderer:   &programRenderer{program: program},
		Normalizer: stream.Normalizer{ValueField: cfg.ValueField},
		Log:        logger,
		Verbose:    cfg.Verbose,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, stop := context.WithCancel(ctx)

	var g errgroup.Group
	var runErr error
	g.Go(func() error {
		defer stop()
		_, err := program.Run()
		return err
	})
	g.Go(func() error {
		// Quit the TUI when the session context ends (signal or TUI exit).
		<-ctx.Done()
		program.Quit()
		return nil
	})
	g.Go(func() error {
		if err := runner.Run(ctx); err != nil {
			runErr = err
			// Leave the chart up with the error banner; the user quits.
			program.Send(fatalMsg{err: err})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}

func openSource(cfg config.Config, logger zerolog.Logger) (source.Source, error) {
	switch cfg.Mode {
	case config.ModeKafka:
		logger.Info().
			Str("topic", cfg.Topic).
			Str("group", cfg.GroupID).
			Strs("brokers", cfg.Brokers).
			Msg("consuming from kafka")
		return source.NewKafkaSource(source.KafkaConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			PollTimeout: cfg.PollTimeout,
		})
	default:
		logger.Info().Str("path", cfg.DataFile).Msg("tailing file")
		return source.NewTailSource(cfg.DataFile, cfg.PollTimeout/10+time.Millisecond)
	}
}

func openLogger(path, sessionID string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Logger{}, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	writer := zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}
	logger := zerolog.New(writer).With().
		Timestamp().
		Str("session", sessionID).
		Logger()
	return logger, func() { _ = f.Close() }, nil
}

func splitBrokers(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// programRenderer hands snapshots to the bubbletea program. Send never
// blocks the ingestion loop.
type programRenderer struct {
	program *tui.Program
}

func (r *programRenderer) Render(s engine.Snapshot) error {
	r.program.Send(snapshotMsg{snap: s})
	return nil
}
