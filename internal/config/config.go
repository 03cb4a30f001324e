// Package config loads the tuning surface from the environment (with .env
// support) and validates it. Flags registered by the command override
// whatever the environment provided.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Modes for the record source.
const (
	ModeFile  = "file"
	ModeKafka = "kafka"
)

// Config is the full tuning surface for one session.
type Config struct {
	// source
	Mode        string
	Topic       string
	GroupID     string
	Brokers     []string
	DataFile    string
	PollTimeout time.Duration

	// analytics
	RollingWindow  int
	HistorySize    int
	BarWindow      int
	TopN           int
	LeaderboardK   int
	StallThreshold float64
	IdleFallback   time.Duration

	// normalization / synthesis
	ValueField string
	Categories []string
	ValueMin   float64
	ValueMax   float64

	// render & diagnostics
	PlotFPS   float64
	Verbose   bool
	AltScreen bool
	LogFile   string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Mode:        envStr("PROJECT_INGEST_MODE", ModeFile),
		Topic:       envStr("PROJECT_TOPIC", "buzzline-topic"),
		GroupID:     envStr("PROJECT_CONSUMER_GROUP_ID", ""),
		Brokers:     splitList(envStr("KAFKA_BROKER_ADDRESS", "127.0.0.1:9092")),
		DataFile:    envStr("PROJECT_DATA_FILE", "data/project_live.json"),
		PollTimeout: time.Duration(envInt("PROJECT_POLL_TIMEOUT_MS", 500)) * time.Millisecond,

		RollingWindow:  envInt("PROJECT_ROLLING_WINDOW_SIZE", 30),
		HistorySize:    envInt("PROJECT_HISTORY_SIZE", 600),
		BarWindow:      envInt("PROJECT_BAR_WINDOW", 200),
		TopN:           envInt("PROJECT_TOPN", 5),
		LeaderboardK:   envInt("PROJECT_LEADERBOARD_K", 20),
		StallThreshold: envFloat("PROJECT_STALL_THRESHOLD", 0.2),
		IdleFallback:   time.Duration(envFloat("PROJECT_IDLE_FALLBACK_SECONDS", 0) * float64(time.Second)),

		ValueField: envStr("PROJECT_VALUE_FIELD", "sentiment"),
		Categories: splitList(envStr("PROJECT_CATEGORIES",
			"humor,tech,food,travel,entertainment,gaming,other")),
		ValueMin: envFloat("PROJECT_VALUE_MIN", 0),
		ValueMax: envFloat("PROJECT_VALUE_MAX", 1),

		PlotFPS:   envFloat("PROJECT_PLOT_FPS", 10),
		Verbose:   envInt("PROJECT_VERBOSE", 1) != 0,
		AltScreen: envInt("PROJECT_ALT_SCREEN", 1) != 0,
		LogFile:   envStr("PROJECT_LOG_FILE", "logs/insights.log"),
	}
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.Mode != ModeFile && c.Mode != ModeKafka {
		return fmt.Errorf("ingest mode must be %q or %q (got %q)", ModeFile, ModeKafka, c.Mode)
	}
	if c.Mode == ModeKafka {
		if len(c.Brokers) == 0 {
			return fmt.Errorf("kafka mode requires at least one broker address")
		}
		if c.Topic == "" {
			return fmt.Errorf("kafka mode requires a topic")
		}
	}
	if c.Mode == ModeFile && c.DataFile == "" {
		return fmt.Errorf("file mode requires a data file path")
	}
	if c.RollingWindow < 1 {
		return fmt.Errorf("rolling window size must be >= 1")
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("history size must be >= 1")
	}
	if c.BarWindow < 1 {
		return fmt.Errorf("bar window size must be >= 1")
	}
	if c.TopN < 1 {
		return fmt.Errorf("top-n must be >= 1")
	}
	if c.LeaderboardK < 1 {
		return fmt.Errorf("leaderboard k must be >= 1")
	}
	if c.PlotFPS < 1 {
		return fmt.Errorf("plot fps must be >= 1")
	}
	if c.StallThreshold < 0 {
		return fmt.Errorf("stall threshold must be >= 0")
	}
	if c.IdleFallback < 0 {
		return fmt.Errorf("idle fallback seconds must be >= 0")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll timeout must be > 0")
	}
	if c.ValueMax < c.ValueMin {
		return fmt.Errorf("value range is inverted (min %v > max %v)", c.ValueMin, c.ValueMax)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
