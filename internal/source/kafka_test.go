package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 127.0.0.1:1 refuses connections immediately, so dial failures are fast
// and deterministic.
const deadBroker = "127.0.0.1:1"

func deadReaderSource(dial func(ctx context.Context, addr string) error) *KafkaSource {
	return &KafkaSource{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  []string{deadBroker},
			Topic:    "events",
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  10 * time.Millisecond,
		}),
		brokers:     []string{deadBroker},
		pollTimeout: 10 * time.Millisecond,
		dial:        dial,
	}
}

func TestNewKafkaSourceRejectsEmptyConfig(t *testing.T) {
	_, err := NewKafkaSource(KafkaConfig{Topic: "events"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewKafkaSource(KafkaConfig{Brokers: []string{deadBroker}})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewKafkaSourceUnreachableBroker(t *testing.T) {
	_, err := NewKafkaSource(KafkaConfig{
		Brokers:     []string{deadBroker},
		Topic:       "events",
		PollTimeout: 100 * time.Millisecond,
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKafkaPollReportsBrokerGoingDown(t *testing.T) {
	src := deadReaderSource(func(ctx context.Context, addr string) error {
		return errors.New("connection refused")
	})
	defer src.Close()

	// The reader retries dial failures internally, so every poll times out
	// and returns nothing until the liveness check kicks in.
	for i := 0; i < livenessCheckEvery-1; i++ {
		records, err := src.Poll(context.Background())
		require.NoError(t, err)
		require.Empty(t, records)
	}

	_, err := src.Poll(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestKafkaPollToleratesQuietTopic(t *testing.T) {
	dials := 0
	src := deadReaderSource(func(ctx context.Context, addr string) error {
		dials++
		return nil
	})
	defer src.Close()

	// A reachable broker with no traffic stays an empty stream forever.
	for i := 0; i < livenessCheckEvery+1; i++ {
		records, err := src.Poll(context.Background())
		require.NoError(t, err)
		require.Empty(t, records)
	}
	assert.Equal(t, 1, dials, "liveness should be re-checked once per budget")
}

func TestKafkaPollHonorsCancellation(t *testing.T) {
	src := deadReaderSource(func(ctx context.Context, addr string) error { return nil })
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Poll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
