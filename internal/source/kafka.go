package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// livenessCheckEvery is the number of consecutive empty polls after which
// the broker is dialed again. ReadMessage retries dial failures internally,
// so a dead broker and a quiet topic both surface as poll timeouts; the
// periodic dial is what tells them apart.
const livenessCheckEvery = 20

// KafkaConfig describes the broker subscription.
type KafkaConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	PollTimeout time.Duration
}

// KafkaSource pulls records from a Kafka topic as part of a consumer group.
type KafkaSource struct {
	reader      *kafka.Reader
	brokers     []string
	pollTimeout time.Duration
	emptyPolls  int

	// dial is swappable for tests; defaults to a kafka TCP dial.
	dial func(ctx context.Context, addr string) error
}

func dialBroker(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// NewKafkaSource dials the brokers and opens a reader for the configured
// topic and group. An unreachable cluster fails here instead of degrading
// into an endless stream of empty polls.
func NewKafkaSource(cfg KafkaConfig) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: no brokers configured", ErrUnavailable)
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("%w: no topic configured", ErrUnavailable)
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 500 * time.Millisecond
	}
	s := &KafkaSource{
		brokers:     cfg.Brokers,
		pollTimeout: pollTimeout,
		dial:        dialBroker,
	}
	if err := s.checkLiveness(context.Background()); err != nil {
		return nil, err
	}
	s.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  pollTimeout,
	})
	return s, nil
}

// checkLiveness dials the brokers until one answers.
func (s *KafkaSource) checkLiveness(ctx context.Context) error {
	var lastErr error
	for _, addr := range s.brokers {
		dialCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
		err := s.dial(dialCtx, addr)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("%w: no reachable broker: %v", ErrUnavailable, lastErr)
}

// Poll fetches at most one message, waiting up to the poll timeout. A
// timeout yields an empty batch while the broker stays reachable; a broker
// that stops answering is fatal for the session.
func (s *KafkaSource) Poll(ctx context.Context) ([]Record, error) {
	pollCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
	defer cancel()

	msg, err := s.reader.ReadMessage(pollCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			s.emptyPolls++
			if s.emptyPolls >= livenessCheckEvery {
				s.emptyPolls = 0
				if err := s.checkLiveness(ctx); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.emptyPolls = 0
	return []Record{{
		Payload:   msg.Value,
		Offset:    msg.Offset,
		Partition: msg.Partition,
	}}, nil
}

// Close shuts down the reader and leaves the consumer group.
func (s *KafkaSource) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}
