// Package source provides the two interchangeable record sources: a Kafka
// consumer and a tailed file. Both surface raw payloads; decoding is the
// normalizer's job.
package source

import (
	"context"
	"errors"
)

// ErrUnavailable means the source cannot deliver records at all (broker
// unreachable, file missing). It terminates the ingestion session; per-record
// problems never surface through it.
var ErrUnavailable = errors.New("source unavailable")

// Record is one raw entry pulled from a source. Offset and Partition are
// carried for logging only.
type Record struct {
	Payload   []byte
	Offset    int64
	Partition int
}

// Source is a pull-based record stream.
//
// Poll blocks for at most the source's poll interval and returns zero or
// more records; an empty batch with a nil error means nothing arrived in
// time. Close releases the underlying handle and is safe to call after a
// failed Poll.
type Source interface {
	Poll(ctx context.Context) ([]Record, error)
	Close() error
}
