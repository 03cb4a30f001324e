// Package stream defines the canonical sample model and the normalization of
// raw source payloads into it.
package stream

import (
	"errors"
	"time"
)

// Sample is one normalized observation. Immutable once constructed.
type Sample struct {
	Timestamp time.Time
	Value     float64
	Category  string

	// Synthetic marks samples fabricated by the idle fallback rather than
	// read from the source.
	Synthetic bool
}

// Normalization failures. All are recoverable: callers drop the record and
// keep consuming.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrIncompleteRecord = errors.New("incomplete record")
)
