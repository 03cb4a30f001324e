package stream

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/relvacode/iso8601"
)

// naiveLayout is the zone-less layout the project producer writes; values
// are taken as UTC.
const naiveLayout = "2006-01-02 15:04:05"

// DefaultCategory is assigned when a record carries no category field.
const DefaultCategory = "other"

// Normalizer turns raw payloads into Samples. The value is read from
// ValueField first (e.g. "sentiment" or "temperature"), then from "value".
// Pure: no side effects, no logging.
type Normalizer struct {
	ValueField string
}

// Normalize decodes a raw payload as UTF-8 JSON and extracts a Sample.
func (n Normalizer) Normalize(raw []byte) (Sample, error) {
	if !utf8.Valid(raw) {
		return Sample{}, fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformedPayload)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return n.NormalizeFields(fields)
}

// NormalizeFields extracts a Sample from an already-decoded record.
func (n Normalizer) NormalizeFields(fields map[string]any) (Sample, error) {
	rawTS, ok := fields["timestamp"]
	if !ok || rawTS == nil {
		return Sample{}, fmt.Errorf("%w: missing timestamp", ErrIncompleteRecord)
	}

	value, ok := n.lookupValue(fields)
	if !ok {
		return Sample{}, fmt.Errorf("%w: missing value field %q", ErrIncompleteRecord, n.valueField())
	}

	ts, err := ParseTimestamp(rawTS)
	if err != nil {
		return Sample{}, err
	}

	category := DefaultCategory
	if c, ok := fields["category"].(string); ok && c != "" {
		category = c
	}

	return Sample{Timestamp: ts, Value: value, Category: category}, nil
}

func (n Normalizer) valueField() string {
	if n.ValueField != "" {
		return n.ValueField
	}
	return "value"
}

func (n Normalizer) lookupValue(fields map[string]any) (float64, bool) {
	for _, key := range []string{n.valueField(), "value"} {
		switch v := fields[key].(type) {
		case float64:
			return v, true
		case json.Number:
			f, err := v.Float64()
			if err == nil {
				return f, true
			}
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// ParseTimestamp accepts epoch seconds (numeric), ISO-8601 with or without a
// zone marker, and the producer's naive "YYYY-MM-DD HH:MM:SS" format.
// Zone-less values are taken as UTC.
func ParseTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case time.Time:
		return v, nil
	case string:
		if t, err := time.Parse(naiveLayout, v); err == nil {
			return t.UTC(), nil
		}
		if t, err := iso8601.ParseString(v); err == nil {
			return t.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, raw)
	}
}
