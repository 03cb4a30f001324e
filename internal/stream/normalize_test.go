package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWellFormedRecord(t *testing.T) {
	n := Normalizer{ValueField: "temperature"}
	raw := []byte(`{"timestamp": "2025-01-11T18:15:00Z", "temperature": 225.0}`)

	s, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, 225.0, s.Value)
	assert.Equal(t, DefaultCategory, s.Category)
	assert.Equal(t, time.Date(2025, 1, 11, 18, 15, 0, 0, time.UTC), s.Timestamp)
	assert.False(t, s.Synthetic)

	// Parsing is idempotent: re-normalizing yields an equal timestamp.
	again, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.True(t, s.Timestamp.Equal(again.Timestamp))
}

func TestNormalizeProjectRecord(t *testing.T) {
	n := Normalizer{ValueField: "sentiment"}
	raw := []byte(`{"message":"hi","author":"Eve","timestamp":"2025-01-11 18:15:00","category":"humor","sentiment":0.87}`)

	s, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "humor", s.Category)
	assert.InDelta(t, 0.87, s.Value, 1e-9)
	assert.Equal(t, time.Date(2025, 1, 11, 18, 15, 0, 0, time.UTC), s.Timestamp)
}

func TestNormalizeValueFieldFallback(t *testing.T) {
	n := Normalizer{ValueField: "sentiment"}
	s, err := n.Normalize([]byte(`{"timestamp": 1736619300, "value": 0.5}`))
	require.NoError(t, err)
	assert.Equal(t, 0.5, s.Value)
}

func TestNormalizeFailures(t *testing.T) {
	n := Normalizer{ValueField: "sentiment"}
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `hello world`, ErrMalformedPayload},
		{"json array", `[1,2,3]`, ErrMalformedPayload},
		{"missing timestamp", `{"sentiment": 0.5}`, ErrIncompleteRecord},
		{"missing value", `{"timestamp": "2025-01-11T18:15:00Z"}`, ErrIncompleteRecord},
		{"non-numeric value", `{"timestamp": "2025-01-11T18:15:00Z", "sentiment": "high"}`, ErrIncompleteRecord},
		{"bad timestamp", `{"timestamp": "yesterday-ish", "sentiment": 0.5}`, ErrInvalidTimestamp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	n := Normalizer{}
	_, err := n.Normalize([]byte{0xff, 0xfe, '{', '}'})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseTimestamp(t *testing.T) {
	utc := time.Date(2025, 1, 11, 18, 15, 0, 0, time.UTC)
	cases := []struct {
		name string
		raw  any
		want time.Time
	}{
		{"epoch float", float64(utc.Unix()), utc},
		{"epoch int", int(utc.Unix()), utc},
		{"iso with zone", "2025-01-11T18:15:00Z", utc},
		{"iso with offset", "2025-01-11T19:15:00+01:00", utc},
		{"iso without zone", "2025-01-11T18:15:00", utc},
		{"naive local", "2025-01-11 18:15:00", utc},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimestamp(tc.raw)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp(true)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}
