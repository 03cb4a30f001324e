package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TailSource reads lines appended to a file after the session starts. The
// file is opened at its current end, so pre-existing content is never seen.
type TailSource struct {
	file         *os.File
	reader       *bufio.Reader
	partial      strings.Builder
	pollInterval time.Duration
	offset       int64
}

// NewTailSource opens path and seeks to its end. A missing file is a fatal
// source error, matching the broker-connect failure mode.
func NewTailSource(path string, pollInterval time.Duration) (*TailSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	return &TailSource{
		file:         f,
		reader:       bufio.NewReader(f),
		pollInterval: pollInterval,
	}, nil
}

// Poll drains every complete line currently available. When none are, it
// sleeps one poll interval and checks once more, so an idle file returns an
// empty batch after a bounded wait.
func (s *TailSource) Poll(ctx context.Context) ([]Record, error) {
	records, err := s.drain()
	if err != nil || len(records) > 0 {
		return records, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.pollInterval):
	}
	return s.drain()
}

// drain consumes complete lines; a trailing fragment without a newline is
// buffered until the producer finishes the line. Anything other than
// running out of data is a real read failure and ends the session.
func (s *TailSource) drain() ([]Record, error) {
	var records []Record
	for {
		chunk, err := s.reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// Partial line: keep it for the next poll.
			s.partial.WriteString(chunk)
			return records, nil
		}
		if err != nil {
			return records, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		line := s.partial.String() + chunk
		s.partial.Reset()
		s.offset++
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, Record{Payload: []byte(line), Offset: s.offset})
	}
}

// Close releases the file handle.
func (s *TailSource) Close() error {
	return s.file.Close()
}
