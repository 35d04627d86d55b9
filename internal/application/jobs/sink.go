// Package jobs holds the periodic maintenance tasks run by the
// scheduler. Each task appends human-readable lines to its own text
// sink and records failures there. A task returns an error only when
// its sink cannot be written.
package jobs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Timestamp layouts used in sink lines
const (
	heartbeatLayout = "02/01/2006-15:04:05"
	logLayout       = "2006-01-02 15:04:05"
)

// Sink receives the lines written by a job
type Sink interface {
	WriteLines(lines ...string) error
}

// FileSink appends lines to a text file, creating it and its directory
// on first use
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink creates a sink appending to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the file the sink appends to
func (s *FileSink) Path() string {
	return s.path
}

// WriteLines appends each line followed by a newline in a single write
func (s *FileSink) WriteLines(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create sink directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open sink %s: %w", s.path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sink %s: %w", s.path, err)
	}
	return f.Close()
}

// MultiSink writes to every sink in order. A failing sink does not stop
// the others; all failures are returned together.
type MultiSink []Sink

// WriteLines forwards lines to each sink
func (m MultiSink) WriteLines(lines ...string) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteLines(lines...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
