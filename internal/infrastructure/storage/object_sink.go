package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

const uploadTimeout = 30 * time.Second

// Uploader stores one object
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

// ObjectSink archives each batch of job output lines as its own text
// object named <prefix>/<UTC timestamp>.txt
type ObjectSink struct {
	uploader Uploader
	prefix   string
	now      func() time.Time
}

// NewObjectSink creates a sink writing under prefix
func NewObjectSink(uploader Uploader, prefix string) *ObjectSink {
	return &ObjectSink{
		uploader: uploader,
		prefix:   strings.Trim(prefix, "/"),
		now:      time.Now,
	}
}

// WriteLines uploads lines as a newline-terminated text object
func (s *ObjectSink) WriteLines(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	if s.uploader == nil {
		return errors.New("object sink has no uploader")
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	key := s.keyFor(s.now())
	if err := s.uploader.Upload(ctx, key, []byte(b.String()), "text/plain; charset=utf-8"); err != nil {
		return fmt.Errorf("archive job output: %w", err)
	}
	return nil
}

func (s *ObjectSink) keyFor(t time.Time) string {
	name := t.UTC().Format("20060102T150405Z") + ".txt"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}
