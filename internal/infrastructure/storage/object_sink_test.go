package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/crm/internal/application/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ jobs.Sink = (*ObjectSink)(nil)

type recordedUpload struct {
	key         string
	body        string
	contentType string
	hasDeadline bool
}

type fakeUploader struct {
	uploads []recordedUpload
	err     error
}

func (u *fakeUploader) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	if u.err != nil {
		return u.err
	}
	_, hasDeadline := ctx.Deadline()
	u.uploads = append(u.uploads, recordedUpload{key, string(body), contentType, hasDeadline})
	return nil
}

func TestObjectSink_WriteLines(t *testing.T) {
	uploader := &fakeUploader{}
	sink := NewObjectSink(uploader, "/reports/weekly/")
	sink.now = func() time.Time {
		return time.Date(2026, 10, 12, 8, 0, 3, 0, time.FixedZone("CEST", 2*3600))
	}

	err := sink.WriteLines("2026-10-12 08:00:03 - Report: 2 customers, 3 orders, 1207.50 revenue.")

	require.NoError(t, err)
	require.Len(t, uploader.uploads, 1)
	up := uploader.uploads[0]
	assert.Equal(t, "reports/weekly/20261012T060003Z.txt", up.key)
	assert.Equal(t, "2026-10-12 08:00:03 - Report: 2 customers, 3 orders, 1207.50 revenue.\n", up.body)
	assert.Equal(t, "text/plain; charset=utf-8", up.contentType)
	assert.True(t, up.hasDeadline)
}

func TestObjectSink_EmptyPrefixAndNoLines(t *testing.T) {
	uploader := &fakeUploader{}
	sink := NewObjectSink(uploader, "")
	sink.now = func() time.Time { return time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC) }

	require.NoError(t, sink.WriteLines())
	assert.Empty(t, uploader.uploads)

	require.NoError(t, sink.WriteLines("a", "b"))
	require.Len(t, uploader.uploads, 1)
	assert.Equal(t, "20260105T060000Z.txt", uploader.uploads[0].key)
	assert.Equal(t, "a\nb\n", uploader.uploads[0].body)
}

func TestObjectSink_UploadError(t *testing.T) {
	sink := NewObjectSink(&fakeUploader{err: errors.New("access denied")}, "reports")

	err := sink.WriteLines("line")

	assert.ErrorContains(t, err, "archive job output: access denied")
}
