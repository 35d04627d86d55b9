package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_TryLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 12, 6, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }

	ok, err := l.TryLock(ctx, "weekly_report:1791784800", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.TryLock(ctx, "weekly_report:1791784800", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	ok, err = l.TryLock(ctx, "restock:1791784800", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")
	assert.Equal(t, 2, l.Size())
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 12, 6, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }

	ok, _ := l.TryLock(ctx, "heartbeat", 2*time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err := l.TryLock(ctx, "heartbeat", 2*time.Minute)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, l.Size())
}

func TestMemoryLocker_SingleWinnerUnderContention(t *testing.T) {
	l := NewMemoryLocker()
	var winners atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.TryLock(context.Background(), "restock", time.Minute); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}
