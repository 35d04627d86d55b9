package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is a process-local locker for single-instance deployments
// and tests. Expired keys are dropped lazily on the next TryLock.
type MemoryLocker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryLocker creates an empty in-memory locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// TryLock takes key for ttl unless an unexpired holder exists
func (l *MemoryLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, exp := range l.expires {
		if !now.Before(exp) {
			delete(l.expires, k)
		}
	}

	if _, held := l.expires[key]; held {
		return false, nil
	}
	l.expires[key] = now.Add(ttl)
	return true, nil
}

// Size returns the number of held locks
func (l *MemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.expires)
}
