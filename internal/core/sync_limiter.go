package core

// sync_limiter.go serializes catalog and order syncs.
//
// Both syncs read the current state, fetch from upstream and merge. Running
// two at once could merge against a stale snapshot, so the limiter holds a
// single slot. A caller that cannot get the slot within maxWait fails with
// ErrTooManySyncs. WaitForDrain blocks until the running sync finishes and
// is used during shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySyncs is returned when a sync is already running and the wait
// timeout expires. Clients should retry after a short delay.
var ErrTooManySyncs = errors.New("another sync is in progress, please try again later")

// DefaultSyncMaxWait is how long to wait for the slot before rejecting.
const DefaultSyncMaxWait = 10 * time.Second

// SyncLimiter is a single-slot semaphore guarding sync runs.
type SyncLimiter struct {
	slot    chan struct{}
	maxWait time.Duration

	mu      sync.RWMutex
	running string // name of the active sync, empty when idle
	since   time.Time
}

// NewSyncLimiter creates a limiter. Callers that cannot get the slot
// within maxWait receive ErrTooManySyncs.
func NewSyncLimiter(maxWait time.Duration) *SyncLimiter {
	if maxWait <= 0 {
		maxWait = DefaultSyncMaxWait
	}
	return &SyncLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire takes the slot for the sync called name.
// The caller MUST call Release() when the sync completes (use defer).
func (l *SyncLimiter) Acquire(ctx context.Context, name string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.mark(name)
		return nil
	case <-waitCtx.Done():
		// Distinguish caller cancellation from our own timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManySyncs
	}
}

// TryAcquire takes the slot without blocking.
func (l *SyncLimiter) TryAcquire(name string) bool {
	select {
	case l.slot <- struct{}{}:
		l.mark(name)
		return true
	default:
		return false
	}
}

func (l *SyncLimiter) mark(name string) {
	l.mu.Lock()
	l.running = name
	l.since = time.Now()
	l.mu.Unlock()
}

// Release frees the slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *SyncLimiter) Release() {
	l.mu.Lock()
	l.running = ""
	l.since = time.Time{}
	l.mu.Unlock()

	<-l.slot
}

// Busy reports whether a sync holds the slot.
func (l *SyncLimiter) Busy() bool {
	return len(l.slot) > 0
}

// WaitForDrain blocks until no sync is running or ctx is cancelled.
func (l *SyncLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !l.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SyncLimiterStatus is a snapshot of the limiter state.
type SyncLimiterStatus struct {
	Running string    `json:"running,omitempty"`
	Since   time.Time `json:"since,omitempty"`
	Busy    bool      `json:"busy"`
}

// Status returns the current limiter state for monitoring/debugging.
func (l *SyncLimiter) Status() SyncLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return SyncLimiterStatus{Running: l.running, Since: l.since, Busy: l.running != ""}
}
