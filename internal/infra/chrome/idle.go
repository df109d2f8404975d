package chrome

import (
	"context"
	"sync"
	"time"
)

// idleTracker follows in-flight network requests of one tab.
type idleTracker struct {
	mu           sync.Mutex
	inflight     map[string]struct{}
	lastActivity time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{inflight: make(map[string]struct{}), lastActivity: time.Now()}
}

func (t *idleTracker) reset(now time.Time) {
	t.mu.Lock()
	t.inflight = make(map[string]struct{})
	t.lastActivity = now
	t.mu.Unlock()
}

func (t *idleTracker) started(id string, now time.Time) {
	t.mu.Lock()
	t.inflight[id] = struct{}{}
	t.lastActivity = now
	t.mu.Unlock()
}

func (t *idleTracker) finished(id string, now time.Time) {
	t.mu.Lock()
	if _, ok := t.inflight[id]; ok {
		delete(t.inflight, id)
		t.lastActivity = now
	}
	t.mu.Unlock()
}

// idleFor reports how long no request has been in flight; zero while busy.
func (t *idleTracker) idleFor(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.inflight) > 0 {
		return 0
	}
	return now.Sub(t.lastActivity)
}

// waitForNetworkIdle blocks until t has been idle for settle or ctx ends.
func waitForNetworkIdle(ctx context.Context, t *idleTracker, settle time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if settle <= 0 {
		return nil
	}

	poll := settle / 10
	if poll < 10*time.Millisecond {
		poll = 10 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if t.idleFor(time.Now()) >= settle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
