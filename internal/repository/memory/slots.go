package memory

import (
	"context"
	"sync"
)

// slotLocks is a set of keyed mutexes whose waiters can give up on ctx
type slotLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newSlotLocks() *slotLocks {
	return &slotLocks{slots: make(map[string]chan struct{})}
}

func (l *slotLocks) acquire(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		released, held := l.slots[key]
		if !held {
			l.slots[key] = make(chan struct{})
			l.mu.Unlock()

			var once sync.Once
			return func() { once.Do(func() { l.release(key) }) }, nil
		}
		l.mu.Unlock()

		select {
		case <-released:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *slotLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ch, ok := l.slots[key]; ok {
		delete(l.slots, key)
		close(ch)
	}
}
