package server

import (
	"context"
	"sync"
)

// StreamTracker records the debates currently streaming to an observer so
// shutdown can cancel them and wait for their handlers to return.
type StreamTracker struct {
	mu      sync.Mutex
	streams map[string]*trackedStream
	wg      sync.WaitGroup
}

type trackedStream struct {
	cancel func()
	once   sync.Once
}

// NewStreamTracker creates an empty tracker.
func NewStreamTracker() *StreamTracker {
	return &StreamTracker{streams: make(map[string]*trackedStream)}
}

// Register tracks a stream for debateID until the returned func is called.
// A debate streams to at most one observer, so an existing entry for the
// same id is replaced.
func (t *StreamTracker) Register(debateID string, cancel func()) (unregister func()) {
	entry := &trackedStream{cancel: cancel}

	t.mu.Lock()
	old := t.streams[debateID]
	t.streams[debateID] = entry
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		t.unregister(debateID, old)
	}
	return func() { t.unregister(debateID, entry) }
}

func (t *StreamTracker) unregister(debateID string, entry *trackedStream) {
	entry.once.Do(func() {
		t.mu.Lock()
		if t.streams[debateID] == entry {
			delete(t.streams, debateID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

// Count returns the number of active streams.
func (t *StreamTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.streams)
}

// CancelAll cancels every active stream and returns how many were cancelled.
func (t *StreamTracker) CancelAll() int {
	var cancels []func()
	t.mu.Lock()
	for _, entry := range t.streams {
		if entry.cancel != nil {
			cancels = append(cancels, entry.cancel)
		}
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// Wait blocks until every registered stream has unregistered. It returns
// false if ctx ends first.
func (t *StreamTracker) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
