package debate

import (
	"context"
	"sync"
)

// DefaultEventBuffer is the event channel capacity for one run.
const DefaultEventBuffer = 32

// EventEmitter delivers one session's events to its observer. Unlike a
// fire-and-forget bus it never drops: chunk completeness depends on every
// event arriving, so Emit blocks until the observer reads or leaves.
type EventEmitter struct {
	debateID  string
	events    chan Event
	closeOnce sync.Once
}

// NewEventEmitter creates an emitter with the given buffer size.
func NewEventEmitter(debateID string, bufferSize int) *EventEmitter {
	if bufferSize < 0 {
		bufferSize = DefaultEventBuffer
	}
	return &EventEmitter{
		debateID: debateID,
		events:   make(chan Event, bufferSize),
	}
}

// Emit sends p stamped with the session id. It returns ctx.Err() if the
// observer went away first.
func (e *EventEmitter) Emit(ctx context.Context, p Payload) error {
	ev := Event{DebateID: e.debateID, Payload: p}
	// A cancelled context wins even if buffer space is free, so nothing is
	// produced after the observer leaves.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case e.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events returns the read side of the channel.
func (e *EventEmitter) Events() <-chan Event {
	return e.events
}

// Close closes the events channel. Safe to call more than once.
func (e *EventEmitter) Close() {
	e.closeOnce.Do(func() { close(e.events) })
}
