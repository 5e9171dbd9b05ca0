package api

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// eventStream is the subset of the SDK's SSE stream that textStream reads.
type eventStream interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

// textStream turns the SDK event stream into text fragments. Non-text events
// are consumed silently; usage is recorded once the stream ends.
type textStream struct {
	events  eventStream
	tracker *TokenTracker

	current   string
	inputTok  int64
	outputTok int64
	recorded  bool
	closed    bool
}

func newTextStream(events eventStream, tracker *TokenTracker) *textStream {
	return &textStream{events: events, tracker: tracker}
}

// Next advances to the next text delta.
func (s *textStream) Next() bool {
	for s.events.Next() {
		switch ev := s.events.Current().AsAny().(type) {
		case anthropic.MessageStartEvent:
			s.inputTok = ev.Message.Usage.InputTokens
			s.outputTok = ev.Message.Usage.OutputTokens
		case anthropic.MessageDeltaEvent:
			s.outputTok = ev.Usage.OutputTokens
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
				s.current = delta.Text
				return true
			}
		}
	}
	s.record()
	return false
}

func (s *textStream) record() {
	if s.recorded || s.tracker == nil {
		return
	}
	s.recorded = true
	s.tracker.Add(s.inputTok, s.outputTok)
}

// Fragment returns the current text delta.
func (s *textStream) Fragment() string {
	return s.current
}

// Err returns the stream error, if any.
func (s *textStream) Err() error {
	if err := s.events.Err(); err != nil {
		return fmt.Errorf("API stream failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *textStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.events.Close()
}
