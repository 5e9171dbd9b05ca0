package debate

import (
	"encoding/json"
	"fmt"
)

// EventType is the wire tag of an event.
type EventType string

const (
	EventDebateStarted   EventType = "debate_started"
	EventPhaseChange     EventType = "phase_change"
	EventMessageStart    EventType = "message_start"
	EventMessageChunk    EventType = "message_chunk"
	EventMessageComplete EventType = "message_complete"
	EventVoteRequired    EventType = "vote_required"
	EventVoteReceived    EventType = "vote_received"
	EventDebateComplete  EventType = "debate_complete"
	EventError           EventType = "error"
)

// Payload is the closed set of event bodies. Only types in this package
// implement it.
type Payload interface {
	EventType() EventType
	payload()
}

// DebateStarted opens every event sequence.
type DebateStarted struct {
	Topic    string `json:"topic"`
	ProStyle string `json:"pro_style"`
	ConStyle string `json:"con_style"`
}

// PhaseChanged announces the next phase. Round is set for rebuttals.
type PhaseChanged struct {
	Phase Phase `json:"phase"`
	Round int   `json:"round,omitempty"`
}

// MessageStarted names the speaker of the turn about to run.
type MessageStarted struct {
	Speaker Speaker `json:"speaker"`
}

// MessageChunk carries one streamed fragment.
type MessageChunk struct {
	Speaker Speaker `json:"speaker"`
	Chunk   string  `json:"chunk"`
}

// MessageCompleted carries the whole turn. Content equals the concatenation
// of the turn's chunks and the transcript entry appended for it.
type MessageCompleted struct {
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
	Label   string  `json:"label,omitempty"`
}

// VoteRequired asks the observer for a vote.
type VoteRequired struct {
	Prompt string `json:"prompt"`
	// Message duplicates Prompt for observers that read the older field.
	Message string `json:"message"`
}

// VoteReceived reports the resolved vote and the audience entry text.
type VoteReceived struct {
	Vote    Vote   `json:"vote"`
	Message string `json:"message"`
	// TimedOut is set when nobody voted before the deadline.
	TimedOut bool `json:"timed_out,omitempty"`
}

// DebateCompleted is the terminal event of a successful run.
type DebateCompleted struct {
	Transcript []Entry `json:"transcript"`
	Scoring    string  `json:"argument_scores"`
}

// Failed is the terminal event of a failed run.
type Failed struct {
	Message string `json:"message"`
}

func (DebateStarted) EventType() EventType    { return EventDebateStarted }
func (PhaseChanged) EventType() EventType     { return EventPhaseChange }
func (MessageStarted) EventType() EventType   { return EventMessageStart }
func (MessageChunk) EventType() EventType     { return EventMessageChunk }
func (MessageCompleted) EventType() EventType { return EventMessageComplete }
func (VoteRequired) EventType() EventType     { return EventVoteRequired }
func (VoteReceived) EventType() EventType     { return EventVoteReceived }
func (DebateCompleted) EventType() EventType  { return EventDebateComplete }
func (Failed) EventType() EventType           { return EventError }

func (DebateStarted) payload()    {}
func (PhaseChanged) payload()     {}
func (MessageStarted) payload()   {}
func (MessageChunk) payload()     {}
func (MessageCompleted) payload() {}
func (VoteRequired) payload()     {}
func (VoteReceived) payload()     {}
func (DebateCompleted) payload()  {}
func (Failed) payload()           {}

// Event is one message in a debate's event sequence.
type Event struct {
	DebateID string
	Payload  Payload
}

// Type returns the event's tag.
func (e Event) Type() EventType {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

// Terminal reports whether no events follow e.
func (e Event) Terminal() bool {
	t := e.Type()
	return t == EventDebateComplete || t == EventError
}

type wireEvent struct {
	Type     EventType       `json:"type"`
	DebateID string          `json:"debate_id"`
	Data     json.RawMessage `json:"data"`
}

// MarshalJSON encodes the event as {"type", "debate_id", "data"}.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("marshal event: nil payload")
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Type(), err)
	}
	return json.Marshal(wireEvent{Type: e.Type(), DebateID: e.DebateID, Data: data})
}

// UnmarshalJSON decodes an event, choosing the payload type from its tag.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var p Payload
	switch w.Type {
	case EventDebateStarted:
		p = &DebateStarted{}
	case EventPhaseChange:
		p = &PhaseChanged{}
	case EventMessageStart:
		p = &MessageStarted{}
	case EventMessageChunk:
		p = &MessageChunk{}
	case EventMessageComplete:
		p = &MessageCompleted{}
	case EventVoteRequired:
		p = &VoteRequired{}
	case EventVoteReceived:
		p = &VoteReceived{}
	case EventDebateComplete:
		p = &DebateCompleted{}
	case EventError:
		p = &Failed{}
	default:
		return fmt.Errorf("unknown event type %q", w.Type)
	}
	if len(w.Data) > 0 {
		if err := json.Unmarshal(w.Data, p); err != nil {
			return fmt.Errorf("decode %s payload: %w", w.Type, err)
		}
	}
	e.DebateID = w.DebateID
	e.Payload = deref(p)
	return nil
}

// deref stores payloads by value so type switches on Event.Payload see the
// same types whether the event was built locally or decoded.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *DebateStarted:
		return *v
	case *PhaseChanged:
		return *v
	case *MessageStarted:
		return *v
	case *MessageChunk:
		return *v
	case *MessageCompleted:
		return *v
	case *VoteRequired:
		return *v
	case *VoteReceived:
		return *v
	case *DebateCompleted:
		return *v
	case *Failed:
		return *v
	}
	return p
}
