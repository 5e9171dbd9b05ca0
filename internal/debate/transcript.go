package debate

import (
	"strings"
	"sync"
)

// Transcript is the append-only log of a debate. It is written only by the
// orchestrator but may be read concurrently (status endpoints, the TUI).
type Transcript struct {
	mu      sync.RWMutex
	topic   string
	entries []Entry
}

// NewTranscript creates an empty transcript for topic.
func NewTranscript(topic string) *Transcript {
	return &Transcript{topic: topic}
}

// Append records an entry at the end of the transcript.
func (t *Transcript) Append(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Entries returns a copy of the entries in insertion order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Last returns the most recent entry.
func (t *Transcript) Last() (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Render formats the transcript as the context every agent reads:
//
//	DEBATE TOPIC: <topic>
//
//	[SPEAKER]: content
func (t *Transcript) Render() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return RenderTranscript(t.topic, t.entries)
}

// RenderTranscript formats entries under a topic header.
func RenderTranscript(topic string, entries []Entry) string {
	var sb strings.Builder
	sb.WriteString("DEBATE TOPIC: ")
	sb.WriteString(topic)
	sb.WriteString("\n\n")
	for _, e := range entries {
		sb.WriteString("[")
		sb.WriteString(e.Speaker.String())
		sb.WriteString("]: ")
		sb.WriteString(e.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
