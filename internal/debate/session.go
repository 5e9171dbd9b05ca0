package debate

import (
	"sync"
	"sync/atomic"
	"time"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionRunning   SessionStatus = "running"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
	// SessionAbandoned means the observer disconnected mid-debate.
	SessionAbandoned SessionStatus = "abandoned"
)

// Session is one debate from creation to finished.
type Session struct {
	id         string
	topic      string
	cast       Cast
	agents     map[Seat]Agent
	transcript *Transcript
	gate       *VoteGate
	createdAt  time.Time

	started atomic.Bool

	mu         sync.RWMutex
	phase      Phase
	status     SessionStatus
	scoring    string
	failure    string
	lastActive time.Time
	finishedAt time.Time
}

func newSession(id, topic string, cast Cast, agents map[Seat]Agent, now time.Time) *Session {
	return &Session{
		id:         id,
		topic:      topic,
		cast:       cast,
		agents:     agents,
		transcript: NewTranscript(topic),
		gate:       NewVoteGate(),
		createdAt:  now,
		phase:      PhaseIntroduction,
		status:     SessionPending,
		lastActive: now,
	}
}

// NewSession builds a session outside a registry. Tests and the local run
// command use it directly.
func NewSession(id, topic string, cast Cast, pro, con, judge Agent) *Session {
	return newSession(id, topic, cast, map[Seat]Agent{
		SeatPro:   pro,
		SeatCon:   con,
		SeatJudge: judge,
	}, time.Now())
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Topic() string        { return s.topic }
func (s *Session) ProStyle() string     { return s.cast.ProStyle }
func (s *Session) ConStyle() string     { return s.cast.ConStyle }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Transcript returns the session's transcript store.
func (s *Session) Transcript() *Transcript { return s.transcript }

// Gate returns the session's vote gate.
func (s *Session) Gate() *VoteGate { return s.gate }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Status returns the lifecycle state.
func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Scoring returns the argument scoring produced by the scoring turn.
func (s *Session) Scoring() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoring
}

// Failure returns the error message of a failed run.
func (s *Session) Failure() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Vote returns the resolved audience vote, if any.
func (s *Session) Vote() (Vote, bool) {
	return s.gate.Value()
}

// Started reports whether Run has been called.
func (s *Session) Started() bool {
	return s.started.Load()
}

// Active reports whether a run is in progress.
func (s *Session) Active() bool {
	return s.Status() == SessionRunning
}

// LastActive returns the time of the last state change.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// FinishedAt returns when the run ended, or the zero time.
func (s *Session) FinishedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finishedAt
}

// SubmitVote forwards v to the gate. It reports whether the vote was taken.
func (s *Session) SubmitVote(v Vote) bool {
	accepted := s.gate.Submit(v)
	if accepted {
		s.touch()
	}
	return accepted
}

func (s *Session) agent(seat Seat) Agent {
	return s.agents[seat]
}

// setPhase moves the session forward. Backward moves are ignored.
func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p < s.phase {
		debugLog("[session %s] refusing backward phase move %s -> %s", s.id, s.phase, p)
		return
	}
	s.phase = p
	s.lastActive = time.Now()
}

func (s *Session) setStatus(st SessionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.lastActive = time.Now()
	if st == SessionCompleted || st == SessionFailed || st == SessionAbandoned {
		s.finishedAt = s.lastActive
	}
}

func (s *Session) setScoring(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoring = text
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	s.failure = msg
	s.mu.Unlock()
	s.setStatus(SessionFailed)
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// Snapshot is a point-in-time view of a session for status reporting.
type Snapshot struct {
	ID         string        `json:"debate_id"`
	Topic      string        `json:"topic"`
	ProStyle   string        `json:"pro_style"`
	ConStyle   string        `json:"con_style"`
	Phase      Phase         `json:"phase"`
	Status     SessionStatus `json:"status"`
	Entries    int           `json:"entries"`
	Vote       *Vote         `json:"vote,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// Snapshot captures the session's current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:        s.id,
		Topic:     s.topic,
		ProStyle:  s.cast.ProStyle,
		ConStyle:  s.cast.ConStyle,
		Phase:     s.Phase(),
		Status:    s.Status(),
		Entries:   s.transcript.Len(),
		CreatedAt: s.createdAt,
	}
	if v, ok := s.Vote(); ok {
		snap.Vote = &v
	}
	if fin := s.FinishedAt(); !fin.IsZero() {
		snap.FinishedAt = &fin
	}
	return snap
}
