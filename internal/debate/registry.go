package debate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry defaults.
const (
	DefaultRegistryCapacity = 256
	DefaultSessionTTL       = time.Hour
	DefaultSweepInterval    = time.Minute
)

// RegistryConfig bounds the registry.
type RegistryConfig struct {
	// Capacity is the maximum number of live sessions.
	Capacity int
	// SessionTTL is how long an idle session survives after its last
	// activity. Running sessions are never expired.
	SessionTTL time.Duration
	// Now overrides the clock; used by tests.
	Now func() time.Time
}

// Registry maps debate ids to live sessions. It is bounded: sessions expire
// after SessionTTL of inactivity and Create fails once Capacity is reached
// and nothing can be expired.
type Registry struct {
	caster  Caster
	factory AgentFactory
	cfg     RegistryConfig

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry that resolves personas with caster and
// builds agents with factory.
func NewRegistry(caster Caster, factory AgentFactory, cfg RegistryConfig) *Registry {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultRegistryCapacity
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		caster:   caster,
		factory:  factory,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create validates the request, builds the session's agents and registers
// it. Validation happens before anything is allocated, so a rejected
// request leaves no trace in the registry.
func (r *Registry) Create(topic, proStyle, conStyle string) (*Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	cast, err := r.caster.Cast(proStyle, conStyle)
	if err != nil {
		return nil, err
	}

	agents := make(map[Seat]Agent, 3)
	for seat, p := range map[Seat]Participant{SeatPro: cast.Pro, SeatCon: cast.Con, SeatJudge: cast.Judge} {
		a, err := r.factory.NewAgent(p)
		if err != nil {
			return nil, fmt.Errorf("create %s agent: %w", p.Name, err)
		}
		agents[seat] = a
	}

	now := r.cfg.Now()
	sess := newSession(uuid.New().String(), topic, cast, agents, now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) >= r.cfg.Capacity {
		r.sweepLocked(now)
	}
	if len(r.sessions) >= r.cfg.Capacity {
		return nil, fmt.Errorf("%w (capacity %d)", ErrRegistryFull, r.cfg.Capacity)
	}
	r.sessions[sess.id] = sess
	debugLog("[registry] created session %s (%d live)", sess.id, len(r.sessions))
	return sess, nil
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// SubmitVote delivers a vote to a session's gate. It reports whether the
// vote was accepted; late and duplicate votes are not errors.
func (r *Registry) SubmitVote(id string, v Vote) (bool, error) {
	sess, err := r.Get(id)
	if err != nil {
		return false, err
	}
	return sess.SubmitVote(v), nil
}

// Remove drops a session. It is the explicit teardown hook; removing an
// unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns snapshots of every live session.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(now)
}

func (r *Registry) sweepLocked(now time.Time) int {
	removed := 0
	for id, s := range r.sessions {
		if s.Active() {
			continue
		}
		if now.Sub(s.LastActive()) >= r.cfg.SessionTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		debugLog("[registry] expired %d sessions (%d live)", removed, len(r.sessions))
	}
	return removed
}

// Janitor sweeps the registry every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.cfg.Now()); n > 0 {
				log.Printf("[registry] expired %d idle sessions", n)
			}
		}
	}
}
