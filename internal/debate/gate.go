package debate

import (
	"context"
	"sync"
	"time"
)

// DefaultVoteTimeout is how long the orchestrator waits for the audience.
const DefaultVoteTimeout = 5 * time.Minute

// VoteGate is a single-slot, single-use rendezvous for the audience vote.
// The first Submit wins. Once resolved, by a vote or by the deadline, the
// value never changes.
type VoteGate struct {
	mu       sync.Mutex
	value    Vote
	resolved bool
	// timedOut is set when the deadline produced the value.
	timedOut bool
	done     chan struct{}
}

// NewVoteGate creates an unresolved gate.
func NewVoteGate() *VoteGate {
	return &VoteGate{done: make(chan struct{})}
}

// Submit records v if nothing has been recorded yet. It reports whether the
// vote was accepted; duplicate and late votes are discarded.
func (g *VoteGate) Submit(v Vote) bool {
	return g.resolve(v, false)
}

func (g *VoteGate) resolve(v Vote, timedOut bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolved {
		return false
	}
	g.value = v
	g.resolved = true
	g.timedOut = timedOut
	close(g.done)
	return true
}

// Await blocks until a vote is submitted or timeout elapses. On timeout the
// gate resolves to DefaultVote; that is not an error. A cancelled ctx
// returns ctx.Err() and leaves the gate unresolved. A non-positive timeout
// uses DefaultVoteTimeout.
func (g *VoteGate) Await(ctx context.Context, timeout time.Duration) (Vote, error) {
	if timeout <= 0 {
		timeout = DefaultVoteTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-g.done:
	case <-timer.C:
		g.resolve(DefaultVote, true)
	case <-ctx.Done():
		return DefaultVote, ctx.Err()
	}

	v, _ := g.Value()
	return v, nil
}

// Value returns the resolved vote and whether the gate has resolved.
func (g *VoteGate) Value() (Vote, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value, g.resolved
}

// TimedOut reports whether the gate was resolved by its deadline.
func (g *VoteGate) TimedOut() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timedOut
}

// Done is closed once the gate resolves.
func (g *VoteGate) Done() <-chan struct{} {
	return g.done
}
