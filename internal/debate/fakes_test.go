package debate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// scriptedAgent answers every turn with the same fragments, tagged with the
// call number so each turn's content is distinct.
type scriptedAgent struct {
	name      string
	fragments []string
	delay     time.Duration

	// failOn makes the given 1-based call fail.
	failOn int
	// block makes StreamRespond streams wait for ctx cancellation.
	block bool

	calls atomic.Int32

	mu           sync.Mutex
	instructions []string
	contexts     []string
}

func newScriptedAgent(name string, fragments ...string) *scriptedAgent {
	if len(fragments) == 0 {
		fragments = []string{"Hello ", "from ", name, "."}
	}
	return &scriptedAgent{name: name, fragments: fragments}
}

var errAgentDown = errors.New("agent unavailable")

func (a *scriptedAgent) record(transcript, instruction string) int {
	a.mu.Lock()
	a.contexts = append(a.contexts, transcript)
	a.instructions = append(a.instructions, instruction)
	a.mu.Unlock()
	return int(a.calls.Add(1))
}

func (a *scriptedAgent) turnFragments(call int) []string {
	out := make([]string, 0, len(a.fragments)+1)
	out = append(out, fmt.Sprintf("[%s #%d] ", a.name, call))
	out = append(out, a.fragments...)
	return out
}

func (a *scriptedAgent) Respond(ctx context.Context, transcript, instruction string) (string, error) {
	call := a.record(transcript, instruction)
	if call == a.failOn {
		return "", errAgentDown
	}
	return strings.Join(a.turnFragments(call), ""), nil
}

func (a *scriptedAgent) StreamRespond(ctx context.Context, transcript, instruction string) (FragmentStream, error) {
	call := a.record(transcript, instruction)
	s := &sliceStream{ctx: ctx, fragments: a.turnFragments(call), delay: a.delay, block: a.block}
	if call == a.failOn {
		s.failAfter = 1
		s.err = errAgentDown
	}
	return s, nil
}

func (a *scriptedAgent) Calls() int {
	return int(a.calls.Load())
}

// sliceStream yields fragments one at a time, optionally sleeping between
// them to behave like a blocking network read.
type sliceStream struct {
	ctx       context.Context
	fragments []string
	delay     time.Duration
	block     bool
	failAfter int
	err       error

	pos     int
	current string
	failed  error
	closed  atomic.Bool
}

func (s *sliceStream) Next() bool {
	if s.failAfter > 0 && s.pos >= s.failAfter {
		s.failed = s.err
		return false
	}
	if s.block && s.pos == 1 {
		<-s.ctx.Done()
		s.failed = s.ctx.Err()
		return false
	}
	if s.pos >= len(s.fragments) {
		return false
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.current = s.fragments[s.pos]
	s.pos++
	return true
}

func (s *sliceStream) Fragment() string { return s.current }
func (s *sliceStream) Err() error       { return s.failed }
func (s *sliceStream) Close() error {
	s.closed.Store(true)
	return nil
}

// testCaster knows the four catalog styles.
type testCaster struct{}

func (testCaster) Cast(pro, con string) (Cast, error) {
	valid := map[string]bool{"passionate": true, "aggressive": true, "academic": true, "humorous": true}
	if !valid[pro] {
		return Cast{}, fmt.Errorf("%w: pro_style %q", ErrInvalidPersona, pro)
	}
	if !valid[con] {
		return Cast{}, fmt.Errorf("%w: con_style %q", ErrInvalidPersona, con)
	}
	return Cast{
		ProStyle: pro,
		ConStyle: con,
		Pro:      Participant{Name: "Pro", Role: "arguing FOR the topic"},
		Con:      Participant{Name: "Con", Role: "arguing AGAINST the topic"},
		Judge:    Participant{Name: "Judge", Role: "moderator and judge"},
	}, nil
}

func scriptedFactory() AgentFactory {
	return AgentFactoryFunc(func(p Participant) (Agent, error) {
		return newScriptedAgent(p.Name), nil
	})
}

type cast3 struct {
	pro, con, judge *scriptedAgent
}

func newTestSession(topic string) (*Session, cast3) {
	c := cast3{
		pro:   newScriptedAgent("Pro"),
		con:   newScriptedAgent("Con"),
		judge: newScriptedAgent("Judge"),
	}
	cast, _ := testCaster{}.Cast("passionate", "academic")
	return NewSession("test-debate", topic, cast, c.pro, c.con, c.judge), c
}

// collect drains events until the channel closes or the deadline passes.
func collect(events <-chan Event, within time.Duration) ([]Event, bool) {
	var out []Event
	timeout := time.After(within)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out, true
			}
			out = append(out, ev)
		case <-timeout:
			return out, false
		}
	}
}
