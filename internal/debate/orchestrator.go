package debate

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultVotePrompt is the question put to the audience.
const DefaultVotePrompt = "Who is winning so far?"

// archiveTimeout bounds how long a finished run waits on the archive.
const archiveTimeout = 10 * time.Second

// OrchestratorConfig holds the fixed parameters of every run.
type OrchestratorConfig struct {
	// RebuttalRounds is the number of PRO/CON rebuttal exchanges.
	RebuttalRounds int
	// VoteTimeout bounds the wait for the audience vote.
	VoteTimeout time.Duration
	// WordBudget, when positive, asks every agent to stay under this many
	// words.
	WordBudget int
	// Streaming routes turns through the bridge and emits message_chunk
	// events. When false each turn is a single blocking Respond call.
	Streaming bool
	// BridgeBuffer is the per-turn fragment channel capacity.
	BridgeBuffer int
	// EventBuffer is the event channel capacity.
	EventBuffer int
	// VotePrompt overrides DefaultVotePrompt.
	VotePrompt string
	// Archiver, if set, receives every run that ends.
	Archiver Archiver
}

// Archiver records finished debates.
type Archiver interface {
	Archive(ctx context.Context, rec Record) error
}

// Orchestrator drives sessions through the phase plan.
type Orchestrator struct {
	cfg          OrchestratorConfig
	bridge       *Bridge
	instructions *Instructions
}

// NewOrchestrator creates an orchestrator. Zero values fall back to the
// package defaults.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.RebuttalRounds < 0 {
		cfg.RebuttalRounds = 0
	}
	if cfg.VoteTimeout <= 0 {
		cfg.VoteTimeout = DefaultVoteTimeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}
	if cfg.VotePrompt == "" {
		cfg.VotePrompt = DefaultVotePrompt
	}
	return &Orchestrator{
		cfg:          cfg,
		bridge:       NewBridge(cfg.BridgeBuffer),
		instructions: NewInstructions(cfg.WordBudget),
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() OrchestratorConfig {
	return o.cfg
}

// Run starts the debate for s and returns its event sequence. The channel is
// closed after the terminal event, or as soon as ctx is cancelled. A session
// can be run exactly once; later calls return ErrAlreadyStarted.
func (o *Orchestrator) Run(ctx context.Context, s *Session) (<-chan Event, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyStarted, s.id)
	}
	em := NewEventEmitter(s.id, o.cfg.EventBuffer)
	s.setStatus(SessionRunning)
	go o.run(ctx, s, em)
	return em.Events(), nil
}

func (o *Orchestrator) run(ctx context.Context, s *Session, em *EventEmitter) {
	defer em.Close()

	start := time.Now()
	err := o.drive(ctx, s, em)

	switch {
	case err == nil:
		log.Printf("[orchestrator] debate %s completed in %s", s.id, time.Since(start).Round(time.Millisecond))
	case ctx.Err() != nil:
		if s.Status() != SessionCompleted {
			s.setStatus(SessionAbandoned)
		}
		log.Printf("[orchestrator] debate %s abandoned in phase %s: observer left", s.id, s.Phase())
	default:
		s.fail(err.Error())
		log.Printf("[orchestrator] debate %s failed in phase %s: %v", s.id, s.Phase(), err)
		if emitErr := em.Emit(ctx, Failed{Message: err.Error()}); emitErr != nil {
			debugLog("[orchestrator] %s: could not deliver error event: %v", s.id, emitErr)
		}
	}

	o.archive(s)
}

func (o *Orchestrator) archive(s *Session) {
	if o.cfg.Archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := o.cfg.Archiver.Archive(ctx, s.Record()); err != nil {
		log.Printf("[orchestrator] WARNING: archive debate %s: %v", s.id, err)
	}
}

// drive walks the plan. It returns nil when the finished event has been
// delivered, ctx.Err() when the observer left, or the turn error.
func (o *Orchestrator) drive(ctx context.Context, s *Session, em *EventEmitter) error {
	if err := em.Emit(ctx, DebateStarted{
		Topic:    s.topic,
		ProStyle: s.cast.ProStyle,
		ConStyle: s.cast.ConStyle,
	}); err != nil {
		return err
	}

	plan := NewPlan(o.cfg.RebuttalRounds)
	var prev Step
	first := true
	for {
		step, ok := plan.Next()
		if !ok {
			return nil
		}
		// Stop between steps if the observer is gone; no new turn starts.
		if err := ctx.Err(); err != nil {
			return err
		}

		if PhaseChanges(prev, step, first) {
			s.setPhase(step.Phase)
			if err := em.Emit(ctx, PhaseChanged{Phase: step.Phase, Round: step.Round}); err != nil {
				return err
			}
		}
		prev, first = step, false

		var err error
		switch step.Phase {
		case PhaseVote:
			err = o.collectVote(ctx, s, em)
		case PhaseFinished:
			s.setStatus(SessionCompleted)
			err = em.Emit(ctx, DebateCompleted{
				Transcript: s.transcript.Entries(),
				Scoring:    s.Scoring(),
			})
		default:
			err = o.takeTurn(ctx, s, em, step)
		}
		if err != nil {
			return err
		}
	}
}

// takeTurn runs one agent turn and records it.
func (o *Orchestrator) takeTurn(ctx context.Context, s *Session, em *EventEmitter, step Step) error {
	agent := s.agent(step.Seat)
	if agent == nil {
		return fmt.Errorf("%s turn: no agent for seat %d", step.Speaker, step.Seat)
	}
	instruction, err := o.instructions.For(step, s.topic)
	if err != nil {
		return err
	}

	if err := em.Emit(ctx, MessageStarted{Speaker: step.Speaker}); err != nil {
		return err
	}

	started := time.Now()
	rendered := s.transcript.Render()

	var content string
	if o.cfg.Streaming {
		content, err = o.streamTurn(ctx, em, agent, step, rendered, instruction)
	} else {
		content, err = agent.Respond(ctx, rendered, instruction)
	}
	if err != nil {
		return fmt.Errorf("%s %s turn: %w", step.Speaker, step.Phase, err)
	}
	debugLog("[orchestrator] %s %s (round %d) took %s, %d bytes",
		s.id, step.Phase, step.Round, time.Since(started).Round(time.Millisecond), len(content))

	if step.Phase == PhaseScoring {
		s.setScoring(content)
	} else {
		s.transcript.Append(Entry{Speaker: step.Speaker, Content: content, Phase: step.Phase})
	}

	return em.Emit(ctx, MessageCompleted{Speaker: step.Speaker, Content: content, Label: step.Label})
}

// streamTurn runs the agent's fragment stream through the bridge, emitting
// one chunk event per fragment.
func (o *Orchestrator) streamTurn(ctx context.Context, em *EventEmitter, agent Agent, step Step, transcript, instruction string) (string, error) {
	stream, err := agent.StreamRespond(ctx, transcript, instruction)
	if err != nil {
		return "", err
	}
	pump := o.bridge.Start(stream)
	return pump.Drain(ctx, func(frag string) error {
		return em.Emit(ctx, MessageChunk{Speaker: step.Speaker, Chunk: frag})
	})
}

// collectVote suspends on the gate and records the audience entry.
func (o *Orchestrator) collectVote(ctx context.Context, s *Session, em *EventEmitter) error {
	if err := em.Emit(ctx, VoteRequired{Prompt: o.cfg.VotePrompt, Message: o.cfg.VotePrompt}); err != nil {
		return err
	}

	vote, err := s.gate.Await(ctx, o.cfg.VoteTimeout)
	if err != nil {
		return err
	}
	timedOut := s.gate.TimedOut()
	if timedOut {
		debugLog("[orchestrator] %s: no vote within %s, using %s", s.id, o.cfg.VoteTimeout, vote)
	}

	msg := AudienceMessage(vote)
	s.transcript.Append(Entry{Speaker: SpeakerAudience, Content: msg, Phase: PhaseVote})

	return em.Emit(ctx, VoteReceived{Vote: vote, Message: msg, TimedOut: timedOut})
}

// AudienceMessage is the transcript text announcing a vote.
func AudienceMessage(v Vote) string {
	if v == VoteTie {
		return "Audience vote: no preference, the debate is even so far."
	}
	return fmt.Sprintf("Audience vote: %s is winning.", v)
}

// Record is the archived form of a finished session.
type Record struct {
	ID         string
	Topic      string
	ProStyle   string
	ConStyle   string
	Status     SessionStatus
	Vote       *Vote
	Scoring    string
	Failure    string
	Transcript []Entry
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Record captures the session for archiving.
func (s *Session) Record() Record {
	rec := Record{
		ID:         s.id,
		Topic:      s.topic,
		ProStyle:   s.cast.ProStyle,
		ConStyle:   s.cast.ConStyle,
		Status:     s.Status(),
		Scoring:    s.Scoring(),
		Failure:    s.Failure(),
		Transcript: s.transcript.Entries(),
		CreatedAt:  s.createdAt,
		FinishedAt: s.FinishedAt(),
	}
	if v, ok := s.Vote(); ok {
		rec.Vote = &v
	}
	return rec
}
