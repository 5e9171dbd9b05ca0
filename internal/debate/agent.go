package debate

import "context"

// Agent is the text-generation capability the engine depends on. The
// transcript argument is the rendered debate so far; instruction is the
// turn's template output.
type Agent interface {
	// Respond returns a complete response.
	Respond(ctx context.Context, transcript, instruction string) (string, error)
	// StreamRespond returns the same response as a lazy, finite fragment
	// stream. Next may block for the duration of each fragment.
	StreamRespond(ctx context.Context, transcript, instruction string) (FragmentStream, error)
}

// FragmentStream is a blocking iterator over response fragments. It follows
// the Next/Current/Err/Close shape of the Anthropic SDK's event stream.
type FragmentStream interface {
	// Next advances to the next fragment, blocking until one is available.
	// It returns false at the end of the stream or on error.
	Next() bool
	// Fragment returns the fragment Next advanced to.
	Fragment() string
	// Err returns the error that stopped the stream, if any.
	Err() error
	// Close releases the stream. It is safe to call more than once.
	Close() error
}

// Participant is the opaque initialization data for one agent: its persona
// and sampling settings.
type Participant struct {
	Name         string
	Role         string
	SystemPrompt string
	Temperature  float64
}

// Cast is the set of participants for one session.
type Cast struct {
	ProStyle string
	ConStyle string
	Pro      Participant
	Con      Participant
	Judge    Participant
}

// Caster resolves persona selectors into a Cast. Unknown selectors must be
// reported as ErrInvalidPersona.
type Caster interface {
	Cast(proStyle, conStyle string) (Cast, error)
}

// AgentFactory builds an Agent for a participant.
type AgentFactory interface {
	NewAgent(p Participant) (Agent, error)
}

// AgentFactoryFunc adapts a function to AgentFactory.
type AgentFactoryFunc func(p Participant) (Agent, error)

// NewAgent implements AgentFactory.
func (f AgentFactoryFunc) NewAgent(p Participant) (Agent, error) {
	return f(p)
}
