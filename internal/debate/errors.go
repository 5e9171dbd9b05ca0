package debate

import "errors"

// Client errors. These are reported to the caller and never mutate state.
var (
	// ErrSessionNotFound is returned when a debate id is not in the registry.
	ErrSessionNotFound = errors.New("debate session not found")
	// ErrInvalidPersona is returned when a style selector is not in the catalog.
	ErrInvalidPersona = errors.New("invalid persona style")
	// ErrEmptyTopic is returned when a debate is created without a topic.
	ErrEmptyTopic = errors.New("debate topic is required")
	// ErrRegistryFull is returned when the registry is at capacity and
	// nothing can be evicted.
	ErrRegistryFull = errors.New("debate registry is full")
	// ErrAlreadyStarted is returned when Run is called twice for one session.
	ErrAlreadyStarted = errors.New("debate already started")
	// ErrInvalidVote is returned when a vote value is not PRO, CON or TIE.
	ErrInvalidVote = errors.New("invalid vote")
)

// IsClientError reports whether err was caused by the caller rather than by
// the engine or an agent.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrSessionNotFound,
		ErrInvalidPersona,
		ErrEmptyTopic,
		ErrRegistryFull,
		ErrAlreadyStarted,
		ErrInvalidVote,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
