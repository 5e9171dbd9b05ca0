package debate

import (
	"fmt"
	"strings"
)

// Phase is a stage of the debate. Phases are totally ordered and a session
// only ever moves forward through them.
type Phase int

const (
	PhaseIntroduction Phase = iota
	PhaseOpeningPro
	PhaseOpeningCon
	PhaseRebuttal
	PhaseVote
	PhaseClosingPro
	PhaseClosingCon
	PhaseVerdict
	PhaseScoring
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseIntroduction: "introduction",
	PhaseOpeningPro:   "opening_pro",
	PhaseOpeningCon:   "opening_con",
	PhaseRebuttal:     "rebuttal",
	PhaseVote:         "vote",
	PhaseClosingPro:   "closing_pro",
	PhaseClosingCon:   "closing_con",
	PhaseVerdict:      "verdict",
	PhaseScoring:      "scoring",
	PhaseFinished:     "finished",
}

// String returns the wire name of the phase.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Valid reports whether p is one of the declared phases.
func (p Phase) Valid() bool {
	return p >= PhaseIntroduction && p <= PhaseFinished
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("marshal phase: unknown value %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	parsed, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase converts a wire name back into a Phase.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Speaker identifies who produced a transcript entry.
type Speaker int

const (
	SpeakerPro Speaker = iota
	SpeakerCon
	SpeakerModerator
	SpeakerJudge
	SpeakerAudience
	SpeakerScoring
)

var speakerNames = [...]string{
	SpeakerPro:       "PRO",
	SpeakerCon:       "CON",
	SpeakerModerator: "MODERATOR",
	SpeakerJudge:     "JUDGE",
	SpeakerAudience:  "AUDIENCE",
	SpeakerScoring:   "SCORING",
}

// String returns the wire name of the speaker.
func (s Speaker) String() string {
	if s < 0 || int(s) >= len(speakerNames) {
		return fmt.Sprintf("speaker(%d)", int(s))
	}
	return speakerNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s Speaker) MarshalText() ([]byte, error) {
	if s < SpeakerPro || s > SpeakerScoring {
		return nil, fmt.Errorf("marshal speaker: unknown value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Speaker) UnmarshalText(b []byte) error {
	for i, name := range speakerNames {
		if name == string(b) {
			*s = Speaker(i)
			return nil
		}
	}
	return fmt.Errorf("unknown speaker %q", string(b))
}

// Vote is the audience's answer to "who is winning so far?".
type Vote int

const (
	// VoteTie means no preference. It is the zero value and the default when
	// no vote arrives before the deadline.
	VoteTie Vote = iota
	VotePro
	VoteCon
)

// DefaultVote is the vote used when the gate times out.
const DefaultVote = VoteTie

var voteNames = [...]string{
	VoteTie: "TIE",
	VotePro: "PRO",
	VoteCon: "CON",
}

// String returns the wire name of the vote.
func (v Vote) String() string {
	if v < 0 || int(v) >= len(voteNames) {
		return fmt.Sprintf("vote(%d)", int(v))
	}
	return voteNames[v]
}

// MarshalText implements encoding.TextMarshaler.
func (v Vote) MarshalText() ([]byte, error) {
	if v < VoteTie || v > VoteCon {
		return nil, fmt.Errorf("marshal vote: unknown value %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Vote) UnmarshalText(b []byte) error {
	parsed, err := ParseVote(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseVote accepts PRO, CON or TIE, case-insensitively.
func ParseVote(s string) (Vote, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRO":
		return VotePro, nil
	case "CON":
		return VoteCon, nil
	case "TIE":
		return VoteTie, nil
	}
	return DefaultVote, fmt.Errorf("%w: %q", ErrInvalidVote, s)
}

// Entry is one utterance in the transcript. Entries are never modified after
// they are appended.
type Entry struct {
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
	Phase   Phase   `json:"phase"`
}
