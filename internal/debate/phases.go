package debate

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultRebuttalRounds is the number of PRO/CON rebuttal exchanges.
const DefaultRebuttalRounds = 2

// Seat identifies which of the session's agents takes a step.
type Seat int

const (
	// SeatNone marks steps with no agent turn (vote, finished).
	SeatNone Seat = iota
	SeatPro
	SeatCon
	SeatJudge
)

// Step is one unit of work produced by the plan.
type Step struct {
	Phase Phase
	// Round is the 1-based rebuttal round, zero for every other phase.
	Round   int
	Seat    Seat
	Speaker Speaker
	// Label is the heading shown with the completed message.
	Label string
}

// HasTurn reports whether the step requires an agent call.
func (s Step) HasTurn() bool {
	return s.Seat != SeatNone
}

// Steps returns the full ordered step list for a debate with the given
// number of rebuttal rounds. Negative round counts are treated as zero.
func Steps(rounds int) []Step {
	if rounds < 0 {
		rounds = 0
	}
	steps := []Step{
		{Phase: PhaseIntroduction, Seat: SeatJudge, Speaker: SpeakerModerator},
		{Phase: PhaseOpeningPro, Seat: SeatPro, Speaker: SpeakerPro, Label: "Opening Statement"},
		{Phase: PhaseOpeningCon, Seat: SeatCon, Speaker: SpeakerCon, Label: "Opening Statement"},
	}
	for r := 1; r <= rounds; r++ {
		label := fmt.Sprintf("Rebuttal %d", r)
		steps = append(steps,
			Step{Phase: PhaseRebuttal, Round: r, Seat: SeatPro, Speaker: SpeakerPro, Label: label},
			Step{Phase: PhaseRebuttal, Round: r, Seat: SeatCon, Speaker: SpeakerCon, Label: label},
		)
	}
	steps = append(steps,
		Step{Phase: PhaseVote, Speaker: SpeakerAudience},
		Step{Phase: PhaseClosingPro, Seat: SeatPro, Speaker: SpeakerPro, Label: "Closing Statement"},
		Step{Phase: PhaseClosingCon, Seat: SeatCon, Speaker: SpeakerCon, Label: "Closing Statement"},
		Step{Phase: PhaseVerdict, Seat: SeatJudge, Speaker: SpeakerJudge, Label: "Final Verdict"},
		Step{Phase: PhaseScoring, Seat: SeatJudge, Speaker: SpeakerScoring, Label: "Argument Scores"},
		Step{Phase: PhaseFinished},
	)
	return steps
}

// Plan walks the step list forward. It is the phase state machine: it
// never goes back and stops for good after PhaseFinished.
type Plan struct {
	steps []Step
	pos   int
}

// NewPlan creates a plan with the given number of rebuttal rounds.
func NewPlan(rounds int) *Plan {
	return &Plan{steps: Steps(rounds)}
}

// Next returns the next step. It returns false once the finished step has
// been handed out.
func (p *Plan) Next() (Step, bool) {
	if p.pos >= len(p.steps) {
		return Step{}, false
	}
	s := p.steps[p.pos]
	p.pos++
	return s, true
}

// Done reports whether the terminal step has been reached.
func (p *Plan) Done() bool {
	return p.pos >= len(p.steps)
}

// Remaining returns how many steps have not been handed out yet.
func (p *Plan) Remaining() int {
	return len(p.steps) - p.pos
}

// PhaseChanges reports whether moving from prev to next emits a phase_change
// event. Every rebuttal round is its own phase change.
func PhaseChanges(prev, next Step, first bool) bool {
	if first {
		return true
	}
	if prev.Phase != next.Phase {
		return true
	}
	return next.Phase == PhaseRebuttal && prev.Round != next.Round
}

// instructionTemplates maps each agent phase to its turn instruction. The
// vote and finished phases have no agent turn and so no template.
var instructionTemplates = map[Phase]string{
	PhaseIntroduction: "Introduce the debate topic: '{{.Topic}}'. Welcome the debaters and explain the format briefly.",
	PhaseOpeningPro:   "Deliver your opening statement. Present your 3 strongest arguments FOR the topic.",
	PhaseOpeningCon:   "Deliver your opening statement. Present your 3 strongest arguments AGAINST the topic.",
	PhaseRebuttal:     "Rebuttal round {{.Round}}: Respond to your opponent's arguments. Counter their points and strengthen your position.",
	PhaseClosingPro:   "Deliver your closing statement. Summarize your strongest points and make a final appeal.",
	PhaseClosingCon:   "Deliver your closing statement. Summarize your strongest points and make a final appeal.",
	PhaseVerdict: "Deliver your final verdict. Include:\n" +
		"1. Summary of strongest arguments from each side\n" +
		"2. Weaknesses or missed opportunities from each side\n" +
		"3. Your reasoning for the decision\n" +
		"4. Scores for each debater (1-10)\n" +
		"5. Declaration of winner (or tie)",
	PhaseScoring: "Analyze the debate transcript and score EACH distinct argument made by both sides.\n" +
		"Format your response as:\n\n" +
		"PRO ARGUMENTS:\n" +
		"1. [Argument summary] - Score: X/10 - Reason: [why this score]\n" +
		"2. ...\n\n" +
		"CON ARGUMENTS:\n" +
		"1. [Argument summary] - Score: X/10 - Reason: [why this score]\n" +
		"2. ...\n\n" +
		"OVERALL:\n" +
		"- Pro total average: X/10\n" +
		"- Con total average: X/10\n" +
		"- Strongest single argument: [which one and why]\n" +
		"- Weakest single argument: [which one and why]",
}

const budgetTemplate = "\n\nKeep your response under {{.WordBudget}} words."

// Instructions renders turn instructions from the template table.
type Instructions struct {
	templates  map[Phase]*template.Template
	budget     *template.Template
	wordBudget int
}

// NewInstructions parses the instruction table. A positive wordBudget appends
// a length limit to every instruction.
func NewInstructions(wordBudget int) *Instructions {
	in := &Instructions{
		templates:  make(map[Phase]*template.Template, len(instructionTemplates)),
		budget:     template.Must(template.New("budget").Parse(budgetTemplate)),
		wordBudget: wordBudget,
	}
	for phase, text := range instructionTemplates {
		in.templates[phase] = template.Must(template.New(phase.String()).Parse(text))
	}
	return in
}

type instructionData struct {
	Topic      string
	Round      int
	WordBudget int
}

// For renders the instruction for step. It is a pure function of the step's
// phase and round, the topic, and the word budget.
func (in *Instructions) For(step Step, topic string) (string, error) {
	tmpl, ok := in.templates[step.Phase]
	if !ok {
		return "", fmt.Errorf("no instruction for phase %s", step.Phase)
	}
	data := instructionData{Topic: topic, Round: step.Round, WordBudget: in.wordBudget}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s instruction: %w", step.Phase, err)
	}
	if in.wordBudget > 0 {
		if err := in.budget.Execute(&sb, data); err != nil {
			return "", fmt.Errorf("render word budget: %w", err)
		}
	}
	return sb.String(), nil
}
