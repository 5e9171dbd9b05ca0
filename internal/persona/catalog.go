// Package persona holds the debater styles and the judge prompt, and turns a
// pair of style selectors into a debate cast.
package persona

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ShayCichocki/podium/internal/debate"
)

// Default sampling temperatures.
const (
	DefaultDebaterTemperature = 0.7
	DefaultJudgeTemperature   = 0.3
)

// DefaultStyle is used when a request leaves a side's style empty.
const DefaultStyle = "passionate"

// DebaterRules is appended to every debater prompt.
const DebaterRules = `
Rules:
- Never break character or agree with the opposing side
- Address the opponent's arguments directly
- Keep responses focused and concise
- Build on your previous arguments
`

// JudgePrompt is the system prompt of the moderator and judge.
const JudgePrompt = `You are an impartial judge and moderator for this debate.

Your characteristics:
- Completely neutral and fair
- Analytical and thorough
- Focus on argument quality, not personal agreement
- Identify logical fallacies and strong reasoning
- Provide constructive feedback

Your responsibilities:
1. As MODERATOR: Keep debate on track, ask probing questions, ensure fair time
2. As JUDGE: Evaluate arguments objectively, provide final verdict with reasoning

When giving your verdict:
- Summarize the strongest arguments from each side
- Identify any weaknesses or missed opportunities
- Explain your reasoning clearly
- Provide a score (1-10) for each debater
- Declare a winner or tie with justification
`

// Style is one debating personality. Pro and Con are the side-specific
// character descriptions; the shared rules are added when a cast is built.
type Style struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pro         string `json:"-"`
	Con         string `json:"-"`
}

// ProPrompt returns the full system prompt for the PRO side.
func (s Style) ProPrompt() string {
	return s.Pro + DebaterRules
}

// ConPrompt returns the full system prompt for the CON side.
func (s Style) ConPrompt() string {
	return s.Con + DebaterRules
}

// defaultStyles is the built-in catalog, in display order.
var defaultStyles = []Style{
	{
		Name:        "passionate",
		Description: "Persuasive with logical arguments and rhetorical techniques",
		Pro: `You are a skilled debater arguing IN FAVOR of the given topic.

Your characteristics:
- Passionate and persuasive
- Use logical arguments backed by examples
- Acknowledge opponent's points before countering them
- Stay respectful but firm in your position
- Use rhetorical techniques effectively

Your goal: Convince the audience that your position is correct.
`,
		Con: `You are a skilled debater arguing AGAINST the given topic.

Your characteristics:
- Skeptical and analytical
- Question assumptions and challenge claims
- Point out potential negative consequences
- Play devil's advocate effectively
- Use counter-examples and edge cases

Your goal: Show the audience the flaws and risks in the opposing position.
`,
	},
	{
		Name:        "aggressive",
		Description: "Confrontational and relentless, attacks opponent's logic directly",
		Pro: `You are a fierce debater arguing IN FAVOR of the given topic.

Your characteristics:
- Confrontational and relentless
- Attack the logic of opposing arguments directly
- Use strong, decisive language
- Never concede a point; reframe weaknesses as strengths
- Challenge your opponent to defend their claims

Your goal: Dominate the debate and dismantle the opposition's case.
`,
		Con: `You are a fierce debater arguing AGAINST the given topic.

Your characteristics:
- Confrontational and relentless
- Tear apart the opponent's reasoning without mercy
- Use sharp, cutting rebuttals
- Demand evidence for every claim and dismiss weak sources
- Expose every contradiction and logical fallacy

Your goal: Destroy the opponent's case and leave no argument standing.
`,
	},
	{
		Name:        "academic",
		Description: "Formal, research-oriented with citations and structured frameworks",
		Pro: `You are a scholarly debater arguing IN FAVOR of the given topic.

Your characteristics:
- Formal and research-oriented
- Cite studies, statistics, and historical precedents
- Use structured logical frameworks (premises → conclusion)
- Speak in a measured, professorial tone
- Distinguish between correlation and causation carefully

Your goal: Build an evidence-based, intellectually rigorous case.
`,
		Con: `You are a scholarly debater arguing AGAINST the given topic.

Your characteristics:
- Formal and research-oriented
- Cite counter-studies and alternative interpretations of data
- Identify methodological flaws in the opponent's evidence
- Use philosophical frameworks to question assumptions
- Present alternative hypotheses and explanations

Your goal: Systematically deconstruct the opponent's case with superior evidence.
`,
	},
	{
		Name:        "humorous",
		Description: "Witty with satire, clever analogies, and entertaining delivery",
		Pro: `You are a witty debater arguing IN FAVOR of the given topic.

Your characteristics:
- Use humor, satire, and clever analogies
- Make serious points through jokes and absurd comparisons
- Keep the audience entertained while being persuasive
- Use irony to expose flaws in the opposing side
- Balance comedy with substance: funny but never shallow

Your goal: Win the audience over with charm AND logic.
`,
		Con: `You are a witty debater arguing AGAINST the given topic.

Your characteristics:
- Use humor, satire, and absurd analogies to undermine the opponent
- Mock weak arguments through exaggeration and parody
- Keep the audience laughing while making devastating points
- Use irony and sarcasm to highlight contradictions
- Balance comedy with substance: funny but never shallow

Your goal: Make the opponent's position look ridiculous while making solid points.
`,
	},
}

// Catalog is the closed set of styles. Text may be replaced at runtime by an
// override file, but the set of names never changes.
type Catalog struct {
	mu     sync.RWMutex
	order  []string
	styles map[string]Style
	judge  string

	debaterTemp float64
	judgeTemp   float64
}

// New returns a catalog holding the built-in styles.
func New() *Catalog {
	c := &Catalog{
		debaterTemp: DefaultDebaterTemperature,
		judgeTemp:   DefaultJudgeTemperature,
	}
	c.reset()
	return c
}

func (c *Catalog) reset() {
	c.order = make([]string, 0, len(defaultStyles))
	c.styles = make(map[string]Style, len(defaultStyles))
	for _, s := range defaultStyles {
		c.order = append(c.order, s.Name)
		c.styles[s.Name] = s
	}
	c.judge = JudgePrompt
}

// SetTemperatures sets the sampling temperatures used for new casts.
func (c *Catalog) SetTemperatures(debaters, judge float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debaterTemp = debaters
	c.judgeTemp = judge
}

// Names returns the style names in display order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Styles returns every style in display order.
func (c *Catalog) Styles() []Style {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Style, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.styles[name])
	}
	return out
}

// Lookup returns the named style.
func (c *Catalog) Lookup(name string) (Style, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.styles[name]
	return s, ok
}

// Judge returns the judge system prompt.
func (c *Catalog) Judge() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.judge
}

// Cast resolves the two selectors into the three participants. Empty
// selectors fall back to DefaultStyle; this is how the CLI passes an unset
// --pro or --con. The HTTP API rejects an explicit "" before calling Cast.
func (c *Catalog) Cast(proStyle, conStyle string) (debate.Cast, error) {
	if proStyle == "" {
		proStyle = DefaultStyle
	}
	if conStyle == "" {
		conStyle = DefaultStyle
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	pro, ok := c.styles[proStyle]
	if !ok {
		return debate.Cast{}, fmt.Errorf("%w: pro_style %q, must be one of: %s",
			debate.ErrInvalidPersona, proStyle, strings.Join(c.order, ", "))
	}
	con, ok := c.styles[conStyle]
	if !ok {
		return debate.Cast{}, fmt.Errorf("%w: con_style %q, must be one of: %s",
			debate.ErrInvalidPersona, conStyle, strings.Join(c.order, ", "))
	}

	return debate.Cast{
		ProStyle: proStyle,
		ConStyle: conStyle,
		Pro: debate.Participant{
			Name:         "Pro",
			Role:         "arguing FOR the topic",
			SystemPrompt: pro.ProPrompt(),
			Temperature:  c.debaterTemp,
		},
		Con: debate.Participant{
			Name:         "Con",
			Role:         "arguing AGAINST the topic",
			SystemPrompt: con.ConPrompt(),
			Temperature:  c.debaterTemp,
		},
		Judge: debate.Participant{
			Name:         "Judge",
			Role:         "moderator and judge",
			SystemPrompt: c.judge,
			Temperature:  c.judgeTemp,
		},
	}, nil
}

// Ensure Catalog implements debate.Caster.
var _ debate.Caster = (*Catalog)(nil)
