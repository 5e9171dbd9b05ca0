package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/podium/internal/debate"
)

// VoteFunc delivers the observer's vote to wherever the debate runs.
type VoteFunc func(v debate.Vote)

// EventMsg wraps one debate event for the bubbletea loop.
type EventMsg struct {
	Event debate.Event
}

// StreamClosedMsg is sent when the event channel closes.
type StreamClosedMsg struct{}

// turn is one rendered message.
type turn struct {
	speaker debate.Speaker
	label   string
	content strings.Builder
	done    bool
}

// DebateView is the bubbletea model for watching a debate.
type DebateView struct {
	events <-chan debate.Event
	vote   VoteFunc

	debateID string
	topic    string
	proStyle string
	conStyle string
	phase    debate.Phase
	round    int

	turns      []*turn
	active     *turn
	votePrompt string
	voting     bool
	voted      *debate.Vote
	result     *debate.VoteReceived
	scoring    string
	failure    string
	completed  bool
	closed     bool
	quitting   bool

	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int
	height   int
	follow   bool

	styles styles
}

// NewDebateView creates a viewer reading events. vote may be nil for a
// read-only viewer.
func NewDebateView(events <-chan debate.Event, vote VoteFunc) *DebateView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &DebateView{
		events:  events,
		vote:    vote,
		spinner: sp,
		follow:  true,
		styles:  newStyles(),
	}
}

// Run shows the viewer full-screen until the user quits.
func Run(m *DebateView) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func waitForEvent(events <-chan debate.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return StreamClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Init implements tea.Model.
func (m *DebateView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m *DebateView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.active != nil {
			m.refresh()
		}
		return m, cmd

	case EventMsg:
		m.Apply(msg.Event)
		m.refresh()
		return m, waitForEvent(m.events)

	case StreamClosedMsg:
		m.closed = true
		m.active = nil
		m.voting = false
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DebateView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "p", "c", "t":
		if m.voting {
			m.castVote(map[string]debate.Vote{"p": debate.VotePro, "c": debate.VoteCon, "t": debate.VoteTie}[msg.String()])
			m.refresh()
		}
		return m, nil
	case "G", "end":
		m.follow = true
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.follow = m.viewport.AtBottom()
	return m, cmd
}

func (m *DebateView) castVote(v debate.Vote) {
	m.voting = false
	m.voted = &v
	if m.vote != nil {
		m.vote(v)
	}
}

// Apply folds one event into the view state.
func (m *DebateView) Apply(ev debate.Event) {
	if m.debateID == "" {
		m.debateID = ev.DebateID
	}
	switch p := ev.Payload.(type) {
	case debate.DebateStarted:
		m.topic = p.Topic
		m.proStyle = p.ProStyle
		m.conStyle = p.ConStyle

	case debate.PhaseChanged:
		m.phase = p.Phase
		m.round = p.Round

	case debate.MessageStarted:
		m.active = &turn{speaker: p.Speaker}
		m.turns = append(m.turns, m.active)

	case debate.MessageChunk:
		if m.active == nil || m.active.speaker != p.Speaker {
			m.active = &turn{speaker: p.Speaker}
			m.turns = append(m.turns, m.active)
		}
		m.active.content.WriteString(p.Chunk)

	case debate.MessageCompleted:
		t := m.active
		if t == nil || t.speaker != p.Speaker {
			t = &turn{speaker: p.Speaker}
			m.turns = append(m.turns, t)
		}
		t.content.Reset()
		t.content.WriteString(p.Content)
		t.label = p.Label
		t.done = true
		m.active = nil

	case debate.VoteRequired:
		m.votePrompt = p.Prompt
		m.voting = m.voted == nil

	case debate.VoteReceived:
		m.voting = false
		m.result = &p
		t := &turn{speaker: debate.SpeakerAudience, done: true}
		t.content.WriteString(p.Message)
		m.turns = append(m.turns, t)

	case debate.DebateCompleted:
		m.completed = true
		m.scoring = p.Scoring
		m.phase = debate.PhaseFinished
		m.active = nil

	case debate.Failed:
		m.failure = p.Message
		m.active = nil
		m.voting = false
	}
}

func (m *DebateView) resize(width, height int) {
	m.width = width
	m.height = height
	bodyHeight := height - lipgloss.Height(m.headerView()) - lipgloss.Height(m.footerView())
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = bodyHeight
	}
	m.refresh()
}

func (m *DebateView) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.body())
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *DebateView) turnTitle(t *turn) string {
	title := t.speaker.String()
	switch t.speaker {
	case debate.SpeakerPro:
		if m.proStyle != "" {
			title += " · " + m.proStyle
		}
	case debate.SpeakerCon:
		if m.conStyle != "" {
			title += " · " + m.conStyle
		}
	}
	if t.label != "" {
		title += " · " + t.label
	}
	if !t.done {
		title += " " + m.spinner.View()
	}
	return title
}

func (m *DebateView) body() string {
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		content := t.content.String()
		if content == "" && !t.done {
			content = m.styles.label.Render("thinking...")
		}
		b.WriteString(card(t.speaker, m.turnTitle(t), content, m.width))
		b.WriteString("\n")
	}
	if m.scoring != "" {
		b.WriteString("\n")
		b.WriteString(card(debate.SpeakerScoring, "ARGUMENT SCORES", m.scoring, m.width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *DebateView) headerView() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("PODIUM"))
	b.WriteString(" ")
	topic := m.topic
	if topic == "" {
		topic = "waiting for debate..."
	}
	b.WriteString(m.styles.topic.Render(topic))
	b.WriteString("\n")

	phase := m.phase.String()
	if m.phase == debate.PhaseRebuttal && m.round > 0 {
		phase = fmt.Sprintf("%s %d", phase, m.round)
	}
	b.WriteString(m.styles.label.Render("Phase: "))
	b.WriteString(m.styles.phase.Render(phase))
	if m.proStyle != "" {
		b.WriteString(m.styles.label.Render("   Styles: "))
		b.WriteString(m.styles.value.Render(m.proStyle + " vs " + m.conStyle))
	}
	b.WriteString("\n")
	width := m.width
	if width <= 0 {
		width = 40
	}
	b.WriteString(m.styles.divider.Render(strings.Repeat("─", width)))
	return b.String()
}

func (m *DebateView) footerView() string {
	var b strings.Builder
	switch {
	case m.failure != "":
		b.WriteString(m.styles.errorMsg.Render("Debate failed: " + m.failure))
		b.WriteString(m.styles.footer.Render("   q quit"))
	case m.voting:
		prompt := m.votePrompt
		if prompt == "" {
			prompt = debate.DefaultVotePrompt
		}
		b.WriteString(m.styles.value.Render(prompt))
		b.WriteString("  ")
		b.WriteString(m.styles.key.Render("p"))
		b.WriteString(" PRO  ")
		b.WriteString(m.styles.key.Render("c"))
		b.WriteString(" CON  ")
		b.WriteString(m.styles.key.Render("t"))
		b.WriteString(" TIE")
	case m.completed:
		b.WriteString(m.styles.done.Render("Debate complete."))
		b.WriteString(m.styles.footer.Render("   ↑/↓ scroll • q quit"))
	case m.closed:
		b.WriteString(m.styles.errorMsg.Render("Connection closed."))
		b.WriteString(m.styles.footer.Render("   q quit"))
	default:
		b.WriteString(m.styles.footer.Render("↑/↓ scroll • G follow • q quit"))
	}
	return b.String()
}

// View implements tea.Model.
func (m *DebateView) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.headerView() + "\n" + m.body() + m.footerView()
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

// Completed reports whether the debate finished successfully.
func (m *DebateView) Completed() bool {
	return m.completed
}

// Failure returns the error message of a failed debate.
func (m *DebateView) Failure() string {
	return m.failure
}

// Voting reports whether the view is waiting for the observer's vote.
func (m *DebateView) Voting() bool {
	return m.voting
}

// Transcript returns the finished turns in order.
func (m *DebateView) Transcript() []debate.Entry {
	var out []debate.Entry
	for _, t := range m.turns {
		if t.done {
			out = append(out, debate.Entry{Speaker: t.speaker, Content: t.content.String()})
		}
	}
	return out
}
