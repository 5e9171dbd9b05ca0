package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/podium/internal/debate"
)

// Agent is a debate participant backed by the Messages API. Each agent has
// its own persona and temperature but shares the client and its tracker.
type Agent struct {
	client      *Client
	participant debate.Participant
}

// NewAgent creates an agent for p.
func NewAgent(client *Client, p debate.Participant) *Agent {
	return &Agent{client: client, participant: p}
}

// Participant returns the persona the agent was built with.
func (a *Agent) Participant() debate.Participant {
	return a.participant
}

// userPrompt builds the per-turn message around the transcript.
func (a *Agent) userPrompt(transcript, instruction string) string {
	return fmt.Sprintf("Current debate transcript:\n%s\n\nYour instruction for this turn:\n%s\n\nRespond in character as %s, the %s in this debate.",
		transcript, instruction, a.participant.Name, a.participant.Role)
}

func (a *Agent) params(transcript, instruction string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       a.client.Model(),
		MaxTokens:   a.client.MaxTokens(),
		Temperature: anthropic.Float(a.participant.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(a.userPrompt(transcript, instruction))),
		},
	}
	if a.participant.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: a.participant.SystemPrompt},
		}
	}
	return params
}

// Respond implements debate.Agent.
func (a *Agent) Respond(ctx context.Context, transcript, instruction string) (string, error) {
	resp, err := a.client.sdk().Messages.New(ctx, a.params(transcript, instruction))
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}

	a.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var result strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			result.WriteString(variant.Text)
		}
	}
	return result.String(), nil
}

// StreamRespond implements debate.Agent.
func (a *Agent) StreamRespond(ctx context.Context, transcript, instruction string) (debate.FragmentStream, error) {
	stream := a.client.sdk().Messages.NewStreaming(ctx, a.params(transcript, instruction))
	return newTextStream(stream, a.client.Tracker()), nil
}

// Factory builds API agents for debate sessions.
type Factory struct {
	client *Client
}

// NewFactory returns a factory that shares client between agents.
func NewFactory(client *Client) *Factory {
	return &Factory{client: client}
}

// NewAgent implements debate.AgentFactory.
func (f *Factory) NewAgent(p debate.Participant) (debate.Agent, error) {
	if f.client == nil {
		return nil, fmt.Errorf("create agent %s: no API client", p.Name)
	}
	return NewAgent(f.client, p), nil
}

// Ensure the API types implement the engine interfaces.
var (
	_ debate.Agent        = (*Agent)(nil)
	_ debate.AgentFactory = (*Factory)(nil)
)
