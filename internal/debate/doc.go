// Package debate implements the debate orchestration engine.
//
// A debate is a fixed sequence of phases in which two debaters (PRO and CON)
// and a judge take turns responding to a shared transcript. The engine is made
// of a few small pieces:
//
//   - Plan: the phase state machine. It yields one Step per turn and never
//     calls an agent itself.
//   - Transcript: the append-only record of what has been said.
//   - VoteGate: a one-shot, deadline-bound wait for the audience vote.
//   - Bridge: turns a blocking fragment stream into a channel the
//     orchestrator can select on.
//   - Orchestrator: walks the plan, calls agents, appends to the transcript,
//     and emits Events.
//   - Registry: the bounded, in-memory set of live sessions.
//
// # Usage
//
//	reg := debate.NewRegistry(catalog, factory, debate.RegistryConfig{})
//	sess, err := reg.Create("Should X happen?", "passionate", "academic")
//	if err != nil { ... }
//
//	orch := debate.NewOrchestrator(debate.OrchestratorConfig{RebuttalRounds: 2})
//	events, err := orch.Run(ctx, sess)
//	if err != nil { ... }
//	for ev := range events {
//		// forward ev to the observer
//	}
//
// # Thread Safety
//
// A Session is driven by exactly one Run. The only field written from
// outside that goroutine is the vote gate, which is safe for concurrent use.
// Registry is safe for concurrent use.
package debate
