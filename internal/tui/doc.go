// Package tui provides the terminal viewer for podium debates.
//
// The viewer consumes a debate's event sequence and renders it as a
// scrolling chat: each turn is a colored card per speaker, streamed
// fragments appear as they arrive, and a spinner marks the turn in
// progress. When the debate asks for the audience vote the footer turns
// into a prompt and the p, c and t keys cast PRO, CON or TIE.
//
// The viewer does not know where events come from. The run command feeds
// it straight from an in-process orchestrator, the watch command from a
// server's websocket.
//
// Usage:
//
//	events, _ := orchestrator.Run(ctx, session)
//	model := tui.NewDebateView(events, func(v debate.Vote) { session.SubmitVote(v) })
//	if err := tui.Run(model); err != nil {
//	    // ...
//	}
//
// Before a debate starts, TopicPrompt asks for the topic when none was
// given on the command line.
package tui
