package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ShayCichocki/podium/internal/debate"
)

// NotFoundMessage is the error text sent to an observer of an unknown debate.
const NotFoundMessage = "Debate session not found"

// InboundMessage is a frame sent by the observer.
type InboundMessage struct {
	Type string `json:"type"`
	Vote string `json:"vote"`
}

// ParseInbound decodes an observer frame. Only votes are meaningful; ok is
// false for anything else. A vote with a missing or malformed value counts
// as TIE.
func ParseInbound(data []byte) (v debate.Vote, ok bool) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return debate.DefaultVote, false
	}
	if msg.Type != "vote" {
		return debate.DefaultVote, false
	}
	return resolveVote(msg.Vote), true
}

// resolveVote maps a raw vote value to a Vote. Missing or malformed values
// count as TIE on every transport.
func resolveVote(raw string) debate.Vote {
	v, err := debate.ParseVote(raw)
	if err != nil {
		return debate.DefaultVote
	}
	return v
}

// handleWebSocket runs the debate for one observer. The debate lives exactly
// as long as the connection: closing the socket abandons it.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[server] websocket upgrade for %s failed: %v", id, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.cfg.ReadLimit)

	sess, err := s.deps.Registry.Get(id)
	if err != nil {
		s.closeWithError(conn, id, NotFoundMessage)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.deps.Orchestrator.Run(ctx, sess)
	if err != nil {
		s.closeWithError(conn, id, err.Error())
		return
	}

	unregister := s.streams.Register(id, cancel)
	defer unregister()
	log.Printf("[server] observer connected to debate %s", id)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.readVotes(conn, sess, cancel)
	}()

	writeFailed := false
	for ev := range events {
		if writeFailed {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			s.debugf("[server] %s: write failed: %v", id, err)
			writeFailed = true
			cancel()
		}
	}

	if !writeFailed {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	}
	conn.Close()
	<-readDone
	log.Printf("[server] debate %s stream ended (%s)", id, sess.Status())
}

// readVotes forwards votes to the session until the connection fails, then
// cancels the run.
func (s *Server) readVotes(conn *websocket.Conn, sess *debate.Session, cancel context.CancelFunc) {
	defer cancel()
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.debugf("[server] %s: read ended: %v", sess.ID(), err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		v, ok := ParseInbound(data)
		if !ok {
			s.debugf("[server] %s: ignoring frame %q", sess.ID(), data)
			continue
		}
		if !sess.SubmitVote(v) {
			s.debugf("[server] %s: vote %s arrived after the gate resolved", sess.ID(), v)
		}
	}
}

func (s *Server) closeWithError(conn *websocket.Conn, id, msg string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(debate.Event{DebateID: id, Payload: debate.Failed{Message: msg}}); err != nil {
		return
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
}
