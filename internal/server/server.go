// Package server exposes debates over HTTP and streams them to observers
// over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ShayCichocki/podium/internal/api"
	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/persona"
	"github.com/ShayCichocki/podium/internal/state"
)

// DefaultReadLimit caps inbound websocket frames. Observers only send votes.
const DefaultReadLimit = 4096

// writeTimeout bounds a single websocket write.
const writeTimeout = 10 * time.Second

// Config holds the listener settings.
type Config struct {
	Addr           string
	AllowedOrigins []string
	ReadLimit      int64
}

// Deps are the collaborators the handlers serve from.
type Deps struct {
	Registry     *debate.Registry
	Orchestrator *debate.Orchestrator
	Catalog      *persona.Catalog
	// Archive is optional; archive routes answer 503 without it.
	Archive state.DebateStore
	// Tokens is optional; /health reports usage when set.
	Tokens *api.TokenTracker
	// DebugLog receives per-frame tracing. Nil disables it.
	DebugLog *debate.DebugLogger
}

// Server is the debate HTTP and WebSocket server.
type Server struct {
	cfg      Config
	deps     Deps
	origins  originPolicy
	upgrader websocket.Upgrader
	streams  *StreamTracker
	started  time.Time

	httpServer *http.Server
}

// New creates a server. It does not start listening.
func New(cfg Config, deps Deps) *Server {
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = DefaultReadLimit
	}
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		origins: newOriginPolicy(cfg.AllowedOrigins),
		streams: NewStreamTracker(),
		started: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.origins.checkWebSocket,
	}
	return s
}

func (s *Server) debugf(format string, args ...interface{}) {
	s.deps.DebugLog.Log(format, args...)
}

// Streams returns the tracker of active websocket debates.
func (s *Server) Streams() *StreamTracker {
	return s.streams
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/config/styles", s.handleStyles)
	mux.HandleFunc("POST /api/debates", s.handleCreateDebate)
	mux.HandleFunc("GET /api/debates", s.handleListDebates)
	mux.HandleFunc("GET /api/debates/{id}", s.handleGetDebate)
	mux.HandleFunc("POST /api/debates/{id}/vote", s.handleVote)
	mux.HandleFunc("GET /ws/debates/{id}", s.handleWebSocket)
	mux.HandleFunc("GET /api/archive", s.handleArchiveList)
	mux.HandleFunc("GET /api/archive/{id}", s.handleArchiveGet)
	mux.HandleFunc("GET /api/archive/{id}/transcript.md", s.handleArchiveMarkdown)
	mux.HandleFunc("GET /api/archive/{id}/transcript.html", s.handleArchiveHTML)
	return s.origins.wrap(mux)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[server] listening on %s", ln.Addr())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Shutdown stops accepting requests, cancels every streaming debate and
// waits for their handlers to finish or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if n := s.streams.CancelAll(); n > 0 {
		log.Printf("[server] cancelled %d streaming debate(s)", n)
	}
	if !s.streams.Wait(ctx) {
		return fmt.Errorf("shutdown: %d stream(s) still open: %w", s.streams.Count(), ctx.Err())
	}
	return err
}
