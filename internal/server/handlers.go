package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/ShayCichocki/podium/internal/api"
	"github.com/ShayCichocki/podium/internal/debate"
	"github.com/ShayCichocki/podium/internal/export"
	"github.com/ShayCichocki/podium/internal/persona"
	"github.com/ShayCichocki/podium/internal/state"
	"github.com/ShayCichocki/podium/internal/version"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// CreateDebateRequest is the body of POST /api/debates. A style left out
// of the body defaults to "passionate"; a style sent as "" is rejected.
type CreateDebateRequest struct {
	Topic    string  `json:"topic"`
	ProStyle *string `json:"pro_style,omitempty"`
	ConStyle *string `json:"con_style,omitempty"`
}

// requestedStyle resolves one style field of a create request.
func requestedStyle(field string, value *string) (string, error) {
	if value == nil {
		return persona.DefaultStyle, nil
	}
	if *value == "" {
		return "", fmt.Errorf("%w: %s must not be empty", debate.ErrInvalidPersona, field)
	}
	return *value, nil
}

// CreateDebateResponse echoes the created session.
type CreateDebateResponse struct {
	DebateID string `json:"debate_id"`
	Topic    string `json:"topic"`
	ProStyle string `json:"pro_style"`
	ConStyle string `json:"con_style"`
}

// VoteRequest is the body of POST /api/debates/{id}/vote. A missing or
// malformed vote counts as TIE, the same as on the websocket.
type VoteRequest struct {
	Vote string `json:"vote"`
}

// VoteResponse reports whether the vote resolved the gate.
type VoteResponse struct {
	Accepted bool `json:"accepted"`
}

// StyleInfo is one entry of GET /api/config/styles.
type StyleInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StylesResponse is the body of GET /api/config/styles.
type StylesResponse struct {
	Styles []StyleInfo `json:"styles"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	Uptime        string     `json:"uptime"`
	Sessions      int        `json:"sessions"`
	ActiveStreams int        `json:"active_streams"`
	Usage         *api.Usage `json:"usage,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] WARNING: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Detail: msg})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, debate.ErrSessionNotFound), errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, debate.ErrRegistryFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, debate.ErrAlreadyStarted):
		return http.StatusConflict
	case debate.IsClientError(err), errors.Is(err, debate.ErrInvalidVote):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Multi-Agent Debate System API",
		"version": version.Get(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Version:       version.Get(),
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Sessions:      s.deps.Registry.Len(),
		ActiveStreams: s.streams.Count(),
	}
	if s.deps.Tokens != nil {
		usage := s.deps.Tokens.Snapshot()
		resp.Usage = &usage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	resp := StylesResponse{Styles: []StyleInfo{}}
	for _, st := range s.deps.Catalog.Styles() {
		resp.Styles = append(resp.Styles, StyleInfo{Name: st.Name, Description: st.Description})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateDebate(w http.ResponseWriter, r *http.Request) {
	var req CreateDebateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	proStyle, err := requestedStyle("pro_style", req.ProStyle)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	conStyle, err := requestedStyle("con_style", req.ConStyle)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.deps.Registry.Create(req.Topic, proStyle, conStyle)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("[server] create debate failed: %v", err)
		}
		writeError(w, status, err.Error())
		return
	}

	log.Printf("[server] created debate %s (%s vs %s)", sess.ID(), sess.ProStyle(), sess.ConStyle())
	writeJSON(w, http.StatusOK, CreateDebateResponse{
		DebateID: sess.ID(),
		Topic:    sess.Topic(),
		ProStyle: sess.ProStyle(),
		ConStyle: sess.ConStyle(),
	})
}

func (s *Server) handleListDebates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Registry.List())
}

func (s *Server) handleGetDebate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Registry.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	accepted, err := s.deps.Registry.SubmitVote(r.PathValue("id"), resolveVote(req.Vote))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VoteResponse{Accepted: accepted})
}

func (s *Server) archive(w http.ResponseWriter) (state.DebateStore, bool) {
	if s.deps.Archive == nil {
		writeError(w, http.StatusServiceUnavailable, "debate archive is disabled")
		return nil, false
	}
	return s.deps.Archive, true
}

func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	store, ok := s.archive(w)
	if !ok {
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	status := debate.SessionStatus(r.URL.Query().Get("status"))

	list, err := store.ListDebates(limit, status)
	if err != nil {
		log.Printf("[server] list archive failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) archivedDebate(w http.ResponseWriter, r *http.Request) (*state.Debate, bool) {
	store, ok := s.archive(w)
	if !ok {
		return nil, false
	}
	d, err := store.GetDebate(r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	return d, true
}

func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.archivedDebate(w, r); ok {
		writeJSON(w, http.StatusOK, d)
	}
}

func exportDocument(d *state.Debate) export.Document {
	return export.Document{
		Topic:   d.Topic,
		Entries: d.Transcript,
		Vote:    d.Vote,
		Scoring: d.Scoring,
	}
}

func (s *Server) handleArchiveMarkdown(w http.ResponseWriter, r *http.Request) {
	d, ok := s.archivedDebate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.FileName(d.Topic)}))
	io.WriteString(w, export.Markdown(exportDocument(d)))
}

func (s *Server) handleArchiveHTML(w http.ResponseWriter, r *http.Request) {
	d, ok := s.archivedDebate(w, r)
	if !ok {
		return
	}
	page, err := export.HTML(exportDocument(d))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, page)
}
