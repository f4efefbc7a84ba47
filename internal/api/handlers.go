package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pastemark/pastemark/core/cache"
	"github.com/pastemark/pastemark/core/errors"
	"github.com/pastemark/pastemark/core/paste"
	"github.com/pastemark/pastemark/core/verify"
	"github.com/pastemark/pastemark/internal/logging"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ReconcileRequest is the request body for ad-hoc reconciliation.
type ReconcileRequest struct {
	Document string        `json:"document"`
	Events   []paste.Event `json:"events"`
}

// ReconcileResult is the result of a reconciliation run.
type ReconcileResult struct {
	Annotated string         `json:"annotated"`
	Report    *verify.Report `json:"report"`
	Duration  string         `json:"duration"`
}

// VerifyRequest is the request body for verification.
type VerifyRequest struct {
	Original  string `json:"original"`
	Annotated string `json:"annotated"`
}

// RecordRequest is the request body for recording a paste event.
type RecordRequest struct {
	Text       string    `json:"text"`
	StartIndex int       `json:"start_index,omitempty"`
	EndIndex   int       `json:"end_index,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "pastemark API",
		"version": version,
		"endpoints": []string{
			"GET /health",
			"POST /reconcile",
			"POST /verify",
			"GET /sessions",
			"POST /sessions",
			"GET /sessions/:id",
			"DELETE /sessions/:id",
			"GET /sessions/:id/events",
			"POST /sessions/:id/events",
			"POST /sessions/:id/reconcile",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	count := 0
	if sessions, err := s.store.List(); err == nil {
		count = len(sessions)
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:   "ok",
		Version:  version,
		Uptime:   time.Since(s.start).Round(time.Second).String(),
		Sessions: count,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
		return
	}
	if req.Document == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "document is required")
		return
	}

	respond(w, http.StatusOK, s.runReconcile(req.Document, req.Events))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
		return
	}

	respond(w, http.StatusOK, verify.Annotated(req.Original, req.Annotated))
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.store.List()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
		respondWithTotal(w, http.StatusOK, sessions, len(sessions))

	case http.MethodPost:
		var req struct {
			Document string `json:"document"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
			return
		}
		sess, err := s.store.Create(req.Document)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
		logging.SessionEvent("session_created", sess.ID)
		respond(w, http.StatusCreated, sess)

	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

// handleSessionByID dispatches /sessions/:id and its sub-resources.
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Session ID is required")
		return
	}

	switch sub {
	case "":
		s.sessionRoot(w, r, id)
	case "events":
		s.sessionEvents(w, r, id)
	case "reconcile":
		s.sessionReconcile(w, r, id)
	default:
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	}
}

func (s *Server) sessionRoot(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, err := s.store.Get(id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respond(w, http.StatusOK, sess)

	case http.MethodDelete:
		if err := s.store.Delete(id); err != nil {
			respondStoreError(w, err)
			return
		}
		logging.SessionEvent("session_deleted", id)
		respond(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and DELETE are allowed")
	}
}

func (s *Server) sessionEvents(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.store.Events(id)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondWithTotal(w, http.StatusOK, events, len(events))

	case http.MethodPost:
		var req RecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body: "+err.Error())
			return
		}
		ev := paste.Event{
			Text:       req.Text,
			StartIndex: req.StartIndex,
			EndIndex:   req.EndIndex,
			Timestamp:  req.Timestamp,
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = time.Now().UTC()
		}
		if err := s.store.RecordEvent(id, ev); err != nil {
			respondStoreError(w, err)
			return
		}
		logging.SessionEvent("event_recorded", id)
		respond(w, http.StatusCreated, ev)

	default:
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are allowed")
	}
}

func (s *Server) sessionReconcile(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}

	sess, err := s.store.Get(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	events, err := s.store.Events(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	s.hub.Broadcast(ProgressMessage{
		Type: "progress", Operation: "reconcile", Stage: "match", Progress: 0,
		Message: "reconciling session " + id,
	})

	result := s.runReconcile(sess.Document, events)

	s.hub.Broadcast(ProgressMessage{
		Type: "complete", Operation: "reconcile", Progress: 100,
		Message: "reconciled session " + id,
		Data: map[string]interface{}{
			"session_id": id,
			"highlights": result.Report.Highlights,
		},
	})

	respond(w, http.StatusOK, result)
}

// runReconcile runs the engine and verifies the output. Results are cached
// by content fingerprint; reconciliation is pure, so a hit is always valid.
func (s *Server) runReconcile(document string, events []paste.Event) ReconcileResult {
	started := time.Now()
	key := cache.Key(document, events)
	annotated, hit := s.results.Get(key)
	if !hit {
		annotated = s.engine.Reconcile(document, events)
		s.results.Put(key, annotated)
	}
	report := verify.Annotated(document, annotated)
	duration := time.Since(started)

	logging.ReconcileRun(len(document), len(events), report.Highlights, duration)

	return ReconcileResult{
		Annotated: annotated,
		Report:    report,
		Duration:  duration.Round(time.Microsecond).String(),
	}
}

func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
	}
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondWithTotal(w http.ResponseWriter, status int, data interface{}, total int) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
