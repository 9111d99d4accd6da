// Package api provides HTTP handlers for LinkBrief endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linkbrief/linkbrief/internal/models"
)

// eventsHandler receives Slack Events API deliveries. It echoes the URL
// verification handshake and runs everything else through the pipeline.
// Processing outcomes are always acknowledged with HTTP 200 so the platform
// does not retry deliveries the pipeline has already resolved; only a body
// that cannot be decoded at all is a client error.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.eventsHandler: processing event delivery", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.eventsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var env models.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		slog.Warn("Server.eventsHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	if env.IsChallenge() {
		slog.Info("Server.eventsHandler: answering url verification handshake")
		writeJSONResponse(w, http.StatusOK, models.ChallengeResponse{Challenge: env.Challenge})
		return
	}

	outcome := s.pipe.Process(r.Context(), env)
	slog.Debug("Server.eventsHandler: event processed", "outcome", string(outcome))
	writeJSONResponse(w, http.StatusOK, models.Status(outcome.Status()))
}

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Status(models.APIStatusOK))
}
