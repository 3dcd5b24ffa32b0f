// internal/httpserver/routes_puzzle.go
//
// Handlers for the puzzle read path and the privileged generation trigger.
//
//   - GET  /puzzle?date=YYYY-MM-DD           → puzzle JSON for the date
//   - GET|POST /generate?date=...&force=bool → ensure the date is cached
//
// Both default the date to the server's canonical "today" (one timezone
// policy shared with the cron trigger, so cache keys always line up).

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/riddleyu/go-server/internal/daily"
	"github.com/riddleyu/go-server/internal/orchestrator"
)

// handlePuzzle serves the puzzle for the requested date.
// Response codes:
//   - 200: puzzle JSON (possibly the previous day's, via fallback)
//   - 400: malformed date
//   - 503: nothing cached and nothing generatable yet, come back later
//   - 500: store or generator failure
func (s *Server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	date, ok := s.requestDate(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.generateTTL)
	defer cancel()

	p, err := s.orch.Fetch(ctx, date, orchestrator.ModeInteractive)
	if errors.Is(err, orchestrator.ErrNotYetAvailable) {
		// Expected state, not an error.
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_yet_available", "date": date})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("fetch puzzle")
		http.Error(w, `{"error":"Failed to fetch puzzle"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(p)
}

// generateRes is returned by /generate on success.
type generateRes struct {
	Status string `json:"status"` // "generated" | "already cached"
	Date   string `json:"date"`
}

// handleGenerate runs the scheduled generation path for a date.
// force=true regenerates and overwrites regardless of cache state.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	date, ok := s.requestDate(w, r)
	if !ok {
		return
	}
	force := r.URL.Query().Get("force") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), s.generateTTL)
	defer cancel()

	status, _, err := s.orch.Ensure(ctx, date, force)
	if err != nil {
		log.Error().Err(err).Str("date", date).Bool("force", force).Msg("generate puzzle")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":  "Failed to generate puzzle",
			"detail": err.Error(),
		})
		return
	}
	_ = json.NewEncoder(w).Encode(generateRes{Status: string(status), Date: date})
}

// requestDate resolves the date query param, defaulting to today.
// Writes a 400 and returns ok=false on a malformed value.
func (s *Server) requestDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return s.cal.Today(), true
	}
	if !daily.Valid(date) {
		http.Error(w, `{"error":"invalid date, want YYYY-MM-DD"}`, http.StatusBadRequest)
		return "", false
	}
	return date, true
}
