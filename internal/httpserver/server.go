// internal/httpserver/server.go
//
// HTTP server wiring for the RiddleYu backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", GET /puzzle.
//   - Privileged endpoint: GET|POST /generate (bearer credential).
//
// Notes:
//   - CORS is origin-aware so the web client can call cross-origin.
//   - Generation can take seconds; those handlers run under their own
//     context timeout instead of the short global middleware timeout.

package httpserver

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/riddleyu/go-server/internal/daily"
	"github.com/riddleyu/go-server/internal/orchestrator"
)

// Server bundles the router, the orchestrator and the calendar policy.
type Server struct {
	r           *chi.Mux
	orch        *orchestrator.Orchestrator
	cal         *daily.Calendar
	auth        authConfig
	generateTTL time.Duration // per-request budget for generation calls
}

// New constructs a Server, installs middleware, and registers routes.
func New(orch *orchestrator.Orchestrator, cal *daily.Calendar) *Server {
	s := &Server{
		r:           chi.NewRouter(),
		orch:        orch,
		cal:         cal,
		auth:        authFromEnv(),
		generateTTL: time.Duration(envInt("GENERATE_TIMEOUT_SECONDS", 90)) * time.Second,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(corsFromEnv)     // origin-aware CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"riddleyu-go","endpoints":["/health","GET /puzzle","GET|POST /generate"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Puzzle read path — public.
	s.r.Get("/puzzle", s.handlePuzzle)

	// Generation trigger — privileged (cron job or operator).
	s.r.With(s.requireGenerateAuth()).Get("/generate", s.handleGenerate)
	s.r.With(s.requireGenerateAuth()).Post("/generate", s.handleGenerate)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt reads an integer env var, or def if unset/unparseable.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
