package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/riddleyu/go-server/internal/cache"
	"github.com/riddleyu/go-server/internal/daily"
	"github.com/riddleyu/go-server/internal/ledger"
	"github.com/riddleyu/go-server/internal/orchestrator"
	"github.com/riddleyu/go-server/internal/puzzle"
)

const testSecret = "cron-secret"

func fixture(date string) *puzzle.Puzzle {
	return &puzzle.Puzzle{
		Date:    date,
		Answer:  []string{"马", "到", "成", "功"},
		Pinyin:  "mǎ dào chéng gōng",
		Meaning: "Immediate success upon arrival.",
		Origin:  "A Song dynasty phrase.",
		Riddles: []puzzle.Riddle{
			{Text: "动物", Hint: "animals"},
			{Text: "动词", Hint: "to arrive"},
			{Text: "变成", Hint: "to become"},
			{Text: "成就", Hint: "achievement"},
		},
		Board:  []string{"龙", "来", "成", "果", "马", "为", "去", "绩", "虎", "到", "变", "行", "牛", "做", "功", "效"},
		SlotOf: []int{0, 1, 2, 3, 0, 2, 1, 3, 0, 1, 2, 1, 0, 2, 3, 3},
	}
}

type stubGen struct {
	calls int
	fail  bool
}

func (g *stubGen) Generate(ctx context.Context, date string, exclude []string) (*puzzle.Puzzle, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("model unavailable")
	}
	return fixture(date), nil
}

// newTestServer pins today to 2026-02-26 and wires a memory store.
func newTestServer(t *testing.T, gen *stubGen, opts orchestrator.Options) *Server {
	t.Helper()
	t.Setenv("CRON_SECRET", testSecret)
	store := cache.NewMemory()
	orch := orchestrator.New(store, gen, ledger.New(store), opts)
	cal := daily.Fixed(time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC))
	return New(orch, cal)
}

func do(s *Server, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubGen{}, orchestrator.Options{})
	rec := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestPuzzleGeneratesOnDemand(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{OnDemand: true})

	rec := do(s, http.MethodGet, "/puzzle", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p puzzle.Puzzle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "2026-02-26", p.Date, "date defaults to the calendar's today")
	assert.Equal(t, 1, gen.calls)

	// Second read is served from cache.
	rec = do(s, http.MethodGet, "/puzzle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gen.calls)
}

func TestPuzzleRejectsBadDate(t *testing.T) {
	s := newTestServer(t, &stubGen{}, orchestrator.Options{OnDemand: true})
	rec := do(s, http.MethodGet, "/puzzle?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPuzzleNotYetAvailable(t *testing.T) {
	s := newTestServer(t, &stubGen{}, orchestrator.Options{})
	rec := do(s, http.MethodGet, "/puzzle?date=2026-02-26", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_yet_available", body["error"])
	assert.Equal(t, "2026-02-26", body["date"])
}

func TestPuzzleFallsBackToPreviousDay(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{Fallback: true})

	// Seed yesterday through the privileged endpoint.
	rec := do(s, http.MethodGet, "/generate?date=2026-02-26", testSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/puzzle?date=2026-02-27", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p puzzle.Puzzle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "2026-02-26", p.Date)
}

func TestGenerateRequiresAuth(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	for _, bearer := range []string{"", "wrong-secret"} {
		rec := do(s, http.MethodGet, "/generate", bearer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Equal(t, 0, gen.calls, "rejected requests have no side effects")
}

func TestGenerateIsIdempotent(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	rec := do(s, http.MethodPost, "/generate?date=2026-02-26", testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	var res generateRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "generated", res.Status)
	assert.Equal(t, "2026-02-26", res.Date)

	rec = do(s, http.MethodPost, "/generate?date=2026-02-26", testSecret)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "already cached", res.Status)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateForceRegenerates(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	do(s, http.MethodPost, "/generate?date=2026-02-26", testSecret)
	rec := do(s, http.MethodPost, "/generate?date=2026-02-26&force=true", testSecret)
	require.Equal(t, http.StatusOK, rec.Code)

	var res generateRes
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "generated", res.Status)
	assert.Equal(t, 2, gen.calls)
}

func TestGenerateSurfacesFailure(t *testing.T) {
	gen := &stubGen{fail: true}
	s := newTestServer(t, gen, orchestrator.Options{})

	rec := do(s, http.MethodPost, "/generate?date=2026-02-26", testSecret)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to generate puzzle", body["error"])
	assert.NotEmpty(t, body["detail"])
}

func TestGenerateAcceptsMintedJWT(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	tok, err := MintGenerateToken(testSecret, time.Minute)
	require.NoError(t, err)

	rec := do(s, http.MethodPost, "/generate?date=2026-02-26", tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateRejectsExpiredJWT(t *testing.T) {
	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	tok, err := MintGenerateToken(testSecret, -time.Minute)
	require.NoError(t, err)

	rec := do(s, http.MethodPost, "/generate?date=2026-02-26", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, gen.calls)
}

func TestGenerateAcceptsHashedOperatorToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("op-token"), bcrypt.MinCost)
	require.NoError(t, err)
	t.Setenv("GENERATE_TOKEN_HASH", string(hash))

	gen := &stubGen{}
	s := newTestServer(t, gen, orchestrator.Options{})

	rec := do(s, http.MethodPost, "/generate?date=2026-02-26", "op-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t, &stubGen{}, orchestrator.Options{})
	rec := do(s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}
