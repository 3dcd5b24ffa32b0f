package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureJSON = `{
  "date": "2026-02-26",
  "chengyu": ["马","到","成","功"],
  "pinyin": "mǎ dào chéng gōng",
  "meaning": "Immediate success upon arrival.",
  "origin": "A Song dynasty phrase.",
  "riddles": [
    {"text": "动物", "hint": "animals"},
    {"text": "动词", "hint": "to arrive"},
    {"text": "变成", "hint": "to become"},
    {"text": "成就", "hint": "achievement"}
  ],
  "grid": ["龙","来","成","果","马","为","去","绩","虎","到","变","行","牛","做","功","效"],
  "slotMap": [0,1,2,3,0,2,1,3,0,1,2,1,0,2,3,3]
}`

// completionServer fakes a chat-completion endpoint returning content.
// It also captures the last user prompt for assertions.
func completionServer(t *testing.T, content string) (*httptest.Server, *string) {
	t.Helper()
	var lastPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, m := range req.Messages {
			if m.Role == "user" {
				lastPrompt = m.Content
			}
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	return srv, &lastPrompt
}

func newTestGen(t *testing.T, baseURL string) *OpenAIGenerator {
	t.Helper()
	g, err := NewOpenAI("test-key", "test-model", baseURL+"/v1")
	require.NoError(t, err)
	return g
}

func TestGenerateParsesAndValidates(t *testing.T) {
	srv, prompt := completionServer(t, "\n"+fixtureJSON+"\n")
	defer srv.Close()

	g := newTestGen(t, srv.URL)
	p, err := g.Generate(context.Background(), "2026-02-26", []string{"一石二鸟"})
	require.NoError(t, err)

	assert.Equal(t, "2026-02-26", p.Date)
	assert.Equal(t, []string{"马", "到", "成", "功"}, p.Answer)
	require.NoError(t, p.Validate())

	assert.Contains(t, *prompt, "2026-02-26")
	assert.Contains(t, *prompt, "一石二鸟", "used answers must reach the model")
}

func TestGenerateRejectsMalformedJSON(t *testing.T) {
	srv, _ := completionServer(t, "Sure! Here's your puzzle: {not json")
	defer srv.Close()

	g := newTestGen(t, srv.URL)
	_, err := g.Generate(context.Background(), "2026-02-26", nil)
	require.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr, "malformed output is a generation failure, never repaired")
}

func TestGenerateRejectsInvalidPuzzle(t *testing.T) {
	// Parseable but structurally wrong: board too short.
	broken := strings.Replace(fixtureJSON,
		`"grid": ["龙","来","成","果","马","为","去","绩","虎","到","变","行","牛","做","功","效"]`,
		`"grid": ["龙","来","成"]`, 1)
	srv, _ := completionServer(t, broken)
	defer srv.Close()

	g := newTestGen(t, srv.URL)
	_, err := g.Generate(context.Background(), "2026-02-26", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateRejectsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGen(t, srv.URL)
	_, err := g.Generate(context.Background(), "2026-02-26", nil)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestNewOpenAIRequiresConfig(t *testing.T) {
	_, err := NewOpenAI("", "model", "")
	assert.Error(t, err)
	_, err = NewOpenAI("key", "", "")
	assert.Error(t, err)
}

func TestUserPromptOmitsEmptyExcludeList(t *testing.T) {
	p := userPrompt("2026-02-26", nil)
	assert.NotContains(t, p, "already been used")

	p = userPrompt("2026-02-26", []string{"马到成功", "一石二鸟"})
	assert.Contains(t, p, "马到成功、一石二鸟")
}
