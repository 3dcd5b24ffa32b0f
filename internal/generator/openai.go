// internal/generator/openai.go
//
// Chat-completion implementation of the Generator interface.
// Works against the OpenAI API or any OpenAI-compatible gateway via a
// configurable base URL. The model is asked for bare JSON; the response
// is trimmed, parsed, and validated, and every failure mode comes back
// as a *GenerationError.

package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/riddleyu/go-server/internal/puzzle"
)

const systemPrompt = `You are a Chinese language educator specializing in 成语 (chéngyǔ — four-character idioms).
Your job is to generate a daily puzzle for a game called RiddleYu.

You will output ONLY valid JSON, no markdown, no explanation, no preamble.`

const userPromptBody = `Rules:
1. Choose a 成语 that is interesting, learnable, and not too obscure. Suitable for beginners to intermediate learners.
2. For each of the 4 characters, choose exactly 3 imposter characters. Imposters must:
   - Belong to the same semantic category as the real character (e.g. if real char is 马 an animal, imposters are also animals)
   - Be common, recognizable Chinese characters
   - NOT appear elsewhere in the 成语
3. Write a riddle in Chinese for each character. The riddle must:
   - Describe the semantic category that both the real char AND its imposters belong to
   - Be solvable by a beginner with a dictionary
   - Be poetic and interesting, not just "我是一种动物"
   - NOT directly reveal the character
4. Write an English hint for each riddle (for the hint button)
5. The grid array must contain all 16 characters (4 real + 12 imposters) shuffled randomly
6. slotMap must map each grid position to its slot (0=first char, 1=second, 2=third, 3=fourth)

Output this exact JSON shape:
{
  "date": "%s",
  "chengyu": ["字","字","字","字"],
  "pinyin": "xxx xxx xxx xxx",
  "meaning": "English meaning of the idiom",
  "origin": "One sentence about the origin or historical context",
  "riddles": [
    { "text": "Chinese riddle for char 1", "hint": "English hint" },
    { "text": "Chinese riddle for char 2", "hint": "English hint" },
    { "text": "Chinese riddle for char 3", "hint": "English hint" },
    { "text": "Chinese riddle for char 4", "hint": "English hint" }
  ],
  "grid": ["字",...16 chars shuffled...],
  "slotMap": [0,...16 slot indices matching grid order...]
}`

const maxCompletionTokens = 2000

// OpenAIGenerator calls a chat-completion endpoint to produce puzzles.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a generator. baseURL may be empty for api.openai.com.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("generator: missing API key")
	}
	if model == "" {
		return nil, errors.New("generator: missing model name")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	log.Info().Str("model", model).Msg("initializing puzzle generator")
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate asks the model for a puzzle, excluding previously used answers.
func (g *OpenAIGenerator) Generate(ctx context.Context, date string, exclude []string) (*puzzle.Puzzle, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxCompletionTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(date, exclude)},
		},
	})
	if err != nil {
		return nil, &GenerationError{Date: date, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &GenerationError{Date: date, Err: errors.New("no choices in response")}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	var p puzzle.Puzzle
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, &GenerationError{Date: date, Err: fmt.Errorf("parse response: %w", err)}
	}
	p.Date = date
	if err := p.Validate(); err != nil {
		return nil, &GenerationError{Date: date, Err: err}
	}
	return &p, nil
}

// userPrompt assembles the request, listing used answers to avoid.
func userPrompt(date string, exclude []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a RiddleYu puzzle for %s.\n", date)
	if len(exclude) > 0 {
		fmt.Fprintf(&b, "\nDo NOT use any of these 成语, they have already been used: %s\n", strings.Join(exclude, "、"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, userPromptBody, date)
	return b.String()
}
