package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gxbriex/clips/internal/types"
)

const (
	DefaultModel = "llama-3.3-70b-versatile"

	// maxTranscriptChars bounds the transcript sent to the model.
	maxTranscriptChars = 15000
	temperature        = 0.8
	maxTokens          = 2000
)

var ErrDisabled = errors.New("groq: no API key configured, excerpt selection disabled")

// ChatCompleter is the part of *openai.Client the selector needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Adapter struct {
	client ChatCompleter
	key    string
	model  string
}

// NewClient builds a go-openai client pointed at an OpenAI-compatible base URL.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = NormalizeBaseURL(baseURL)
	return openai.NewClientWithConfig(cfg)
}

// New returns a selector. An empty apiKey disables it: Select then reports
// ErrDisabled without contacting the service.
func New(client ChatCompleter, apiKey, model string) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	return &Adapter{client: client, key: apiKey, model: model}
}

func (a *Adapter) Select(ctx context.Context, tr types.Transcript) ([]types.Excerpt, error) {
	if a.key == "" || a.client == nil {
		return nil, ErrDisabled
	}
	if len(tr.Segments) == 0 {
		return nil, nil
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(FormatTranscript(tr, maxTranscriptChars))},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("groq request (model=%s): %s", a.model, redactSecrets(err.Error(), a.key))
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("groq: response has no choices")
	}
	return ParseExcerpts(resp.Choices[0].Message.Content)
}

const systemPrompt = "Identifique momentos virais para TikTok. Retorne JSON."

func buildPrompt(transcript string) string {
	return fmt.Sprintf(`Analise e retorne %d momentos virais.

TRANSCRIÇÃO:
%s

JSON:
[
  {"titulo": "TÍTULO CLICKBAIT", "start": 10.0, "end": 50.0},
  ... mais %d
]

Regras: 40-60s, português BR, REVELA/CONFESSA/CHOCANTE`, types.MaxExcerpts, transcript, types.MaxExcerpts-1)
}

// FormatTranscript renders "[12.3s] text" lines, cut to at most limit runes.
func FormatTranscript(tr types.Transcript, limit int) string {
	var b strings.Builder
	for _, s := range tr.Segments {
		fmt.Fprintf(&b, "[%.1fs] %s\n", s.Start, strings.TrimSpace(s.Text))
	}
	return truncate(b.String(), limit)
}

var (
	jsonArrayRE = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)
	fenceRE     = regexp.MustCompile("```(?:json|JSON)?")
)

// ParseExcerpts pulls the first JSON array of objects out of free text and
// keeps at most MaxExcerpts entries in their original order.
func ParseExcerpts(content string) ([]types.Excerpt, error) {
	raw, err := extractJSONArray(content)
	if err != nil {
		return nil, err
	}
	var items []struct {
		Titulo string  `json:"titulo"`
		Title  string  `json:"title"`
		Start  float64 `json:"start"`
		End    float64 `json:"end"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("groq: decode excerpts: %w", err)
	}
	out := make([]types.Excerpt, 0, min(len(items), types.MaxExcerpts))
	for _, it := range items {
		if len(out) == types.MaxExcerpts {
			break
		}
		title := strings.TrimSpace(it.Titulo)
		if title == "" {
			title = strings.TrimSpace(it.Title)
		}
		out = append(out, types.Excerpt{Title: title, Start: it.Start, End: it.End})
	}
	return out, nil
}

func extractJSONArray(s string) (string, error) {
	t := strings.TrimSpace(fenceRE.ReplaceAllString(s, ""))
	if t == "" {
		return "", errors.New("groq: empty content")
	}
	m := jsonArrayRE.FindString(t)
	if m == "" {
		return "", fmt.Errorf("groq: no JSON array in: %q", truncate(t, 200))
	}
	return m, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
	groqKeyRE     = regexp.MustCompile(`\bgsk_[A-Za-z0-9]+\b`)
)

func redactSecrets(s, apiKey string) string {
	if apiKey != "" {
		s = strings.ReplaceAll(s, apiKey, "[REDACTED]")
	}
	s = bearerTokenRE.ReplaceAllString(s, "Bearer [REDACTED]")
	s = apiKeyFieldRE.ReplaceAllString(s, "${1}[REDACTED]")
	return groqKeyRE.ReplaceAllString(s, "[REDACTED]")
}
