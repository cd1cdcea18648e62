package groq

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxbriex/clips/internal/types"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"raw", `[{"titulo":"a","start":1,"end":2}]`, `[{"titulo":"a","start":1,"end":2}]`, false},
		{"fenced", "```json\n[{\"titulo\":\"a\",\"start\":1,\"end\":2}]\n```", `[{"titulo":"a","start":1,"end":2}]`, false},
		{"preface", "Claro! Aqui estão:\n[ {\"titulo\":\"a\"} ]\nEspero ter ajudado.", `[ {"titulo":"a"} ]`, false},
		{"first of two", `[{"a":1}] e depois [{"b":2}]`, `[{"a":1}]`, false},
		{"empty", "   ", "", true},
		{"no array", `{"titulo":"a"}`, "", true},
		{"array of numbers", `[1, 2, 3]`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONArray(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExcerpts_ToleratesNoise(t *testing.T) {
	content := "Aqui estão os momentos:\n```json\n[\n" +
		`  {"titulo": "ELE REVELA TUDO", "start": 10.0, "end": 50.0},` + "\n" +
		`  {"titulo": " CHOCANTE ", "start": 120.5, "end": 170}` + "\n]\n```\nBoa sorte!"
	got, err := ParseExcerpts(content)
	require.NoError(t, err)
	assert.Equal(t, []types.Excerpt{
		{Title: "ELE REVELA TUDO", Start: 10, End: 50},
		{Title: "CHOCANTE", Start: 120.5, End: 170},
	}, got)
}

func TestParseExcerpts_Malformed(t *testing.T) {
	for _, in := range []string{
		`[{"titulo": "a", "start": "dez", "end": 50}]`,
		`[{"titulo": "a", "start": 10, "end": 50},]`,
		"nenhum momento encontrado",
	} {
		got, err := ParseExcerpts(in)
		assert.Error(t, err, in)
		assert.Empty(t, got, in)
	}
}

func TestParseExcerpts_KeepsFirstSeven(t *testing.T) {
	var parts []string
	for i := 0; i < 10; i++ {
		parts = append(parts, fmt.Sprintf(`{"titulo":"m%d","start":%d,"end":%d}`, i, i*60, i*60+45))
	}
	got, err := ParseExcerpts("[" + strings.Join(parts, ",") + "]")
	require.NoError(t, err)
	require.Len(t, got, types.MaxExcerpts)
	for i, e := range got {
		assert.Equal(t, fmt.Sprintf("m%d", i), e.Title)
	}
}

func TestParseExcerpts_FallsBackToEnglishTitleKey(t *testing.T) {
	got, err := ParseExcerpts(`[{"title":"x","start":1,"end":41}]`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Title)
}

func TestFormatTranscript(t *testing.T) {
	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, Text: " Olá "},
		{Start: 12.345, Text: "tudo bem?"},
	}}
	assert.Equal(t, "[0.0s] Olá\n[12.3s] tudo bem?\n", FormatTranscript(tr, 1000))
	assert.Equal(t, "[0.0s] Olá", FormatTranscript(tr, 10))
}

type fakeChat struct {
	content string
	err     error
	calls   int
	req     openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
	}}, nil
}

func sampleTranscript() types.Transcript {
	return types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 5, Text: "Olá pessoal"},
		{Start: 5, End: 30, Text: "hoje eu vou revelar um segredo"},
		{Start: 30, End: 70, Text: "ninguém esperava por isso"},
	}}
}

func TestSelect_EmptyTranscriptSkipsCall(t *testing.T) {
	chat := &fakeChat{content: `[{"titulo":"a","start":1,"end":2}]`}
	got, err := New(chat, "gsk_test", "").Select(context.Background(), types.Transcript{})
	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, chat.calls)
}

func TestSelect_DisabledWithoutKey(t *testing.T) {
	chat := &fakeChat{}
	got, err := New(chat, "", "").Select(context.Background(), sampleTranscript())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, got)
	assert.Zero(t, chat.calls)
}

func TestSelect_SendsPromptAndParses(t *testing.T) {
	chat := &fakeChat{content: "```json\n[{\"titulo\":\"SEGREDO\",\"start\":5,\"end\":50}]\n```"}
	got, err := New(chat, "gsk_test", "").Select(context.Background(), sampleTranscript())
	require.NoError(t, err)
	assert.Equal(t, []types.Excerpt{{Title: "SEGREDO", Start: 5, End: 50}}, got)

	assert.Equal(t, DefaultModel, chat.req.Model)
	assert.Equal(t, maxTokens, chat.req.MaxTokens)
	require.Len(t, chat.req.Messages, 2)
	assert.Contains(t, chat.req.Messages[1].Content, "[5.0s] hoje eu vou revelar um segredo")
	assert.Contains(t, chat.req.Messages[1].Content, "40-60s")
}

func TestSelect_TransportErrorIsRedacted(t *testing.T) {
	chat := &fakeChat{err: errors.New("401: invalid api key gsk_secret123 Authorization: Bearer gsk_secret123")}
	got, err := New(chat, "gsk_secret123", "").Select(context.Background(), sampleTranscript())
	require.Error(t, err)
	assert.Empty(t, got)
	assert.NotContains(t, err.Error(), "gsk_secret123")
}

func TestSelect_ThroughCompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"finish_reason":"stop",
			"message":{"role":"assistant","content":"Aqui: [{\"titulo\":\"UAU\",\"start\":1.5,\"end\":45}]"}}]}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("gsk_test")
	cfg.BaseURL = srv.URL
	got, err := New(openai.NewClientWithConfig(cfg), "gsk_test", "").Select(context.Background(), sampleTranscript())
	require.NoError(t, err)
	assert.Equal(t, []types.Excerpt{{Title: "UAU", Start: 1.5, End: 45}}, got)
}

func TestRedactSecrets(t *testing.T) {
	got := redactSecrets(`status 401; Authorization: Bearer abc.def; api_key=gsk_abc123`, "")
	assert.NotContains(t, got, "abc.def")
	assert.NotContains(t, got, "gsk_abc123")
	assert.Contains(t, got, "api_key=[REDACTED]")
}
