package whisperapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudio struct{}

func (fakeAudio) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	return os.WriteFile(outWav, []byte("RIFF"), 0o644)
}

func TestTranscribe_AgainstCompatibleServer(t *testing.T) {
	var gotModel, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		gotModel = r.FormValue("model")
		gotLang = r.FormValue("language")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"task": "transcribe", "language": "portuguese", "duration": 9.0,
			"text": "Olá pessoal. Hoje eu revelo tudo.",
			"segments": [
				{"id": 0, "start": 0.0, "end": 2.5, "text": " Olá pessoal."},
				{"id": 1, "start": 2.5, "end": 9.0, "text": " Hoje eu revelo tudo."}
			],
			"words": [
				{"word": "Olá", "start": 0.1, "end": 0.6},
				{"word": "pessoal.", "start": 0.7, "end": 1.4},
				{"word": "Hoje", "start": 2.6, "end": 3.0},
				{"word": "tudo.", "start": 8.0, "end": 8.6}
			]
		}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	a := New(openai.NewClientWithConfig(cfg), "", "pt", fakeAudio{})

	tr, err := a.Transcribe(context.Background(), "video.mp4", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, gotModel)
	assert.Equal(t, "pt", gotLang)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "Olá pessoal.", tr.Segments[0].Text)
	assert.Len(t, tr.Segments[0].Words, 2)
	assert.Len(t, tr.Segments[1].Words, 2)
	assert.Equal(t, "tudo.", tr.Segments[1].Words[1].Word)
}

type failingClient struct{}

func (failingClient) CreateTranscription(context.Context, openai.AudioRequest) (openai.AudioResponse, error) {
	return openai.AudioResponse{}, errors.New("413 request too large")
}

func TestTranscribe_ClientError(t *testing.T) {
	_, err := New(failingClient{}, "", "", fakeAudio{}).Transcribe(context.Background(), "video.mp4", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "413")
}
