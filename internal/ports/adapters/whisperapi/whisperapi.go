package whisperapi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/gxbriex/clips/internal/types"
)

const DefaultModel = "whisper-large-v3"

// AudioClient is the part of *openai.Client this adapter needs.
type AudioClient interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
}

// Adapter transcribes through an OpenAI-compatible /audio/transcriptions
// endpoint (Groq, OpenAI, LocalAI...).
type Adapter struct {
	client   AudioClient
	model    string
	language string
	audio    AudioExtractor
}

func New(client AudioClient, model, language string, audio AudioExtractor) *Adapter {
	if model == "" {
		model = DefaultModel
	}
	if language == "" {
		language = "pt"
	}
	return &Adapter{client: client, model: model, language: language, audio: audio}
}

func (a *Adapter) Transcribe(ctx context.Context, videoPath, workDir string) (types.Transcript, error) {
	wav := filepath.Join(workDir, "audio.wav")
	if err := a.audio.ExtractAudioMono16k(ctx, videoPath, wav); err != nil {
		return types.Transcript{}, err
	}
	defer os.Remove(wav)

	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.model,
		FilePath: wav,
		Language: a.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcription api: %w", err)
	}
	tr := toTranscript(resp)
	if tr.Language == "" {
		tr.Language = a.language
	}
	return tr, nil
}

func toTranscript(resp openai.AudioResponse) types.Transcript {
	tr := types.Transcript{Language: resp.Language, Segments: make([]types.Segment, 0, len(resp.Segments))}
	wi := 0
	for _, s := range resp.Segments {
		seg := types.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		// words arrive in timeline order; hand each segment the ones it covers
		for wi < len(resp.Words) && resp.Words[wi].Start < s.End {
			w := resp.Words[wi]
			wi++
			if w.Start < s.Start {
				continue
			}
			seg.Words = append(seg.Words, types.Word{Start: w.Start, End: w.End, Word: strings.TrimSpace(w.Word)})
		}
		if seg.Text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, seg)
	}
	return tr
}
