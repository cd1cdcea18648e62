package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gxbriex/clips/internal/types"
)

// AudioExtractor turns the source video into the 16 kHz mono WAV whisper.cpp reads.
type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
}

type Adapter struct {
	bin      string
	model    string
	language string
	audio    AudioExtractor
}

func New(binPath, modelPath, language string, audio AudioExtractor) *Adapter {
	if language == "" {
		language = "pt"
	}
	return &Adapter{bin: binPath, model: modelPath, language: language, audio: audio}
}

func (a *Adapter) Transcribe(ctx context.Context, videoPath, workDir string) (types.Transcript, error) {
	wav := filepath.Join(workDir, "audio.wav")
	if err := a.audio.ExtractAudioMono16k(ctx, videoPath, wav); err != nil {
		return types.Transcript{}, err
	}
	defer os.Remove(wav)

	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wav,
		"-l", a.language,
		"-oj",
		"-of", outPrefix,
		"-np",
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	tr, err := parseOutput(jb)
	if err != nil {
		return types.Transcript{}, err
	}
	if tr.Language == "" {
		tr.Language = a.language
	}
	return tr, nil
}

// parseOutput reads whisper.cpp's -oj document. Offsets are milliseconds.
func parseOutput(b []byte) (types.Transcript, error) {
	var raw struct {
		Result struct {
			Language string `json:"language"`
		} `json:"result"`
		Transcription []struct {
			Offsets struct {
				From int64 `json:"from"`
				To   int64 `json:"to"`
			} `json:"offsets"`
			Text string `json:"text"`
		} `json:"transcription"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}
	tr := types.Transcript{Language: raw.Result.Language, Segments: make([]types.Segment, 0, len(raw.Transcription))}
	for _, s := range raw.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return tr, nil
}
