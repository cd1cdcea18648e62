package ports

import (
	"context"

	"github.com/gxbriex/clips/internal/types"
)

type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, videoPath, workDir string) (types.Transcript, error)
}

type Selector interface {
	Select(ctx context.Context, tr types.Transcript) ([]types.Excerpt, error)
}

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	Probe(ctx context.Context, inMP4 string) (types.VideoInfo, error)
	RenderClip(ctx context.Context, job RenderJob) error
}

// RenderJob is one clip: a window of the source, cropped and encoded.
type RenderJob struct {
	Input   string
	Output  string
	Window  types.Window
	Crop    types.Crop
	Fade    float64
	BurnASS string
}

// Progress reports a human-readable status. Callers treat it as best effort.
type Progress func(ctx context.Context, status string) error
