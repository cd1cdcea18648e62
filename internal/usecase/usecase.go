package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gxbriex/clips/internal/domain/subtitles"
	"github.com/gxbriex/clips/internal/domain/vertical"
	"github.com/gxbriex/clips/internal/ports"
	"github.com/gxbriex/clips/internal/types"
)

type Deps struct {
	Downloader  ports.Downloader
	Transcriber ports.Transcriber
	Selector    ports.Selector
	Video       ports.VideoTool
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	URL string
	// WorkDir holds the downloaded source and intermediate files.
	WorkDir string
	// OutDir receives the rendered clips.
	OutDir        string
	Rounding      vertical.Rounding
	BurnSubtitles bool
	Progress      ports.Progress
	Logf          func(format string, args ...any)
}

// Result carries the outcome plus what the caller needs to build a manifest.
type Result struct {
	Outcome types.Outcome
	Source  string
}

// Run executes Download -> Transcribe -> Select -> Render. It never returns an
// error or panics: every failure is folded into the outcome.
func (u Usecase) Run(ctx context.Context, in Input) (res Result) {
	logf := in.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	defer func() {
		if r := recover(); r != nil {
			logf("pipeline panic: %v", r)
			res = Result{Outcome: types.Failed(types.UnexpectedFailure)}
		}
	}()
	notify := func(status string) {
		if in.Progress == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logf("progress update panicked: %v", r)
			}
		}()
		if err := in.Progress(ctx, status); err != nil {
			logf("progress update dropped: %v", err)
		}
	}

	notify("🔄 *Etapa 1/4: Download*\n\n⏬ Baixando vídeo...")
	src, err := u.d.Downloader.Download(ctx, in.URL, in.WorkDir)
	if err != nil {
		logf("download failed: %v", err)
		return Result{Outcome: types.Failed(types.DownloadFailure)}
	}
	logf("video: %s", src)

	notify("🔄 *Etapa 2/4: Transcrição*\n\n🎤 Transcrevendo (5-10 min)...")
	tr, err := u.d.Transcriber.Transcribe(ctx, src, in.WorkDir)
	if err != nil {
		logf("transcription failed: %v", err)
		return Result{Outcome: types.Failed(types.TranscriptionFailure), Source: src}
	}
	logf("%d segments", len(tr.Segments))

	notify("🔄 *Etapa 3/4: Análise IA*\n\n🤖 Identificando momentos virais...")
	excerpts, err := u.d.Selector.Select(ctx, tr)
	if err != nil {
		logf("selection failed: %v", err)
	}
	if len(excerpts) > types.MaxExcerpts {
		excerpts = excerpts[:types.MaxExcerpts]
	}
	if len(excerpts) == 0 {
		return Result{Outcome: types.Failed(types.SelectionFailure), Source: src}
	}
	logf("%d excerpts", len(excerpts))

	notify(fmt.Sprintf("🔄 *Etapa 4/4: Gerando Clips*\n\n🎬 Criando %d clips...", len(excerpts)))
	clips, err := u.render(ctx, in, src, tr, excerpts, notify, logf)
	if err != nil {
		logf("render failed: %v", err)
		return Result{Outcome: types.Failed(types.RenderFailure), Source: src}
	}
	logf("%d clips rendered", len(clips))

	if err := removeIfExists(src); err != nil {
		logf("cleanup %s: %v", src, err)
	}
	return Result{Outcome: types.Succeeded(clips), Source: src}
}

func (u Usecase) render(
	ctx context.Context,
	in Input,
	src string,
	tr types.Transcript,
	excerpts []types.Excerpt,
	notify func(string),
	logf func(string, ...any),
) ([]types.Clip, error) {
	info, err := u.d.Video.Probe(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("probe source: %w", err)
	}
	crop, err := vertical.CenterCrop(info.Width, info.Height, in.Rounding)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(in.OutDir, 0o755); err != nil {
		return nil, err
	}

	var clips []types.Clip
	for i, e := range excerpts {
		n := i + 1
		notify(fmt.Sprintf("🔄 *Etapa 4/4*\n\n🎬 Clip %d/%d", n, len(excerpts)))
		if ctx.Err() != nil {
			return clips, ctx.Err()
		}
		clip, err := u.renderOne(ctx, in, src, tr, info, crop, n, e)
		if err != nil {
			logf("clip %d skipped: %v", n, err)
			continue
		}
		logf("clip %d: %s", n, clip.Path)
		clips = append(clips, clip)
	}
	if len(clips) == 0 {
		return nil, errors.New("no clip could be rendered")
	}
	return clips, nil
}

func (u Usecase) renderOne(
	ctx context.Context,
	in Input,
	src string,
	tr types.Transcript,
	info types.VideoInfo,
	crop types.Crop,
	n int,
	e types.Excerpt,
) (types.Clip, error) {
	if err := vertical.ValidateExcerpt(e, info.Duration); err != nil {
		return types.Clip{}, err
	}
	win := vertical.PadWindow(e.Start, e.End, info.Duration)
	out := filepath.Join(in.OutDir, vertical.ClipFileName(n, e.Title))

	job := ports.RenderJob{
		Input:  src,
		Output: out,
		Window: win,
		Crop:   crop,
		Fade:   vertical.FadeDuration,
	}
	if in.BurnSubtitles {
		ass := filepath.Join(in.WorkDir, fmt.Sprintf("clip_%02d.ass", n))
		if err := os.WriteFile(ass, []byte(subtitles.RenderASS(tr, win, crop)), 0o644); err != nil {
			return types.Clip{}, err
		}
		defer os.Remove(ass)
		job.BurnASS = ass
	}

	if err := u.d.Video.RenderClip(ctx, job); err != nil {
		return types.Clip{}, err
	}
	if _, err := os.Stat(out); err != nil {
		return types.Clip{}, fmt.Errorf("rendered file missing: %w", err)
	}
	return types.Clip{Path: out, Title: e.Title, Start: win.Start, End: win.End}, nil
}

// removeIfExists deletes path; a file that is already gone is not an error.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
