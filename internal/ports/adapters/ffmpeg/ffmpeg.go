package ffmpeg

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/gxbriex/clips/internal/ports"
	"github.com/gxbriex/clips/internal/types"
)

// Encoding settings shared by every rendered clip.
const (
	videoCodec   = "libx264"
	audioCodec   = "aac"
	videoBitrate = "4000k"
	frameRate    = 30
	preset       = "ultrafast"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg extract audio\n%s", string(b))
	}
	return nil
}

func (a *Adapter) Probe(ctx context.Context, inMP4 string) (types.VideoInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "json",
		inMP4,
	)
	b, err := cmd.Output()
	if err != nil {
		return types.VideoInfo{}, errors.Wrap(err, "ffprobe")
	}
	return parseProbe(b)
}

func parseProbe(b []byte) (types.VideoInfo, error) {
	var raw struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.VideoInfo{}, errors.Wrap(err, "parse ffprobe output")
	}
	if len(raw.Streams) == 0 {
		return types.VideoInfo{}, errors.New("ffprobe: no video stream")
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64)
	if err != nil {
		return types.VideoInfo{}, errors.Wrapf(err, "parse duration %q", raw.Format.Duration)
	}
	return types.VideoInfo{
		Width:    raw.Streams[0].Width,
		Height:   raw.Streams[0].Height,
		Duration: sec,
	}, nil
}

// RenderClip encodes one vertical clip. Fades are cosmetic: when the window is
// too short for them or the faded render fails, the clip is rendered plain.
func (a *Adapter) RenderClip(ctx context.Context, job ports.RenderJob) error {
	if job.Window.Duration() <= 0 {
		return errors.Errorf("empty render window %.3f-%.3f", job.Window.Start, job.Window.End)
	}
	fade := job.Fade > 0 && job.Window.Duration() > 2*job.Fade
	if fade {
		err := a.run(ctx, renderArgs(job, true))
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		_ = os.Remove(job.Output)
	}
	return a.run(ctx, renderArgs(job, false))
}

func (a *Adapter) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg render clip\n%s", tail(string(b), 2000))
	}
	return nil
}

func renderArgs(job ports.RenderJob, withFade bool) []string {
	in := ffmpeg.Input(job.Input, ffmpeg.KwArgs{
		"ss": fmtSeconds(job.Window.Start),
		"to": fmtSeconds(job.Window.End),
	})

	video := in.Video().Filter("crop", nil, ffmpeg.KwArgs{
		"w": job.Crop.Width,
		"h": job.Crop.Height,
		"x": job.Crop.X,
		"y": job.Crop.Y,
	})
	if job.BurnASS != "" {
		// as a kwarg the path gets option and filtergraph escaping
		video = video.Filter("subtitles", nil, ffmpeg.KwArgs{"filename": job.BurnASS})
	}
	if withFade {
		d := fmtSeconds(job.Fade)
		video = video.
			Filter("fade", nil, ffmpeg.KwArgs{"t": "in", "st": "0", "d": d}).
			Filter("fade", nil, ffmpeg.KwArgs{"t": "out", "st": fmtSeconds(job.Window.Duration() - job.Fade), "d": d})
	}

	// "a?" keeps silent sources renderable
	out := ffmpeg.Output([]*ffmpeg.Stream{video, in.Get("a?")}, job.Output, ffmpeg.KwArgs{
		"c:v":      videoCodec,
		"c:a":      audioCodec,
		"b:v":      videoBitrate,
		"r":        frameRate,
		"preset":   preset,
		"pix_fmt":  "yuv420p",
		"movflags": "+faststart",
	})
	return out.OverWriteOutput().GetArgs()
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
