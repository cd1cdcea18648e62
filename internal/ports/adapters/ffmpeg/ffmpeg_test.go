package ffmpeg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxbriex/clips/internal/ports"
	"github.com/gxbriex/clips/internal/types"
)

func testJob() ports.RenderJob {
	return ports.RenderJob{
		Input:  "/work/video.mp4",
		Output: "/work/output/clip_01_x.mp4",
		Window: types.Window{Start: 9.5, End: 50.5},
		Crop:   types.Crop{Width: 606, Height: 1080, X: 657},
		Fade:   0.3,
	}
}

func TestRenderArgs_WithFade(t *testing.T) {
	args := renderArgs(testJob(), true)
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-ss 9.500")
	assert.Contains(t, joined, "-to 50.500")
	assert.Contains(t, joined, "-i /work/video.mp4")
	assert.Contains(t, joined, "crop=")
	assert.Contains(t, joined, "w=606")
	assert.Contains(t, joined, "x=657")
	assert.Contains(t, joined, "fade=")
	assert.Contains(t, joined, "40.700")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-c:a aac")
	assert.Contains(t, joined, "-b:v 4000k")
	assert.Contains(t, joined, "-preset ultrafast")
	assert.Contains(t, joined, "-r 30")
	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "/work/output/clip_01_x.mp4", args[len(args)-2])
	assert.Equal(t, "-y", args[len(args)-1])
}

func TestRenderArgs_AudioIsOptional(t *testing.T) {
	args := renderArgs(testJob(), false)
	assert.Contains(t, args, "0:a?")
	assert.NotContains(t, args, "0:a")
}

func TestRenderArgs_WithoutFadeOrSubtitles(t *testing.T) {
	joined := strings.Join(renderArgs(testJob(), false), " ")
	assert.NotContains(t, joined, "fade")
	assert.NotContains(t, joined, "subtitles")
}

func TestRenderArgs_BurnsSubtitles(t *testing.T) {
	job := testJob()
	job.BurnASS = "/work/output/clip_01.ass"
	joined := strings.Join(renderArgs(job, false), " ")
	assert.Contains(t, joined, "subtitles=filename=/work/output/clip_01.ass")
}

func TestRenderArgs_EscapesSubtitlePath(t *testing.T) {
	job := testJob()
	job.BurnASS = "/tmp/a:b,c'd/clip_01.ass"
	joined := strings.Join(renderArgs(job, false), " ")
	assert.Contains(t, joined, `subtitles=filename=/tmp/a\\:b\,c\\\'d/clip_01.ass`)
}

func TestRenderClip_RejectsEmptyWindow(t *testing.T) {
	job := testJob()
	job.Window = types.Window{Start: 40, End: 40}
	err := New("", "").RenderClip(context.Background(), job)
	require.Error(t, err)
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{"programs":[],"streams":[{"width":1920,"height":1080}],"format":{"duration":"1000.123000"}}`)
	info, err := parseProbe(out)
	require.NoError(t, err)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 1000.123, info.Duration, 1e-9)

	_, err = parseProbe([]byte(`{"streams":[],"format":{"duration":"1"}}`))
	assert.Error(t, err)

	_, err = parseProbe([]byte(`{"streams":[{"width":1,"height":1}],"format":{"duration":"N/A"}}`))
	assert.Error(t, err)
}
