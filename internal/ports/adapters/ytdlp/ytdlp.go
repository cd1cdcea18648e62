package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	formatSelector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	mergeFormat    = "mp4"
	// BaseName is the deterministic stem of the downloaded source.
	BaseName = "video"
)

type Adapter struct {
	bin string
}

func New(binPath string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath}
}

// Download fetches url into dir as video.mp4 and returns its path.
func (a *Adapter) Download(ctx context.Context, url, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	cmd := exec.CommandContext(ctx, a.bin, args(url, dir)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed: %w\n%s", err, string(b))
	}
	out := OutputPath(dir)
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("yt-dlp produced no %s: %w", filepath.Base(out), err)
	}
	return out, nil
}

func OutputPath(dir string) string {
	return filepath.Join(dir, BaseName+"."+mergeFormat)
}

func args(url, dir string) []string {
	return []string{
		"--format", formatSelector,
		"--merge-output-format", mergeFormat,
		"--output", filepath.Join(dir, BaseName+".%(ext)s"),
		"--no-playlist",
		"--no-progress",
		"--quiet",
		"--",
		url,
	}
}
