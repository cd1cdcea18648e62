//go:build integration

package itest

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type probeResult struct {
	Width    int
	Height   int
	Duration float64
	Audio    bool
}

func probe(mp4Path string) (probeResult, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height:format=duration",
		"-of", "json",
		mp4Path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return probeResult{}, fmt.Errorf("ffprobe: %w\n%s", err, string(b))
	}
	var raw struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return probeResult{}, fmt.Errorf("parse ffprobe json: %w", err)
	}
	var res probeResult
	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			res.Width, res.Height = s.Width, s.Height
		case "audio":
			res.Audio = true
		}
	}
	res.Duration, err = strconv.ParseFloat(raw.Format.Duration, 64)
	if err != nil {
		return probeResult{}, fmt.Errorf("parse duration %q: %w", raw.Format.Duration, err)
	}
	return res, nil
}
