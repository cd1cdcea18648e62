package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gxbriex/clips/internal/domain/vertical"
	"github.com/gxbriex/clips/internal/pipeline"
)

// Settings is everything the binary can be told from a settings file or the
// environment. Environment variables win over the file.
type Settings struct {
	TempRoot string `yaml:"temp_root"`
	LogLevel string `yaml:"log_level"`

	Tools struct {
		YtDlp   string `yaml:"yt_dlp"`
		FFmpeg  string `yaml:"ffmpeg"`
		FFprobe string `yaml:"ffprobe"`
	} `yaml:"tools"`

	Whisper struct {
		Backend  string `yaml:"backend"`
		Bin      string `yaml:"bin"`
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
		APIModel string `yaml:"api_model"`
	} `yaml:"whisper"`

	Groq struct {
		APIKey       string   `yaml:"api_key"`
		Model        string   `yaml:"model"`
		BaseURL      string   `yaml:"base_url"`
		AllowedHosts []string `yaml:"allowed_hosts"`
	} `yaml:"groq"`

	Render struct {
		Rounding      string `yaml:"rounding"`
		BurnSubtitles bool   `yaml:"burn_subtitles"`
	} `yaml:"render"`

	Telegram struct {
		Token       string        `yaml:"token"`
		AdminUserID int64         `yaml:"admin_user_id"`
		UploadPause time.Duration `yaml:"upload_pause"`
	} `yaml:"telegram"`
}

func Defaults() Settings {
	var s Settings
	s.TempRoot = "/tmp/clips"
	s.LogLevel = "info"
	s.Tools.YtDlp = "yt-dlp"
	s.Tools.FFmpeg = "ffmpeg"
	s.Tools.FFprobe = "ffprobe"
	s.Whisper.Backend = pipeline.TranscriberWhisperCpp
	s.Whisper.Bin = "whisper-cli"
	s.Whisper.Model = "models/ggml-base.bin"
	s.Whisper.Language = "pt"
	s.Whisper.APIModel = "whisper-large-v3"
	s.Groq.Model = "llama-3.3-70b-versatile"
	s.Groq.BaseURL = "https://api.groq.com/openai/v1"
	s.Render.Rounding = "down"
	s.Telegram.UploadPause = 2 * time.Second
	return s
}

// Load reads defaults, then the optional YAML file at path, then the process
// environment.
func Load(path string) (Settings, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Settings, error) {
	s := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(b, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := s.applyEnv(lookup); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("CLIPS_TEMP_ROOT", &s.TempRoot)
	str("LOG_LEVEL", &s.LogLevel)
	str("YTDLP_PATH", &s.Tools.YtDlp)
	str("FFMPEG_PATH", &s.Tools.FFmpeg)
	str("FFPROBE_PATH", &s.Tools.FFprobe)
	str("TRANSCRIBER", &s.Whisper.Backend)
	str("WHISPER_BIN", &s.Whisper.Bin)
	str("WHISPER_MODEL", &s.Whisper.Model)
	str("WHISPER_LANGUAGE", &s.Whisper.Language)
	str("WHISPER_API_MODEL", &s.Whisper.APIModel)
	str("GROQ_API_KEY", &s.Groq.APIKey)
	str("GROQ_MODEL", &s.Groq.Model)
	str("GROQ_BASE_URL", &s.Groq.BaseURL)
	str("CROP_ROUNDING", &s.Render.Rounding)
	str("TELEGRAM_TOKEN", &s.Telegram.Token)

	if v, ok := lookup("GROQ_ALLOWED_HOSTS"); ok && strings.TrimSpace(v) != "" {
		s.Groq.AllowedHosts = splitList(v)
	}
	if v, ok := lookup("BURN_SUBTITLES"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("BURN_SUBTITLES: %w", err)
		}
		s.Render.BurnSubtitles = b
	}
	if v, ok := lookup("ADMIN_USER_ID"); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("ADMIN_USER_ID: %w", err)
		}
		s.Telegram.AdminUserID = id
	}
	if v, ok := lookup("UPLOAD_PAUSE"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("UPLOAD_PAUSE: %w", err)
		}
		s.Telegram.UploadPause = d
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values that only exist at the settings layer. Paths,
// the transcriber and the Groq endpoint are checked by pipeline.Config.
func (s Settings) Validate() error {
	if _, err := vertical.ParseRounding(s.Render.Rounding); err != nil {
		return err
	}
	if s.Telegram.UploadPause < 0 {
		return errors.New("upload pause must be >= 0")
	}
	return nil
}

// TokenPrefix is the only part of the bot token that may be logged.
func TokenPrefix(token string) string {
	if len(token) <= 10 {
		return strings.Repeat("*", len(token))
	}
	return token[:10] + "..."
}
