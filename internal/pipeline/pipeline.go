package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gxbriex/clips/internal/domain/vertical"
	"github.com/gxbriex/clips/internal/ports"
	"github.com/gxbriex/clips/internal/ports/adapters/ffmpeg"
	"github.com/gxbriex/clips/internal/ports/adapters/groq"
	"github.com/gxbriex/clips/internal/ports/adapters/whisperapi"
	"github.com/gxbriex/clips/internal/ports/adapters/whispercpp"
	"github.com/gxbriex/clips/internal/ports/adapters/ytdlp"
	"github.com/gxbriex/clips/internal/types"
	"github.com/gxbriex/clips/internal/usecase"
)

const (
	TranscriberWhisperCpp = "whispercpp"
	TranscriberAPI        = "api"
)

type Config struct {
	// TempRoot holds one directory per user and, below it, one per request.
	TempRoot string

	YtDlpPath   string
	FFmpegPath  string
	FFprobePath string

	Transcriber     string
	WhisperBin      string
	WhisperModel    string
	WhisperLanguage string
	WhisperAPIModel string

	GroqAPIKey       string
	GroqModel        string
	GroqBaseURL      string
	GroqAllowedHosts []string

	Rounding      vertical.Rounding
	BurnSubtitles bool
	Logf          func(format string, args ...any)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TempRoot) == "" {
		return errors.New("temp root is empty")
	}
	switch c.Transcriber {
	case "", TranscriberWhisperCpp:
		if c.WhisperModel == "" {
			return fmt.Errorf("whisper model path is required")
		}
	case TranscriberAPI:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for the api transcriber")
		}
	default:
		return fmt.Errorf("unknown transcriber %q", c.Transcriber)
	}
	return groq.ValidateBaseURL(c.GroqBaseURL, c.GroqAllowedHosts)
}

// Request is one link submitted by one user.
type Request struct {
	URL      string
	UserID   int64
	Progress ports.Progress
}

type Pipeline struct {
	cfg  Config
	uc   usecase.Usecase
	now  func() time.Time
	logf func(format string, args ...any)
}

// New validates cfg and wires the adapters. The returned Pipeline is safe for
// concurrent use: every Run gets its own workspace.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	var asr ports.Transcriber
	if cfg.Transcriber == TranscriberAPI {
		asr = whisperapi.New(groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL), cfg.WhisperAPIModel, cfg.WhisperLanguage, v)
	} else {
		asr = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.WhisperLanguage, v)
	}
	var chat groq.ChatCompleter
	if cfg.GroqAPIKey != "" {
		chat = groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL)
	}

	return newWithDeps(cfg, usecase.Deps{
		Downloader:  ytdlp.New(cfg.YtDlpPath),
		Transcriber: asr,
		Selector:    groq.New(chat, cfg.GroqAPIKey, cfg.GroqModel),
		Video:       v,
	}), nil
}

func newWithDeps(cfg Config, deps usecase.Deps) *Pipeline {
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Pipeline{cfg: cfg, uc: usecase.New(deps), now: time.Now, logf: logf}
}

// Run processes one request to completion. Failures come back inside the
// outcome; Run itself never returns an error.
func (p *Pipeline) Run(ctx context.Context, req Request) types.Outcome {
	workDir := buildRequestDir(p.cfg.TempRoot, req.UserID, req.URL, p.now())
	outDir := filepath.Join(workDir, "output")
	logf := func(format string, args ...any) {
		p.logf("[user %d] "+format, append([]any{req.UserID}, args...)...)
	}

	logf("preparing workspace: %s", workDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		logf("workspace: %v", err)
		return types.Failed(types.UnexpectedFailure)
	}

	res := p.uc.Run(ctx, usecase.Input{
		URL:           req.URL,
		WorkDir:       workDir,
		OutDir:        outDir,
		Rounding:      p.cfg.Rounding,
		BurnSubtitles: p.cfg.BurnSubtitles,
		Progress:      req.Progress,
		Logf:          logf,
	})
	if !res.Outcome.Success() {
		logf("failed at %s stage", res.Outcome.Failure.Kind)
		return res.Outcome
	}

	manifestPath, err := writeManifest(outDir, req.URL, res)
	if err != nil {
		// the clips are already on disk; a missing manifest only hurts operators
		logf("manifest: %v", err)
	} else {
		logf("manifest written (%d clips): %s", len(res.Outcome.Clips), manifestPath)
	}
	return res.Outcome
}

func writeManifest(outDir, input string, res usecase.Result) (string, error) {
	m := types.Manifest{Input: input, Source: res.Source}
	for i, c := range res.Outcome.Clips {
		m.Clips = append(m.Clips, types.ManifestClip{
			ID:       fmt.Sprintf("clip_%02d", i+1),
			StartSec: c.Start,
			EndSec:   c.End,
			File:     filepath.Base(c.Path),
			Title:    c.Title,
		})
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(outDir, "manifest.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// buildRequestDir gives every request its own directory under the user's, so
// two links from the same user never share files.
func buildRequestDir(root string, userID int64, link string, now time.Time) string {
	name := normalizePathSegment(videoID(link))
	if name == "" {
		name = "video"
	}
	ts := now.UTC().Format("20060102-150405Z")
	seed := fmt.Sprintf("%d|%s|%d", userID, link, now.UTC().UnixNano())
	suffix := hash(seed)[:6]
	return filepath.Join(root, fmt.Sprintf("user_%d", userID), fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

// videoID returns the YouTube id for watch, short and youtu.be links, or "".
func videoID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case strings.EqualFold(u.Hostname(), "youtu.be") && len(parts) > 0:
		return parts[0]
	case len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "live"):
		return parts[1]
	}
	return ""
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Downloader = (*ytdlp.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.Transcriber = (*whisperapi.Adapter)(nil)
var _ ports.Selector = (*groq.Adapter)(nil)
