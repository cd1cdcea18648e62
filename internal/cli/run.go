package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gxbriex/clips/internal/bot"
	"github.com/gxbriex/clips/internal/config"
	"github.com/gxbriex/clips/internal/domain/vertical"
	"github.com/gxbriex/clips/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <youtube-url>",
		Short: "Process one link and print the produced clips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, args[0])
		},
	}
	cmd.Flags().Int64("user", 0, "User id used for the workspace directory")
	return cmd
}

func runOnce(cmd *cobra.Command, link string) error {
	link = strings.TrimSpace(link)
	if !bot.IsYouTubeLink(link) {
		return fmt.Errorf("not a YouTube link: %q", link)
	}
	s, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	userID, _ := cmd.Flags().GetInt64("user")

	p, err := pipeline.New(pipelineConfig(s, logger))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	out := p.Run(ctx, pipeline.Request{
		URL:    link,
		UserID: userID,
		Progress: func(_ context.Context, status string) error {
			_, err := fmt.Fprintln(cmd.ErrOrStderr(), plainStatus(status))
			return err
		},
	})
	if !out.Success() {
		return out.Failure
	}
	for _, c := range out.Clips {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Path, c.Title)
	}
	return nil
}

func pipelineConfig(s config.Settings, logger zerolog.Logger) pipeline.Config {
	// already checked by Settings.Validate
	rounding, _ := vertical.ParseRounding(s.Render.Rounding)
	return pipeline.Config{
		TempRoot:    s.TempRoot,
		YtDlpPath:   s.Tools.YtDlp,
		FFmpegPath:  s.Tools.FFmpeg,
		FFprobePath: s.Tools.FFprobe,

		Transcriber:     s.Whisper.Backend,
		WhisperBin:      s.Whisper.Bin,
		WhisperModel:    s.Whisper.Model,
		WhisperLanguage: s.Whisper.Language,
		WhisperAPIModel: s.Whisper.APIModel,

		GroqAPIKey:       s.Groq.APIKey,
		GroqModel:        s.Groq.Model,
		GroqBaseURL:      s.Groq.BaseURL,
		GroqAllowedHosts: s.Groq.AllowedHosts,

		Rounding:      rounding,
		BurnSubtitles: s.Render.BurnSubtitles,
		Logf:          logf(logger),
	}
}

// plainStatus drops the Markdown markers meant for the chat client.
func plainStatus(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	return strings.Join(strings.Fields(s), " ")
}
