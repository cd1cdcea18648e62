package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/gxbriex/clips/internal/bot"
	"github.com/gxbriex/clips/internal/config"
	"github.com/gxbriex/clips/internal/pipeline"
)

func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot (long polling)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd)
		},
	}
}

func runBot(cmd *cobra.Command) error {
	s, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if s.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is required (set it in .env)")
	}

	p, err := pipeline.New(pipelineConfig(s, logger))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Info().
		Str("token", config.TokenPrefix(s.Telegram.Token)).
		Int64("admin_id", s.Telegram.AdminUserID).
		Str("transcriber", s.Whisper.Backend).
		Bool("selector_enabled", s.Groq.APIKey != "").
		Msg("starting clips bot")
	if s.Groq.APIKey == "" {
		logger.Warn().Msg("GROQ_API_KEY not set: every request will end with no excerpts")
	}

	api, err := tgbotapi.NewBotAPI(s.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	logger.Info().Str("username", api.Self.UserName).Msg("authorized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.New(api, p, bot.Config{
		AdminUserID: s.Telegram.AdminUserID,
		UploadPause: s.Telegram.UploadPause,
		Logger:      logger,
	}).Run(ctx)
}
