package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gxbriex/clips/internal/config"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clipsbot",
		Short:         "Turn YouTube videos into vertical clips, over Telegram or once from the shell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML settings file")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(newBotCmd(), newRunCmd())
	return root
}

// loadSettings resolves settings and the operator logger from the global flags.
func loadSettings(cmd *cobra.Command) (config.Settings, zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, zerolog.Nop(), err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		s.LogLevel = lvl
	}
	if err := s.Validate(); err != nil {
		return config.Settings{}, zerolog.Nop(), fmt.Errorf("config: %w", err)
	}
	logger, err := newLogger(cmd.ErrOrStderr(), s.LogLevel)
	if err != nil {
		return config.Settings{}, zerolog.Nop(), err
	}
	return s, logger, nil
}

func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: os.Getenv("NO_COLOR") != ""}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// logf adapts a zerolog logger to the printf-style hook the pipeline takes.
func logf(l zerolog.Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		l.Info().Msgf(format, args...)
	}
}
