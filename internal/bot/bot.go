package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gxbriex/clips/internal/pipeline"
	"github.com/gxbriex/clips/internal/ports"
	"github.com/gxbriex/clips/internal/types"
)

// API is the subset of *tgbotapi.BotAPI the dispatcher uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Processor turns one link into an outcome. *pipeline.Pipeline satisfies it.
type Processor interface {
	Run(ctx context.Context, req pipeline.Request) types.Outcome
}

type Config struct {
	// AdminUserID may use /stats. Zero means nobody can.
	AdminUserID int64
	// UploadPause is waited after each delivered clip.
	UploadPause time.Duration
	Logger      zerolog.Logger
}

type Bot struct {
	api  API
	proc Processor
	cfg  Config
	log  zerolog.Logger

	wg      sync.WaitGroup
	started time.Time
	stats   counters

	sleep func(ctx context.Context, d time.Duration)
	newID func() string
}

type counters struct {
	requests  atomic.Int64
	inFlight  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	clipsSent atomic.Int64
}

func New(api API, proc Processor, cfg Config) *Bot {
	return &Bot{
		api:     api,
		proc:    proc,
		cfg:     cfg,
		log:     cfg.Logger,
		started: time.Now(),
		sleep:   sleepCtx,
		newID:   func() string { return uuid.New().String() },
	}
}

// Run long-polls for updates until ctx is done, then waits for the requests
// already being processed.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.log.Info().Msg("bot online, waiting for messages")
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("stopped receiving updates, draining in-flight requests")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, upd)
		}
	}
}

func (b *Bot) handle(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.IsCommand() {
		b.command(msg)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	link := ExtractLink(msg.Text)
	if link == "" {
		b.reply(msg, msgInvalidLink)
		return
	}

	b.wg.Add(1)
	// in-flight requests outlive shutdown of the update loop
	go b.process(context.WithoutCancel(ctx), msg, link)
}

func (b *Bot) command(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg, msgStart)
	case "help":
		b.reply(msg, msgHelp)
	case "stats":
		if msg.From == nil || b.cfg.AdminUserID == 0 || msg.From.ID != b.cfg.AdminUserID {
			b.replyPlain(msg, msgAdminOnly)
			return
		}
		b.reply(msg, fmt.Sprintf(msgStats,
			time.Since(b.started).Truncate(time.Second),
			b.stats.requests.Load(),
			b.stats.inFlight.Load(),
			b.stats.succeeded.Load(),
			b.stats.failed.Load(),
			b.stats.clipsSent.Load(),
			b.cfg.AdminUserID,
		))
	}
}

func (b *Bot) process(ctx context.Context, msg *tgbotapi.Message, link string) {
	defer b.wg.Done()
	b.stats.requests.Add(1)
	b.stats.inFlight.Add(1)
	defer b.stats.inFlight.Add(-1)

	var userID int64
	var username string
	if msg.From != nil {
		userID, username = msg.From.ID, msg.From.UserName
	}
	log := b.log.With().
		Str("request_id", b.newID()).
		Int64("user_id", userID).
		Logger()
	ctx = log.WithContext(ctx)
	log.Info().Str("username", username).Str("link", link).Msg("link received")

	status, err := b.api.Send(replyConfig(msg, msgReceived))
	if err != nil {
		log.Warn().Err(err).Msg("status message not sent")
	}
	chatID := msg.Chat.ID

	defer func() {
		if r := recover(); r != nil {
			b.stats.failed.Add(1)
			log.Error().Interface("panic", r).Msg("request handler panicked")
			b.edit(ctx, chatID, status.MessageID, msgUnexpected)
		}
	}()

	out := b.proc.Run(ctx, pipeline.Request{
		URL:      link,
		UserID:   userID,
		Progress: b.progress(chatID, status.MessageID),
	})
	if !out.Success() {
		b.stats.failed.Add(1)
		log.Warn().Stringer("stage", out.Failure.Kind).Msg("request failed")
		b.edit(ctx, chatID, status.MessageID, fmt.Sprintf(msgFailed, escape(out.Failure.Reason)))
		return
	}

	b.stats.succeeded.Add(1)
	b.edit(ctx, chatID, status.MessageID, fmt.Sprintf(msgProcessed, len(out.Clips)))
	sent := b.sendClips(ctx, msg, out.Clips)
	log.Info().Int("clips", len(out.Clips)).Int("sent", sent).Msg("request done")
	b.reply(msg, msgReady)
}

// sendClips uploads clips one by one and returns how many made it.
func (b *Bot) sendClips(ctx context.Context, msg *tgbotapi.Message, clips []types.Clip) int {
	log := zerolog.Ctx(ctx)
	sent := 0
	for i, c := range clips {
		v := tgbotapi.NewVideo(msg.Chat.ID, tgbotapi.FilePath(c.Path))
		v.Caption = fmt.Sprintf(msgClipCaption, i+1, len(clips), escape(c.Title))
		v.ParseMode = tgbotapi.ModeMarkdown
		v.SupportsStreaming = true
		v.ReplyToMessageID = msg.MessageID
		if _, err := b.api.Send(v); err != nil {
			log.Error().Err(err).Int("clip", i+1).Msg("clip upload failed")
			continue
		}
		sent++
		b.stats.clipsSent.Add(1)
		log.Info().Int("clip", i+1).Msg("clip sent")
		b.sleep(ctx, b.cfg.UploadPause)
	}
	return sent
}

func (b *Bot) progress(chatID int64, statusID int) ports.Progress {
	return func(_ context.Context, text string) error {
		if statusID == 0 {
			return fmt.Errorf("no status message to edit")
		}
		_, err := b.api.Send(editConfig(chatID, statusID, text))
		return err
	}
}

func (b *Bot) edit(ctx context.Context, chatID int64, statusID int, text string) {
	if statusID == 0 {
		_, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, text)))
		logSendErr(ctx, err, "status fallback")
		return
	}
	_, err := b.api.Send(editConfig(chatID, statusID, text))
	logSendErr(ctx, err, "status edit")
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	if _, err := b.api.Send(replyConfig(msg, text)); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("reply failed")
	}
}

func (b *Bot) replyPlain(msg *tgbotapi.Message, text string) {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(m); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("reply failed")
	}
}

func logSendErr(ctx context.Context, err error, what string) {
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg(what + " failed")
	}
}

func replyConfig(msg *tgbotapi.Message, text string) tgbotapi.MessageConfig {
	m := markdown(tgbotapi.NewMessage(msg.Chat.ID, text))
	m.ReplyToMessageID = msg.MessageID
	return m
}

func markdown(m tgbotapi.MessageConfig) tgbotapi.MessageConfig {
	m.ParseMode = tgbotapi.ModeMarkdown
	return m
}

func editConfig(chatID int64, msgID int, text string) tgbotapi.EditMessageTextConfig {
	e := tgbotapi.NewEditMessageText(chatID, msgID, text)
	e.ParseMode = tgbotapi.ModeMarkdown
	return e
}

// escape keeps model-written titles from breaking Markdown parsing.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// ExtractLink returns the first word of text that looks like a YouTube link,
// or "" when there is none.
func ExtractLink(text string) string {
	for _, f := range strings.Fields(text) {
		if IsYouTubeLink(f) {
			return f
		}
	}
	return ""
}

// IsYouTubeLink is a plain substring check; yt-dlp decides the rest.
func IsYouTubeLink(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
