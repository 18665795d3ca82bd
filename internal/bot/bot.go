// Package bot holds the conversation logic: score intake, report generation
// and the reminder broadcast. It talks to the record store and the platform
// API only through narrow interfaces so handlers stay testable.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sleepscore-bot/internal/chart"
	"sleepscore-bot/internal/domain"
	"sleepscore-bot/internal/repository"
	"sleepscore-bot/internal/telegram"
)

// Reply texts, matching the bot's established voice.
const (
	greetingText  = "Hey"
	ackText       = "Got you"
	rejectionText = "You dumb?"
	noDataText    = "No data available"
	failureText   = "Something went wrong, try again later"
	reminderText  = "What's your sleep score now? Send a number from 1 to 10"
)

// Store is the slice of the record repository the bot depends on.
type Store interface {
	Insert(ctx context.Context, params repository.RecordInsertParams) (domain.Record, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Record, error)
	DistinctUserIDs(ctx context.Context) ([]int64, error)
}

// Bot dispatches inbound updates and answers through the platform client.
type Bot struct {
	store  Store
	tg     telegram.Client
	log    zerolog.Logger
	render func([]domain.HourlyAverage) ([]byte, error)
	now    func() time.Time
}

// New constructs a Bot with its injected collaborators.
func New(store Store, tg telegram.Client, log zerolog.Logger) *Bot {
	return &Bot{
		store:  store,
		tg:     tg,
		log:    log,
		render: chart.Render,
		now:    time.Now,
	}
}

// HandleUpdate routes one inbound update: /start greets, /report builds the
// chart, plain text is treated as a score submission. Messages from group
// chats and unknown commands are ignored. Failures never propagate; they are
// logged and answered with a generic reply where a user is waiting for one.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	msg := upd.Message
	if msg == nil || !msg.Chat.IsPrivate() {
		return
	}

	switch msg.Command() {
	case "start":
		b.reply(ctx, msg.Chat.ID, greetingText)
	case "report":
		b.handleReport(ctx, msg)
	case "":
		b.handleScore(ctx, msg)
	default:
		// Unregistered command; nothing to answer.
	}
}

// handleScore validates free-text input as a score and appends a record.
func (b *Bot) handleScore(ctx context.Context, msg *telegram.Message) {
	score, err := strconv.ParseFloat(strings.TrimSpace(msg.Text), 64)
	if err != nil || !domain.ValidScore(score) {
		b.reply(ctx, msg.Chat.ID, rejectionText)
		return
	}

	_, err = b.store.Insert(ctx, repository.RecordInsertParams{
		UserID:    msg.SenderID(),
		Timestamp: b.now().UTC(),
		Score:     score,
	})
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.SenderID()).Msg("store score failed")
		b.reply(ctx, msg.Chat.ID, failureText)
		return
	}

	b.reply(ctx, msg.Chat.ID, ackText)
}

// handleReport aggregates the user's records into hourly averages and sends
// the rendered chart. The report is recomputed from scratch on every request.
func (b *Bot) handleReport(ctx context.Context, msg *telegram.Message) {
	userID := msg.SenderID()

	records, err := b.store.ListByUser(ctx, userID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("fetch records failed")
		b.reply(ctx, msg.Chat.ID, failureText)
		return
	}
	if len(records) == 0 {
		b.reply(ctx, msg.Chat.ID, noDataText)
		return
	}

	img, err := b.render(domain.AverageByHour(records))
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("render chart failed")
		b.reply(ctx, msg.Chat.ID, failureText)
		return
	}

	if err := b.tg.SendPhoto(ctx, msg.Chat.ID, img, ""); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send report failed")
	}
}

// reply sends a text answer; delivery failures are logged, not surfaced.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.tg.SendMessage(ctx, chatID, text); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
	}
}
