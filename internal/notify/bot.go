package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/lemmabank/internal/database"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const helpText = `Lemmabank sends you a daily reminder of the words you have due for review.

Available commands:
/start <user id> - Link this chat to your account
/due - Show what is due today
/stop - Stop reminders in this chat`

// updater is the part of tgbotapi.BotAPI the command loop uses.
type updater interface {
	sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot answers chat commands that link Telegram chats to learners.
type Bot struct {
	api   updater
	users *database.UserRepository
	vocab *database.VocabRepository
	now   func() time.Time
}

// NewBot returns a command handler backed by db.
func NewBot(api updater, db *sqlx.DB) *Bot {
	return &Bot{
		api:   api,
		users: database.NewUserRepository(db),
		vocab: database.NewVocabRepository(db),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Commands returns a Bot that reads updates from the same account the
// notifier sends with.
func (t *TelegramNotifier) Commands(db *sqlx.DB) *Bot {
	return NewBot(t.client, db)
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)
	log.Info().Msg("telegram command loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("telegram command loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	chatID := update.Message.Chat.ID
	reply := b.Reply(ctx, chatID, update.Message.Command(), update.Message.CommandArguments())

	msg := tgbotapi.NewMessage(chatID, reply)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to answer command")
	}
}

// Reply executes a command sent from chatID and returns the answer.
func (b *Bot) Reply(ctx context.Context, chatID int64, command, args string) string {
	var (
		text string
		err  error
	)
	switch command {
	case "start":
		text, err = b.link(ctx, chatID, strings.TrimSpace(args))
	case "stop":
		text, err = b.unlink(ctx, chatID)
	case "due":
		text, err = b.due(ctx, chatID)
	case "help":
		text = helpText
	default:
		text = "Unknown command. Use /help to list the commands."
	}
	if err != nil {
		log.Error().Err(err).Str("command", command).Int64("chat_id", chatID).Msg("command failed")
		return "Something went wrong, please try again later."
	}
	return text
}

func (b *Bot) link(ctx context.Context, chatID int64, publicID string) (string, error) {
	if publicID == "" {
		return helpText, nil
	}
	user, err := b.users.GetByPublicID(ctx, publicID)
	if errors.Is(err, database.ErrNotFound) {
		return "No account with that id. Copy the id from your profile page.", nil
	}
	if err != nil {
		return "", err
	}
	user.TelegramChatID = &chatID
	if err := b.users.Update(ctx, user); err != nil {
		return "", err
	}
	log.Info().Str("user", user.PublicID).Int64("chat_id", chatID).Msg("telegram chat linked")
	return fmt.Sprintf("Linked to %s. You will get a reminder when words are due.", user.Username), nil
}

func (b *Bot) unlink(ctx context.Context, chatID int64) (string, error) {
	user, err := b.users.GetByChatID(ctx, chatID)
	if errors.Is(err, database.ErrNotFound) {
		return "This chat is not linked to an account.", nil
	}
	if err != nil {
		return "", err
	}
	user.TelegramChatID = nil
	if err := b.users.Update(ctx, user); err != nil {
		return "", err
	}
	return "Reminders stopped. Send /start <user id> to link again.", nil
}

func (b *Bot) due(ctx context.Context, chatID int64) (string, error) {
	user, err := b.users.GetByChatID(ctx, chatID)
	if errors.Is(err, database.ErrNotFound) {
		return "This chat is not linked to an account. Send /start <user id> first.", nil
	}
	if err != nil {
		return "", err
	}

	now := b.now()
	count, err := b.vocab.CountDue(ctx, user.ID, now)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "Nothing is due. Well done!", nil
	}
	items, err := b.vocab.Due(ctx, user.ID, now, maxSample)
	if err != nil {
		return "", err
	}
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return DigestText("", count, labels), nil
}
