// Package notify delivers review reminders to learners.
package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Notifier sends a digest message to a chat.
type Notifier interface {
	SendDigest(chatID int64, text string) error
}

// New returns a Telegram notifier when a token is configured and a
// LogNotifier otherwise.
func New(token string) (Notifier, error) {
	if token == "" {
		log.Info().Msg("no telegram token configured, digests are logged only")
		return LogNotifier{}, nil
	}
	return NewTelegram(token)
}

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends digests through the Telegram Bot API.
type TelegramNotifier struct {
	api    sender
	client *tgbotapi.BotAPI
}

// NewTelegram authorizes against the Bot API with token.
func NewTelegram(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")
	return &TelegramNotifier{api: api, client: api}, nil
}

// SendDigest implements Notifier.
func (t *TelegramNotifier) SendDigest(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send digest to chat %d: %w", chatID, err)
	}
	log.Debug().Int64("chat_id", chatID).Msg("digest sent")
	return nil
}

// LogNotifier writes digests to the log instead of sending them.
type LogNotifier struct{}

// SendDigest implements Notifier.
func (LogNotifier) SendDigest(chatID int64, text string) error {
	log.Info().Int64("chat_id", chatID).Str("text", text).Msg("digest")
	return nil
}

// maxSample is the number of due items named in a digest.
const maxSample = 5

// DigestText renders the reminder for a learner with due items. sample
// holds the labels of the first due items.
func DigestText(name string, due int, sample []string) string {
	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "Hi %s! ", name)
	}
	word := "items"
	if due == 1 {
		word = "item"
	}
	fmt.Fprintf(&b, "You have %d %s due for review today.", due, word)

	if len(sample) > maxSample {
		sample = sample[:maxSample]
	}
	if len(sample) > 0 {
		b.WriteString("\n\n")
		for _, s := range sample {
			b.WriteString("• ")
			b.WriteString(s)
			b.WriteString("\n")
		}
		if due > len(sample) {
			fmt.Fprintf(&b, "…and %d more.", due-len(sample))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
