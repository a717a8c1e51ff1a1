// internal/infra/telegram/client.go
package telegram

import (
	"errors"
	"fmt"

	domainTelegram "telegramschoolbot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the chat. Permanent delivery failures
// are reported as domainTelegram.ErrChatUnavailable.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, mode domainTelegram.ParseMode) error {
	options := &telebot.SendOptions{
		ParseMode:             telebot.ParseMode(mode),
		DisableWebPagePreview: true,
	}
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, options)
	if err != nil && IsChatUnavailable(err) {
		return fmt.Errorf("%w: %v", domainTelegram.ErrChatUnavailable, err)
	}
	return err
}

// unavailableErrors are the Bot API failures after which a chat will never accept messages again.
var unavailableErrors = []error{
	telebot.ErrBlockedByUser,
	telebot.ErrUserIsDeactivated,
	telebot.ErrNotStartedByUser,
	telebot.ErrKickedFromGroup,
	telebot.ErrKickedFromSuperGroup,
	telebot.ErrChatNotFound,
}

// IsChatUnavailable reports whether err means the chat is permanently unreachable.
func IsChatUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domainTelegram.ErrChatUnavailable) {
		return true
	}
	for _, target := range unavailableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
