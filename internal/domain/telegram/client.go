package telegram

import "errors"

// ErrChatUnavailable is returned by a Client when the chat can no longer be
// reached (bot blocked, user deactivated, bot kicked, chat deleted).
var ErrChatUnavailable = errors.New("chat is permanently unavailable")

// ParseMode selects how message text is interpreted.
type ParseMode string

const (
	ParsePlain ParseMode = ""
	ParseHTML  ParseMode = "HTML"
)

// Client defines an interface for sending messages via a Telegram bot.
// This helps in decoupling the application logic from the specific bot library.
type Client interface {
	SendMessage(chatID int64, text string, mode ParseMode) error
}
