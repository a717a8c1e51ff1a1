package conversation

import (
	"context"

	"telegramschoolbot/internal/domain/timetable"
)

// PendingStore keeps, per chat, which category the bot last asked a name for.
//
// A chat is either idle (no entry) or awaiting a reply for one category.
// Set moves it to awaiting, Take moves it back to idle.
type PendingStore interface {
	Set(ctx context.Context, chatID int64, category timetable.Category) error
	// Take returns and clears the pending category. ok is false when the chat is idle.
	Take(ctx context.Context, chatID int64) (category timetable.Category, ok bool, err error)
}
