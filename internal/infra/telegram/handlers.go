// internal/infra/telegram/handlers.go
package telegram

import (
	"context"
	"strings"
	"time"

	"telegramschoolbot/internal/app"
	"telegramschoolbot/internal/domain/conversation"
	"telegramschoolbot/internal/domain/timetable"
	"telegramschoolbot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Lookuper resolves a free-form name into a timetable page.
type Lookuper interface {
	Lookup(ctx context.Context, hint timetable.Category, text string) (app.LookupResult, error)
}

// Subscriptions toggles notice subscriptions and cleans up unreachable chats.
type Subscriptions interface {
	Toggle(ctx context.Context, chatID int64) (bool, error)
	HandleChatUnavailable(ctx context.Context, chatID int64) error
}

// updateTimeout bounds the storage calls made while handling one update.
const updateTimeout = 30 * time.Second

// Handlers is the bot's command table. Build it with NewHandlers and attach it
// to a bot with Register.
type Handlers struct {
	lookup        Lookuper
	subscriptions Subscriptions
	pending       conversation.PendingStore
	about         string
	metrics       *metrics.Metrics
	logger        *logrus.Entry
}

func NewHandlers(
	lookup Lookuper,
	subscriptions Subscriptions,
	pending conversation.PendingStore,
	about string,
	m *metrics.Metrics,
	baseLogger *logrus.Entry,
) *Handlers {
	return &Handlers{
		lookup:        lookup,
		subscriptions: subscriptions,
		pending:       pending,
		about:         about,
		metrics:       m,
		logger:        baseLogger.WithField("handler_group", "commands"),
	}
}

// Commands is the command menu published to Telegram. /start stays hidden.
func Commands() []telebot.Command {
	cmds := []telebot.Command{{Text: "notifiche", Description: app.NotificationsHelpText}}
	for _, c := range timetable.Categories() {
		cmds = append(cmds, telebot.Command{Text: c.Command(), Description: c.HelpText()})
	}
	return cmds
}

// Register attaches every handler and the chat-unavailable middleware to b.
// Commands run behind ResetPending; OnText consumes the pending prompt itself.
func (h *Handlers) Register(b *telebot.Bot) {
	b.Use(h.DropUnavailableChats)

	commands := b.Group()
	commands.Use(h.ResetPending)
	commands.Handle("/start", h.OnStart)
	commands.Handle("/help", h.OnHelp)
	commands.Handle("/notifiche", h.OnNotifications)
	for _, c := range timetable.Categories() {
		commands.Handle("/"+c.Command(), h.CategoryCommand(c))
	}
	b.Handle(telebot.OnText, h.OnText)
}

func updateContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), updateTimeout)
}

func (h *Handlers) OnStart(c telebot.Context) error {
	h.logger.WithFields(logrus.Fields{"command": "/start", "chat_id": c.Chat().ID}).Info("Processing /start command")
	return c.Send(app.StartMessage(h.about))
}

func (h *Handlers) OnHelp(c telebot.Context) error {
	return c.Send(app.HelpMessage())
}

func (h *Handlers) OnNotifications(c telebot.Context) error {
	logCtx := h.logger.WithFields(logrus.Fields{"command": "/notifiche", "chat_id": c.Chat().ID})

	ctx, cancel := updateContext()
	defer cancel()

	subscribed, err := h.subscriptions.Toggle(ctx, c.Chat().ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to toggle subscription")
		return err
	}
	logCtx.WithField("subscribed", subscribed).Info("Subscription toggled")
	return c.Reply(app.ToggleMessage(subscribed))
}

// CategoryCommand handles /classe, /prof and /aula. Without arguments it asks for
// a name and remembers which category the answer belongs to.
func (h *Handlers) CategoryCommand(category timetable.Category) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		logCtx := h.logger.WithFields(logrus.Fields{
			"command":  "/" + category.Command(),
			"chat_id":  c.Chat().ID,
			"category": category,
		})
		ctx, cancel := updateContext()
		defer cancel()

		args := c.Args()
		if len(args) == 0 {
			err := c.Reply(category.Prompt(), &telebot.SendOptions{
				ReplyMarkup: &telebot.ReplyMarkup{ForceReply: true, Selective: true},
			})
			if err != nil {
				return err
			}
			// Pending only once the prompt is delivered.
			if err := h.pending.Set(ctx, c.Chat().ID, category); err != nil {
				logCtx.WithError(err).Error("Failed to store pending prompt")
				return err
			}
			return nil
		}

		name := strings.Join(args, " ")
		res, err := h.lookup.Lookup(ctx, category, name)
		if err != nil {
			h.metrics.ObserveLookup("command", "error")
			logCtx.WithError(err).Error("Timetable lookup failed")
			return err
		}
		h.metrics.ObserveLookup("command", res.Outcome.String())
		logCtx.WithField("outcome", res.Outcome).Debug("Timetable lookup done")

		switch res.Outcome {
		case app.OutcomeFound:
			return sendPage(c, res.Page)
		case app.OutcomeAmbiguous:
			return c.Reply(app.MsgAmbiguous)
		default:
			return c.Reply(app.NotFoundMessage(category, name), &telebot.SendOptions{ParseMode: telebot.ModeHTML})
		}
	}
}

// OnText answers a free-text message. The pending prompt of the chat is consumed
// whatever the outcome; a native reply to one of the prompts takes precedence.
func (h *Handlers) OnText(c telebot.Context) error {
	chatID := c.Chat().ID
	logCtx := h.logger.WithFields(logrus.Fields{"handler": "text", "chat_id": chatID})
	ctx, cancel := updateContext()
	defer cancel()

	hint, _, err := h.pending.Take(ctx, chatID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to read pending prompt")
		return err
	}

	text := c.Text()
	if strings.HasPrefix(text, "/") {
		return nil // unknown command
	}
	if replied := replyHint(c.Message()); replied.Valid() {
		hint = replied
	}

	res, err := h.lookup.Lookup(ctx, hint, text)
	if err != nil {
		h.metrics.ObserveLookup("text", "error")
		logCtx.WithError(err).Error("Timetable lookup failed")
		return err
	}
	h.metrics.ObserveLookup("text", res.Outcome.String())
	logCtx.WithFields(logrus.Fields{"hint": hint, "outcome": res.Outcome}).Debug("Free-text lookup done")

	switch res.Outcome {
	case app.OutcomeFound:
		return sendPage(c, res.Page)
	case app.OutcomeAmbiguous:
		return c.Reply(app.MsgAmbiguous)
	default:
		return c.Reply(app.MsgNothingFound)
	}
}

// DropUnavailableChats runs the chat-unavailable cleanup when a handler fails
// because the chat can no longer be reached, and swallows that error.
func (h *Handlers) DropUnavailableChats(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		err := next(c)
		if err == nil || !IsChatUnavailable(err) || c.Chat() == nil {
			return err
		}
		h.logger.WithField("chat_id", c.Chat().ID).WithError(err).Warn("Chat is no longer reachable")
		ctx, cancel := updateContext()
		defer cancel()
		return h.subscriptions.HandleChatUnavailable(ctx, c.Chat().ID)
	}
}

// ResetPending drops the chat's pending prompt before a command runs, so a
// prompt never outlives the next message. Store failures are logged only.
func (h *Handlers) ResetPending(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Chat() != nil {
			ctx, cancel := updateContext()
			_, _, err := h.pending.Take(ctx, c.Chat().ID)
			cancel()
			if err != nil {
				h.logger.WithField("chat_id", c.Chat().ID).WithError(err).Warn("Failed to reset pending prompt")
			}
		}
		return next(c)
	}
}

// replyHint returns the category of the prompt m replies to, if any.
func replyHint(m *telebot.Message) timetable.Category {
	if m == nil || m.ReplyTo == nil {
		return 0
	}
	category, _ := timetable.CategoryForPrompt(m.ReplyTo.Text)
	return category
}

func sendPage(c telebot.Context, page *timetable.Page) error {
	for i, chunk := range app.PageMessages(page) {
		var err error
		if i == 0 {
			err = c.Reply(chunk)
		} else {
			err = c.Send(chunk)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
