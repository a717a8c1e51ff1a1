package app

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"telegramschoolbot/internal/domain/notice"
	"telegramschoolbot/internal/domain/timetable"
)

// MaxMessageLength is Telegram's limit for a text message, in characters.
const MaxMessageLength = 4096

const (
	MsgAmbiguous     = "I criteri di ricerca inseriti coincidono con più di un risultato."
	MsgNothingFound  = "Non ho trovato niente"
	MsgNoticesHeader = "Nuovi avvisi pubblicati nell'ultima ora:"
)

var (
	subscribedLines = []string{
		"Iscrizione alle notifiche completata con successo.",
		"Ad ogni ora riceverai un messaggio con gli avvisi pubblicati nell'ultima ora se ce ne sono.",
		"Non bloccare il bot altrimenti sarai disiscritto automaticamente dalle notifiche.",
	}
	unsubscribedLines = []string{
		"Disiscrizione dalle notifiche completata con successo.",
		"Da ora non riceverai più notifiche riguardanti le nuove circolari pubblicate sul sito.",
		"Per riabilitarle fai /notifiche",
	}
)

// StartMessage is the welcome text; about is the bot description on the first line.
func StartMessage(about string) string {
	return strings.Join([]string{
		about,
		"",
		"Utilizza /help per ottenere la lista di tutti i comandi.",
		"Per ricevere una notifica quando esce un nuovo avviso fai /notifiche",
	}, "\n")
}

// HelpMessage lists the visible commands.
func HelpMessage() string {
	var b strings.Builder
	b.WriteString("Comandi disponibili:\n")
	fmt.Fprintf(&b, "/notifiche - %s\n", NotificationsHelpText)
	for _, c := range timetable.Categories() {
		fmt.Fprintf(&b, "/%s - %s\n", c.Command(), c.HelpText())
	}
	return strings.TrimRight(b.String(), "\n")
}

const NotificationsHelpText = "Abilita/Disabilita le notifiche per gli avvisi."

func ToggleMessage(subscribed bool) string {
	if subscribed {
		return strings.Join(subscribedLines, "\n")
	}
	return strings.Join(unsubscribedLines, "\n")
}

// NotFoundMessage is the HTML reply for a category command that matched nothing.
func NotFoundMessage(c timetable.Category, name string) string {
	return fmt.Sprintf("Non ho trovato %s <b>%s</b>", c.Subject(), html.EscapeString(name))
}

// PageMessages renders a page as caption and content, split to fit Telegram's limit.
func PageMessages(p *timetable.Page) []string {
	text := p.Caption()
	if p.Content != "" {
		text += "\n\n" + p.Content
	}
	return SplitMessage(text, MaxMessageLength)
}

// NoticeDigest renders the HTML message announcing recently published notices.
func NoticeDigest(notices []*notice.Notice) string {
	var b strings.Builder
	b.WriteString(MsgNoticesHeader)
	for _, n := range notices {
		fmt.Fprintf(&b, "\n• <a href=\"%s\">%s</a>", html.EscapeString(n.URL), html.EscapeString(n.Title))
	}
	return b.String()
}

// SplitMessage cuts text into chunks of at most limit characters, preferring line breaks.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if s := strings.TrimRight(cur.String(), "\n"); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
		curLen = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		if curLen+len(runes) > limit {
			flush()
		}
		cur.WriteString(string(runes))
		curLen += len(runes)
	}
	flush()
	return chunks
}
