// Package i18n holds the user-visible message catalog. Message keys are the
// English format strings; other locales translate them.
package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	MsgRequestFailed   = "Request failed: %s"
	MsgNoResponse      = "Request failed: the server did not respond"
	MsgMalformedReply  = "The server sent an unreadable response"
	MsgFieldRequired   = "%s is required"
	MsgInvalidFormat   = "Unsupported export format %q"
	MsgInvalidLevel    = "Unknown log level %q"
	MsgLogsShown       = "Showing %d log entries"
	MsgTasksLoaded     = "Loaded %d scheduled tasks"
	MsgExportSaved     = "Exported logs to %s"
	MsgLoggedIn        = "Logged in as %s"
	MsgLoginThrottled  = "Too many failed logins for %s, try again later"
	MsgAttackStarted   = "Attack started"
	MsgAttackStopped   = "Attack stopped"
	MsgUserAdded       = "User %s added"
	MsgUserDeleted     = "User %s deleted"
	MsgUpcomingTask    = "Upcoming task: %s at %s"
	MsgResynced        = "Resynchronized with server"
	MsgChannelOpen     = "live"
	MsgChannelWaiting  = "connecting"
	MsgChannelRetrying = "reconnecting"
	MsgChannelClosed   = "offline"
)

var russian = map[string]string{
	MsgRequestFailed:   "Ошибка запроса: %s",
	MsgNoResponse:      "Ошибка запроса: сервер не ответил",
	MsgMalformedReply:  "Сервер прислал некорректный ответ",
	MsgFieldRequired:   "Поле %s обязательно",
	MsgInvalidFormat:   "Неподдерживаемый формат экспорта %q",
	MsgInvalidLevel:    "Неизвестный уровень журнала %q",
	MsgExportSaved:     "Журнал экспортирован в %s",
	MsgLoggedIn:        "Выполнен вход: %s",
	MsgLoginThrottled:  "Слишком много неудачных входов для %s, попробуйте позже",
	MsgAttackStarted:   "Атака запущена",
	MsgAttackStopped:   "Атака остановлена",
	MsgUserAdded:       "Пользователь %s добавлен",
	MsgUserDeleted:     "Пользователь %s удалён",
	MsgUpcomingTask:    "Скоро задача: %s в %s",
	MsgResynced:        "Данные синхронизированы с сервером",
	MsgChannelOpen:     "онлайн",
	MsgChannelWaiting:  "подключение",
	MsgChannelRetrying: "переподключение",
	MsgChannelClosed:   "офлайн",
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	for key, ru := range russian {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Russian, key, ru)
	}

	_ = b.Set(language.English, MsgLogsShown, plural.Selectf(1, "%d",
		"one", "Showing %d log entry",
		"other", "Showing %d log entries"))
	_ = b.Set(language.Russian, MsgLogsShown, plural.Selectf(1, "%d",
		"one", "Показана %d запись",
		"few", "Показаны %d записи",
		"other", "Показано %d записей"))
	_ = b.Set(language.English, MsgTasksLoaded, plural.Selectf(1, "%d",
		"one", "Loaded %d scheduled task",
		"other", "Loaded %d scheduled tasks"))
	_ = b.Set(language.Russian, MsgTasksLoaded, plural.Selectf(1, "%d",
		"one", "Загружена %d задача",
		"few", "Загружены %d задачи",
		"other", "Загружено %d задач"))

	return b
}

// Printer formats catalog messages for one locale
type Printer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a printer for locale (BCP 47, e.g. "ru" or "en-US"). Unknown
// or empty locales fall back to English.
func New(locale string) *Printer {
	matcher := language.NewMatcher(cat.Languages())
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return &Printer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
}

// Tag returns the matched language
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Sprintf formats the message for key
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

// Locales lists the supported languages
func Locales() []string {
	tags := cat.Languages()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}
