// Package locale holds the user-facing strings and the name collation used by
// the client. Russian is the primary language; English is the fallback.
package locale

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	MsgNetworkError     = "Network error"
	MsgGenericError     = "An error occurred"
	MsgDefaultName      = "friend"
	MsgBulkAdded        = "Added: %d"
	MsgBulkSkipped      = "Skipped: %d"
	MsgBulkErrors       = "Errors: %d"
	MsgConfirmDelete    = "Remove the tobacco from the collection?"
	MsgConfirmDeleteAll = "Remove all tobaccos from the collection?"
	MsgConfirmUnfav     = "Remove from favorites?"
	MsgConfirmClearFav  = "Clear all favorites?"
	MsgEmptyBulk        = "Nothing to add"
	MsgNeedTobaccos     = "Add at least %d tobaccos to generate a mix"
)

// Supported lists the languages with a translation catalog.
var Supported = []language.Tag{language.Russian, language.English}

var matcher = language.NewMatcher(Supported)

func init() {
	ru := map[string]string{
		MsgNetworkError:     "Ошибка сети",
		MsgGenericError:     "Произошла ошибка",
		MsgDefaultName:      "друг",
		MsgBulkAdded:        "Добавлено: %d",
		MsgBulkSkipped:      "Пропущено: %d",
		MsgBulkErrors:       "Ошибок: %d",
		MsgConfirmDelete:    "Удалить табак из коллекции?",
		MsgConfirmDeleteAll: "Удалить все табаки из коллекции?",
		MsgConfirmUnfav:     "Убрать из избранного?",
		MsgConfirmClearFav:  "Очистить всё избранное?",
		MsgEmptyBulk:        "Нечего добавлять",
		MsgNeedTobaccos:     "Добавьте минимум %d табака для генерации микса",
	}
	for key, text := range ru {
		_ = message.SetString(language.Russian, key, text)
		_ = message.SetString(language.English, key, key)
	}
}

// Match returns the supported language closest to tag.
func Match(tag language.Tag) language.Tag {
	_, idx, _ := matcher.Match(tag)
	return Supported[idx]
}

// Printer returns a message printer for the supported language closest to tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Match(tag))
}

// Text returns the translation of key for tag.
func Text(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}

// Collator returns a collator for tag. Collators are not safe for concurrent
// use; callers own the returned value.
func Collator(tag language.Tag) *collate.Collator {
	return collate.New(tag)
}
