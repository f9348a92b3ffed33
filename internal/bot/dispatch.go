package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxVoiceDuration - самое длинное голосовое сообщение (в секундах), которое бот распознает.
const MaxVoiceDuration = 30

type contentKind int

const (
	contentUnsupported contentKind = iota
	contentCommand
	contentText
	contentLocation
	contentVoice
)

func (k contentKind) String() string {
	switch k {
	case contentCommand:
		return "command"
	case contentText:
		return "text"
	case contentLocation:
		return "location"
	case contentVoice:
		return "voice"
	default:
		return "unsupported"
	}
}

// classify определяет вид содержимого сообщения, первое совпадение выигрывает.
func classify(msg *tgbotapi.Message) contentKind {
	switch {
	case msg.IsCommand():
		return contentCommand
	case strings.TrimSpace(msg.Text) != "":
		return contentText
	case msg.Location != nil:
		return contentLocation
	case msg.Voice != nil:
		return contentVoice
	default:
		return contentUnsupported
	}
}
