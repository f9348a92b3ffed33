package bot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gometeo/weatherbot/internal/model"
	"github.com/gometeo/weatherbot/internal/weather"
)

type Messenger interface {
	SendText(ctx context.Context, chatID int64, replyTo int, text string) error
	SendVoice(ctx context.Context, chatID int64, replyTo int, audio []byte) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type WeatherProvider interface {
	Current(ctx context.Context, q model.Query) (*model.Conditions, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, token string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, token string) ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, obs model.Observation) error
}

// Event - вызов облачной функции с HTTP-запросом от Telegram.
type Event struct {
	HTTPMethod      string            `json:"httpMethod"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// Response возвращается среде выполнения. Всегда 200, чтобы Telegram
// не присылал то же обновление повторно.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func Ack() Response {
	return Response{StatusCode: 200, Body: ""}
}

// Invocation - данные, которые среда выполнения передает вместе с вызовом.
type Invocation struct {
	// IAM-токен сервисного аккаунта функции, если он есть
	AccessToken string
}

type Options struct {
	BotToken    string
	Messenger   Messenger
	Weather     WeatherProvider
	Recognizer  Recognizer
	Synthesizer Synthesizer
	// Publisher необязателен
	Publisher Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// Handler обрабатывает одно обновление Telegram за вызов.
type Handler struct {
	botToken    string
	messenger   Messenger
	weather     WeatherProvider
	recognizer  Recognizer
	synthesizer Synthesizer
	publisher   Publisher
	logger      *slog.Logger
	now         func() time.Time
}

func New(opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		botToken:    opts.BotToken,
		messenger:   opts.Messenger,
		weather:     opts.Weather,
		recognizer:  opts.Recognizer,
		synthesizer: opts.Synthesizer,
		publisher:   opts.Publisher,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Handle разбирает событие облачной функции и обрабатывает тело запроса.
func (h *Handler) Handle(ctx context.Context, event *Event, inv Invocation) Response {
	if h.botToken == "" || event == nil {
		return Ack()
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			h.logger.Error("Не удалось декодировать тело запроса", "error", err)
			return Ack()
		}
		body = decoded
	}

	return h.HandleUpdate(ctx, body, inv)
}

// HandleUpdate обрабатывает JSON объекта Update. Результат всегда Ack().
func (h *Handler) HandleUpdate(ctx context.Context, body []byte, inv Invocation) (resp Response) {
	resp = Ack()

	// Без токена бот не может ответить, молча подтверждаем получение
	if h.botToken == "" {
		h.logger.Debug("Токен бота не задан, обновление пропущено")
		return resp
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Паника при обработке обновления", "panic", r)
		}
	}()

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.logger.Error("Битый JSON обновления", "error", err)
		return resp
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		h.logger.Debug("Обновление без сообщения", "update_id", update.UpdateID)
		return resp
	}

	start := h.now()
	kind := classify(msg)
	h.logger.Info("Получено сообщение",
		"update_id", update.UpdateID,
		"chat_id", msg.Chat.ID,
		"kind", kind.String())

	h.dispatch(ctx, msg, kind, inv)

	h.logger.Info("Сообщение обработано",
		"update_id", update.UpdateID,
		"kind", kind.String(),
		"duration_ms", h.now().Sub(start).Milliseconds())
	return resp
}

type replyTarget struct {
	chatID  int64
	replyTo int
}

func (h *Handler) dispatch(ctx context.Context, msg *tgbotapi.Message, kind contentKind, inv Invocation) {
	to := replyTarget{chatID: msg.Chat.ID, replyTo: msg.MessageID}

	switch kind {
	case contentText:
		h.replyWeather(ctx, to, model.PlaceQuery(strings.TrimSpace(msg.Text)), false, inv)
	case contentLocation:
		h.replyWeather(ctx, to, model.LocationQuery(msg.Location.Latitude, msg.Location.Longitude), false, inv)
	case contentVoice:
		h.handleVoice(ctx, to, msg.Voice, inv)
	case contentCommand, contentUnsupported:
		h.sendText(ctx, to, helpText)
	}
}

func (h *Handler) handleVoice(ctx context.Context, to replyTarget, voice *tgbotapi.Voice, inv Invocation) {
	if voice.Duration > MaxVoiceDuration {
		h.sendText(ctx, to, voiceTooLongText)
		return
	}

	audio, err := h.messenger.DownloadFile(ctx, voice.FileID)
	if err != nil {
		h.logger.Error("Не удалось скачать голосовое сообщение", "file_id", voice.FileID, "error", err)
		h.sendText(ctx, to, voiceFetchFailed)
		return
	}

	text, err := h.recognizer.Recognize(ctx, audio, inv.AccessToken)
	if err != nil {
		h.logger.Warn("Голосовое сообщение не распознано", "error", err)
		h.sendText(ctx, to, voiceNotRecognized)
		return
	}

	h.logger.Debug("Голосовое сообщение распознано", "text", text)
	h.replyWeather(ctx, to, model.PlaceQuery(text), true, inv)
}

// replyWeather запрашивает погоду и отвечает текстом или голосом.
func (h *Handler) replyWeather(ctx context.Context, to replyTarget, q model.Query, asVoice bool, inv Invocation) {
	conditions, err := h.weather.Current(ctx, q)
	if err != nil {
		h.logger.Warn("Не удалось получить погоду", "query", q.String(), "error", err)
		h.sendText(ctx, to, lookupFailureText(q, err))
		return
	}

	report := weather.FormatReport(conditions)

	if asVoice {
		h.replyVoice(ctx, to, report, inv)
	} else {
		h.sendText(ctx, to, report)
	}

	h.publish(ctx, conditions)
}

func (h *Handler) replyVoice(ctx context.Context, to replyTarget, report string, inv Invocation) {
	audio, err := h.synthesizer.Synthesize(ctx, report, inv.AccessToken)
	if err != nil {
		h.logger.Error("Не удалось синтезировать речь", "error", err)
		h.sendText(ctx, to, synthesisFailedText)
		return
	}

	if err := h.messenger.SendVoice(ctx, to.chatID, to.replyTo, audio); err != nil {
		h.logger.Error("Не удалось отправить голосовой ответ", "chat_id", to.chatID, "error", err)
	}
}

func (h *Handler) sendText(ctx context.Context, to replyTarget, text string) {
	if err := h.messenger.SendText(ctx, to.chatID, to.replyTo, text); err != nil {
		h.logger.Error("Не удалось отправить ответ", "chat_id", to.chatID, "error", err)
	}
}

func (h *Handler) publish(ctx context.Context, c *model.Conditions) {
	if h.publisher == nil {
		return
	}
	// Из кэша приходит то же время измерения, повторная запись его не молодит
	obs, ok := model.NewObservation(c, weather.ProviderName)
	if !ok {
		h.logger.Debug("Наблюдение не публикуется", "place", c.Place, "observed_at", c.ObservedAt)
		return
	}
	if err := h.publisher.Publish(ctx, obs); err != nil {
		h.logger.Warn("Не удалось опубликовать наблюдение", "city", obs.City, "error", err)
	}
}

func lookupFailureText(q model.Query, err error) string {
	if errors.Is(err, weather.ErrNotFound) {
		if q.Location != nil {
			return locationNotFoundText
		}
		return fmt.Sprintf(placeNotFoundFormat, q.Place)
	}
	return weatherUnavailableText
}
