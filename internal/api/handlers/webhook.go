package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gometeo/weatherbot/internal/bot"
)

// Telegram ограничивает размер обновления, 1 МБ с запасом
const maxUpdateSize = 1 << 20

type UpdateHandler interface {
	Handle(ctx context.Context, event *bot.Event, inv bot.Invocation) bot.Response
	HandleUpdate(ctx context.Context, body []byte, inv bot.Invocation) bot.Response
}

// Pinger - проверка доступности кэша для health check
type Pinger interface {
	Ping(ctx context.Context) error
}

type WebhookHandler struct {
	bot    UpdateHandler
	cache  Pinger
	logger *slog.Logger
}

// NewWebhookHandler: cache может быть nil, если кэш отключен.
func NewWebhookHandler(b UpdateHandler, cache Pinger, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		bot:    b,
		cache:  cache,
		logger: logger,
	}
}

// Webhook принимает объект Update от Telegram. Ответ всегда 200 с пустым телом,
// иначе Telegram будет повторять доставку.
func (h *WebhookHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err != nil {
		h.logger.Error("Ошибка чтения тела запроса", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Обработка не прерывается, если Telegram закрыл соединение
	ctx := context.WithoutCancel(r.Context())
	resp := h.bot.HandleUpdate(ctx, body, bot.Invocation{})

	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}

// Function принимает событие в формате облачной функции и возвращает его ответ.
func (h *WebhookHandler) Function(w http.ResponseWriter, r *http.Request) {
	var event bot.Event
	if err := json.NewDecoder(io.LimitReader(r.Body, 2*maxUpdateSize)).Decode(&event); err != nil {
		h.logger.Error("Неверный формат события", "error", err)
		sendJSON(w, http.StatusOK, bot.Ack())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	sendJSON(w, http.StatusOK, h.bot.Handle(ctx, &event, bot.Invocation{}))
}

// HealthCheck проверяет доступность сервисов
func (h *WebhookHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	// Проверка Redis
	switch {
	case h.cache == nil:
		health["redis"] = "disabled"
	default:
		if err := h.cache.Ping(ctx); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			h.logger.Error("Health check: Redis недоступен", "error", err)
		} else {
			health["redis"] = "healthy"
		}
	}

	status := http.StatusOK
	if health["status"] == "degraded" {
		status = http.StatusServiceUnavailable
	}

	sendJSON(w, status, health)
}

// Вспомогательные функции
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
