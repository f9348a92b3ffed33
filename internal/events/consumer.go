package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gometeo/weatherbot/internal/model"
)

type Saver interface {
	Save(ctx context.Context, obs model.Observation) error
}

// ObservationHandler читает наблюдения из Kafka и сохраняет их в хранилище.
type ObservationHandler struct {
	logger *slog.Logger
	store  Saver
}

func NewObservationHandler(store Saver, logger *slog.Logger) *ObservationHandler {
	return &ObservationHandler{logger: logger, store: store}
}

func (h *ObservationHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *ObservationHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *ObservationHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var obs model.Observation
		if err := json.Unmarshal(msg.Value, &obs); err != nil {
			// Битое сообщение не станет лучше при повторном чтении
			h.logger.Error("Битый JSON", "offset", msg.Offset, "error", err)
			sess.MarkMessage(msg, "")
			continue
		}
		// Без места все такие записи попали бы в одну строку таблицы
		if obs.City == "" || obs.Timestamp.IsZero() {
			h.logger.Warn("Наблюдение без места или времени пропущено", "offset", msg.Offset)
			sess.MarkMessage(msg, "")
			continue
		}

		// Используем контекст сессии, чтобы отменить запись, если Kafka отвалилась
		if err := h.store.Save(sess.Context(), obs); err != nil {
			h.logger.Error("Ошибка записи в БД", "city", obs.City, "error", err)
			// Если БД лежит, не помечаем сообщение как прочитанное,
			// чтобы Kafka отдала его снова после ребалансировки.
			continue
		}

		h.logger.Info("Наблюдение сохранено в БД",
			"city", obs.City,
			"temp", obs.Temp)

		sess.MarkMessage(msg, "")
	}
	return nil
}
