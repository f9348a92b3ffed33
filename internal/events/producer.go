package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/gometeo/weatherbot/internal/model"
)

// Producer публикует наблюдения погоды в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	// Ждать подтверждения от Kafka, что сообщение записано
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Kafka: %w", err)
	}

	return NewProducerWith(producer, topic, logger), nil
}

func NewProducerWith(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Producer {
	return &Producer{producer: producer, topic: topic, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, obs model.Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bytes, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("ошибка сериализации наблюдения: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(obs.City),
		Value: sarama.ByteEncoder(bytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("не удалось отправить наблюдение: %w", err)
	}

	p.logger.Debug("Наблюдение отправлено",
		"city", obs.City,
		"partition", partition,
		"offset", offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
