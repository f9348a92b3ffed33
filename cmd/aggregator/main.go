// Агрегатор читает наблюдения, опубликованные ботом, и сохраняет
// последнее наблюдение по каждому городу в Postgres.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gometeo/weatherbot/internal/config"
	"github.com/gometeo/weatherbot/internal/events"
	"github.com/gometeo/weatherbot/internal/logging"
	"github.com/gometeo/weatherbot/internal/storage"
)

const (
	dbAttempts   = 5
	dbRetryDelay = 3 * time.Second
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Агрегатор остановлен с ошибкой", "error", err)
		os.Exit(1)
	}
	logger.Info("Агрегатор остановлен")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS не задан")
	}

	store, err := connectStorage(ctx, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroup, saramaConfig)
	if err != nil {
		return err
	}
	logger.Info("Агрегатор запущен", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroup)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for err := range group.Errors() {
			logger.Error("Ошибка Kafka consumer", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		handler := events.NewObservationHandler(store, logger)
		// Consume возвращается при ребалансировке, поэтому вызываем его в цикле
		for ctx.Err() == nil {
			if err := group.Consume(ctx, []string{cfg.KafkaTopic}, handler); err != nil {
				logger.Error("Ошибка при чтении Kafka", "error", err)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка агрегатора...")

	err = group.Close()
	wg.Wait()
	return err
}

// connectStorage дает Postgres время подняться, если агрегатор стартует раньше базы.
func connectStorage(ctx context.Context, dsn string, logger *slog.Logger) (*storage.ObservationStorage, error) {
	var lastErr error
	for attempt := 1; attempt <= dbAttempts; attempt++ {
		store, err := storage.New(dsn, logger)
		if err == nil {
			return store, nil
		}
		lastErr = err
		logger.Warn("Postgres недоступен, повтор", "попытка", attempt, "всего", dbAttempts, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return nil, lastErr
}
