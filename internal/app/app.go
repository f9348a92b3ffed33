package app

import (
	"log/slog"

	"github.com/gometeo/weatherbot/internal/bot"
	"github.com/gometeo/weatherbot/internal/cache"
	"github.com/gometeo/weatherbot/internal/config"
	"github.com/gometeo/weatherbot/internal/events"
	"github.com/gometeo/weatherbot/internal/speech"
	"github.com/gometeo/weatherbot/internal/telegram"
	"github.com/gometeo/weatherbot/internal/weather"
)

// App - собранный обработчик и подключения, которые нужно закрыть при остановке.
type App struct {
	Handler *bot.Handler
	// Cache равен nil, если Redis не настроен или недоступен
	Cache    *cache.WeatherCache
	producer *events.Producer
	logger   *slog.Logger
}

// New собирает обработчик по конфигурации. Redis и Kafka необязательны:
// если они недоступны, бот работает без кэша и публикации.
func New(cfg *config.Config, logger *slog.Logger) *App {
	a := &App{logger: logger}

	var provider bot.WeatherProvider = weather.NewOpenWeather(cfg.WeatherAPIKey, cfg.WeatherURL, cfg.OutboundTimeout)

	if cfg.RedisAddr != "" {
		weatherCache, err := cache.New(cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, logger)
		if err != nil {
			logger.Warn("Кэш погоды отключен", "error", err)
		} else {
			a.Cache = weatherCache
			provider = cache.NewCachedProvider(provider, weatherCache, logger)
		}
	}

	var publisher bot.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Warn("Публикация наблюдений отключена", "error", err)
		} else {
			a.producer = producer
			publisher = producer
		}
	}

	sk := speech.New(speech.Config{
		STTURL:   cfg.STTURL,
		TTSURL:   cfg.TTSURL,
		FolderID: cfg.SpeechFolderID,
		APIKey:   cfg.SpeechAPIKey,
		IAMToken: cfg.SpeechIAMToken,
		Voice:    cfg.TTSVoice,
		Emotion:  cfg.TTSEmotion,
		Timeout:  cfg.OutboundTimeout,
	})

	a.Handler = bot.New(bot.Options{
		BotToken:    cfg.BotToken,
		Messenger:   NewTelegram(cfg),
		Weather:     provider,
		Recognizer:  sk,
		Synthesizer: sk,
		Publisher:   publisher,
		Logger:      logger,
	})

	return a
}

func NewTelegram(cfg *config.Config) *telegram.Client {
	return telegram.NewClient(cfg.BotToken, cfg.TelegramAPIEndpoint, cfg.TelegramFileEndpoint, cfg.OutboundTimeout)
}

func (a *App) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Ошибка при закрытии продюсера", "error", err)
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.logger.Error("Ошибка при закрытии Redis", "error", err)
		}
	}
}
