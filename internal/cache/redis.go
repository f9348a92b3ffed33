package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gometeo/weatherbot/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "weather:"
	dialTimeout = 5 * time.Second
)

// Options - параметры подключения к Redis.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// WeatherCache хранит нормализованные ответы провайдера погоды.
type WeatherCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// entry - то, что лежит в Redis под ключом запроса.
type entry struct {
	Conditions model.Conditions `json:"conditions"`
	CachedAt   time.Time        `json:"cached_at"`
}

func New(opts Options, logger *slog.Logger) (*WeatherCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dialTimeout,
	})

	c := &WeatherCache{client: client, ttl: opts.TTL, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("Кэш погоды подключен", "addr", opts.Addr, "ttl", opts.TTL)
	return c, nil
}

func (c *WeatherCache) Close() error {
	return c.client.Close()
}

// Ping проверяет, что Redis отвечает. Используется в health check.
func (c *WeatherCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis недоступен: %w", err)
	}
	return nil
}

func (c *WeatherCache) Set(ctx context.Context, key string, data model.Conditions) error {
	payload, err := json.Marshal(entry{Conditions: data, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

// Get возвращает nil без ошибки, если ключа нет или срок его жизни истек.
func (c *WeatherCache) Get(ctx context.Context, key string) (*model.Conditions, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", key, err)
	}

	var e entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("ошибка десериализации %s: %w", key, err)
	}

	c.logger.Debug("Погода из кэша", "key", key, "age", time.Since(e.CachedAt).Round(time.Second))
	return &e.Conditions, nil
}

// PlaceKey не различает регистр и крайние пробелы: "Москва" и " москва" - одна запись.
func PlaceKey(place string) string {
	return keyPrefix + "place:" + strings.ToLower(strings.TrimSpace(place))
}

// CoordKey округляет координаты до ~1 км, соседние точки делят запись.
func CoordKey(lat, lon float64) string {
	return fmt.Sprintf("%scoord:%.2f:%.2f", keyPrefix, lat, lon)
}

func QueryKey(q model.Query) string {
	if q.Location != nil {
		return CoordKey(q.Location.Latitude, q.Location.Longitude)
	}
	return PlaceKey(q.Place)
}
