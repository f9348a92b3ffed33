package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gometeo/weatherbot/internal/model"
	_ "github.com/jackc/pgx/v5/stdlib" // Регистрируем драйвер pgx
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather_observations (
		place VARCHAR(100) PRIMARY KEY,
		temp DOUBLE PRECISION,
		condition VARCHAR(255),
		provider VARCHAR(100),
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		observed_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ
	);`

const upsertQuery = `
	INSERT INTO weather_observations (place, temp, condition, provider, lat, lon, observed_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (place) DO UPDATE
	SET temp = EXCLUDED.temp,
	    condition = EXCLUDED.condition,
	    provider = EXCLUDED.provider,
	    lat = EXCLUDED.lat,
	    lon = EXCLUDED.lon,
	    observed_at = EXCLUDED.observed_at,
	    updated_at = EXCLUDED.updated_at
	WHERE weather_observations.observed_at <= EXCLUDED.observed_at;
`

type ObservationStorage struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(dsn string, logger *slog.Logger) (*ObservationStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Автоматическая миграция (создание таблицы) для простоты
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания таблицы: %w", err)
	}

	return &ObservationStorage{db: db, logger: logger}, nil
}

func (s *ObservationStorage) Close() {
	s.db.Close()
}

// Save обновляет наблюдение для места или создает новую запись (Upsert).
// Более старое наблюдение не перезаписывает более новое.
func (s *ObservationStorage) Save(ctx context.Context, obs model.Observation) error {
	_, err := s.db.ExecContext(ctx, upsertQuery,
		obs.City,
		obs.Temp,
		obs.Condition,
		obs.Provider,
		obs.Latitude,
		obs.Longitude,
		obs.Timestamp,
		time.Now(), // Записываем время сохранения
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения погоды для %s: %w", obs.City, err)
	}

	s.logger.Debug("Наблюдение записано", "city", obs.City)
	return nil
}
