package cache

import (
	"context"
	"log/slog"

	"github.com/gometeo/weatherbot/internal/model"
)

type Provider interface {
	Current(ctx context.Context, q model.Query) (*model.Conditions, error)
}

type Store interface {
	Get(ctx context.Context, key string) (*model.Conditions, error)
	Set(ctx context.Context, key string, data model.Conditions) error
}

// CachedProvider отдает ответ провайдера из кэша, если он есть.
// Ошибки кэша не критичны, ошибки провайдера не кэшируются.
type CachedProvider struct {
	next   Provider
	store  Store
	logger *slog.Logger
}

func NewCachedProvider(next Provider, store Store, logger *slog.Logger) *CachedProvider {
	return &CachedProvider{next: next, store: store, logger: logger}
}

func (p *CachedProvider) Current(ctx context.Context, q model.Query) (*model.Conditions, error) {
	key := QueryKey(q)

	cached, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Error("Ошибка чтения из кэша", "key", key, "error", err)
		// Продолжаем - кэш не критичен
	}
	if cached != nil {
		return cached, nil
	}

	conditions, err := p.next.Current(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, key, *conditions); err != nil {
		p.logger.Warn("Не удалось сохранить в кэш", "key", key, "error", err)
	}

	return conditions, nil
}
