// Package weatherbot - точка входа облачной функции Yandex Cloud Functions.
//
// Функция вызывается на каждое обновление Telegram (webhook) и всегда
// отвечает {"statusCode": 200, "body": ""}.
package weatherbot

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/gometeo/weatherbot/internal/app"
	"github.com/gometeo/weatherbot/internal/bot"
	"github.com/gometeo/weatherbot/internal/config"
	"github.com/gometeo/weatherbot/internal/logging"
)

// Ключ контекста, под которым среда выполнения передает IAM-токен
// сервисного аккаунта функции в виде JSON.
const runtimeTokenKey = "lambdaRuntimeTokenJson"

var (
	initOnce    sync.Once
	application *app.App
)

// Handler - обработчик облачной функции.
func Handler(ctx context.Context, event *bot.Event) (*bot.Response, error) {
	initOnce.Do(func() {
		cfg := config.Load()
		application = app.New(cfg, logging.New(os.Stdout, cfg.LogLevel, cfg.Env))
	})

	resp := application.Handler.Handle(ctx, event, bot.Invocation{AccessToken: accessToken(ctx)})
	return &resp, nil
}

func accessToken(ctx context.Context) string {
	raw, ok := ctx.Value(runtimeTokenKey).(string)
	if !ok || raw == "" {
		return ""
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return ""
	}
	return token.AccessToken
}
