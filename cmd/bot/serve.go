package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/gometeo/weatherbot/internal/api/handlers"
	"github.com/gometeo/weatherbot/internal/app"
)

const shutdownTimeout = 30 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP-сервер для webhook Telegram",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.HTTPPort = servePort
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "порт HTTP-сервера (по умолчанию HTTP_PORT)")
}

func serve(ctx context.Context) error {
	logger.Info("Запуск weatherbot",
		"port", cfg.HTTPPort,
		"redis", cfg.RedisAddr != "",
		"kafka", len(cfg.KafkaBrokers) > 0)
	if cfg.BotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN не задан, обновления будут только подтверждаться")
	}

	application := app.New(cfg, logger)
	defer application.Close()

	// Nil-указатель в интерфейсе не равен nil, передаем кэш только если он есть
	var pinger handlers.Pinger
	if application.Cache != nil {
		pinger = application.Cache
	}

	server := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     newRouter(handlers.NewWebhookHandler(application.Handler, pinger, logger)),
		ReadTimeout: 15 * time.Second,
		// Одно обновление - это до пяти внешних вызовов подряд
		WriteTimeout: 6*cfg.OutboundTimeout + 5*time.Second,
		IdleTimeout:  time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	logger.Info("Сервер слушает", "addr", server.Addr)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Сервер остановлен")
	return nil
}

func newRouter(h *handlers.WebhookHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/webhook", h.Webhook).Methods(http.MethodPost)
	router.HandleFunc("/function", h.Function).Methods(http.MethodPost)
	router.PathPrefix("/api/v1").Subrouter().
		HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	router.Use(accessLog(logger))
	return router
}

// accessLog пишет строку на каждый запрос; ответы 5xx - на уровне Warn.
func accessLog(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "HTTP запрос",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
