package main

import (
	"log/slog"
	"os"

	"github.com/gometeo/weatherbot/internal/config"
	"github.com/gometeo/weatherbot/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "weatherbot",
	Short: "Telegram-бот погоды",
	Long: `Telegram-бот, который отвечает сводкой погоды на название места,
геопозицию или голосовое сообщение.

Настройки берутся из переменных окружения (TELEGRAM_BOT_TOKEN,
OPENWEATHER_API_KEY, SPEECHKIT_API_KEY и другие).`,
	Example: `  # Запустить HTTP-сервер для webhook
  weatherbot serve --port 8080

  # Зарегистрировать webhook
  weatherbot webhook set --url https://example.com/webhook`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = logging.New(os.Stdout, cfg.LogLevel, cfg.Env)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webhookCmd)
}
