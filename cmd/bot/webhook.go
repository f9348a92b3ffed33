package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gometeo/weatherbot/internal/app"
	"github.com/gometeo/weatherbot/internal/telegram"
)

var (
	webhookURL         string
	webhookDropPending bool
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Управление webhook бота",
}

var webhookSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Зарегистрировать URL webhook",
	Example: `  weatherbot webhook set --url https://functions.yandexcloud.net/<function-id>
  WEBHOOK_URL=https://example.com/webhook weatherbot webhook set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := telegramClient()
		if err != nil {
			return err
		}

		link := webhookURL
		if link == "" {
			link = cfg.WebhookURL
		}
		if link == "" {
			return fmt.Errorf("нужен URL: используйте --url или WEBHOOK_URL")
		}

		if err := client.SetWebhook(link); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s webhook установлен: %s\n", color.GreenString("✓"), link)
		return nil
	},
}

var webhookInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Показать состояние webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := telegramClient()
		if err != nil {
			return err
		}

		info, err := client.WebhookInfo()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		url := info.URL
		if url == "" {
			url = color.YellowString("(не задан)")
		}
		fmt.Fprintf(out, "URL:                %s\n", url)
		fmt.Fprintf(out, "Ожидают доставки:   %d\n", info.PendingUpdateCount)
		if info.LastErrorMessage != "" {
			at := time.Unix(int64(info.LastErrorDate), 0).Format(time.RFC3339)
			fmt.Fprintf(out, "Последняя ошибка:   %s (%s)\n", color.RedString(info.LastErrorMessage), at)
		} else {
			fmt.Fprintf(out, "Последняя ошибка:   %s\n", color.GreenString("нет"))
		}
		return nil
	},
}

var webhookDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Удалить webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := telegramClient()
		if err != nil {
			return err
		}
		if err := client.DeleteWebhook(webhookDropPending); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s webhook удален\n", color.GreenString("✓"))
		return nil
	},
}

func init() {
	webhookSetCmd.Flags().StringVar(&webhookURL, "url", "", "URL webhook (по умолчанию WEBHOOK_URL)")
	webhookDeleteCmd.Flags().BoolVar(&webhookDropPending, "drop-pending", false, "сбросить недоставленные обновления")

	webhookCmd.AddCommand(webhookSetCmd)
	webhookCmd.AddCommand(webhookInfoCmd)
	webhookCmd.AddCommand(webhookDeleteCmd)
}

func telegramClient() (*telegram.Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("токен бота не задан: установите TELEGRAM_BOT_TOKEN")
	}
	return app.NewTelegram(cfg), nil
}
