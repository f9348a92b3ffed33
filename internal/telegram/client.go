package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Лимит размера скачиваемого файла, голосовое до 30 секунд значительно меньше
const maxFileSize = 20 << 20

// Client - обертка над tgbotapi для ответов пользователю и управления webhook.
type Client struct {
	bot          *tgbotapi.BotAPI
	httpClient   *http.Client
	fileEndpoint string
}

// NewClient создает клиента без запроса getMe, чтобы холодный старт
// функции не делал лишних сетевых вызовов.
func NewClient(token, apiEndpoint, fileEndpoint string, timeout time.Duration) *Client {
	httpClient := &http.Client{Timeout: timeout}

	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: httpClient,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(apiEndpoint)

	return &Client{
		bot:          bot,
		httpClient:   httpClient,
		fileEndpoint: fileEndpoint,
	}
}

// SendText отвечает текстом на сообщение replyTo.
func (c *Client) SendText(ctx context.Context, chatID int64, replyTo int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка sendMessage: %w", err)
	}
	return nil
}

// SendVoice отвечает голосовым сообщением (OGG/Opus) на сообщение replyTo.
func (c *Client) SendVoice(ctx context.Context, chatID int64, replyTo int, audio []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "reply.ogg", Bytes: audio})
	voice.ReplyToMessageID = replyTo

	if _, err := c.bot.Send(voice); err != nil {
		return fmt.Errorf("ошибка sendVoice: %w", err)
	}
	return nil
}

// DownloadFile получает путь файла через getFile и скачивает его содержимое.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("ошибка getFile: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("getFile не вернул путь для %s", fileID)
	}

	link := fmt.Sprintf(c.fileEndpoint, c.bot.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса файла: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("скачивание файла вернуло статус %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	return data, nil
}

// SetWebhook регистрирует URL, на который Telegram будет присылать обновления.
func (c *Client) SetWebhook(link string) error {
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("некорректный URL webhook: %w", err)
	}
	if _, err := c.bot.Request(wh); err != nil {
		return fmt.Errorf("ошибка setWebhook: %w", err)
	}
	return nil
}

func (c *Client) DeleteWebhook(dropPending bool) error {
	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
		return fmt.Errorf("ошибка deleteWebhook: %w", err)
	}
	return nil
}

func (c *Client) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	info, err := c.bot.GetWebhookInfo()
	if err != nil {
		return info, fmt.Errorf("ошибка getWebhookInfo: %w", err)
	}
	return info, nil
}
