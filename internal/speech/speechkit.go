package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNoResult = errors.New("сервис распознавания не вернул текст")

type Config struct {
	STTURL   string
	TTSURL   string
	FolderID string
	APIKey   string
	IAMToken string
	Voice    string
	Emotion  string
	Timeout  time.Duration
}

// SpeechKit - клиент Yandex SpeechKit v1: распознавание и синтез речи.
type SpeechKit struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *SpeechKit {
	cfg.STTURL = strings.TrimRight(cfg.STTURL, "/")
	cfg.TTSURL = strings.TrimRight(cfg.TTSURL, "/")
	return &SpeechKit{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type recognizeResponse struct {
	Result       string `json:"result"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Recognize отправляет OGG/Opus и возвращает распознанный текст.
// Непустой token используется как IAM-токен вызова.
func (s *SpeechKit) Recognize(ctx context.Context, audio []byte, token string) (string, error) {
	params := url.Values{}
	params.Set("lang", "ru-RU")
	if s.cfg.FolderID != "" {
		params.Set("folderId", s.cfg.FolderID)
	}
	endpoint := s.cfg.STTURL + "/speech/v1/stt:recognize?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса распознавания: %w", err)
	}
	req.Header.Set("Authorization", s.authorization(token))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка запроса распознавания: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ошибка чтения ответа распознавания: %w", err)
	}

	var data recognizeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("ошибка разбора ответа распознавания (статус %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("распознавание вернуло статус %d: %s %s", resp.StatusCode, data.ErrorCode, data.ErrorMessage)
	}

	text := strings.TrimSpace(data.Result)
	if text == "" {
		return "", ErrNoResult
	}

	return text, nil
}

// Synthesize озвучивает текст и возвращает аудио в формате OGG/Opus.
func (s *SpeechKit) Synthesize(ctx context.Context, text, token string) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("lang", "ru-RU")
	form.Set("voice", s.cfg.Voice)
	form.Set("emotion", s.cfg.Emotion)
	form.Set("format", "oggopus")
	if s.cfg.FolderID != "" {
		form.Set("folderId", s.cfg.FolderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.TTSURL+"/speech/v1/tts:synthesize", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса синтеза: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", s.authorization(token))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса синтеза: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения аудио: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("синтез вернул статус %d: %s", resp.StatusCode, string(audio))
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("синтез вернул пустое аудио")
	}

	return audio, nil
}

func (s *SpeechKit) authorization(token string) string {
	switch {
	case token != "":
		return "Bearer " + token
	case s.cfg.APIKey != "":
		return "Api-Key " + s.cfg.APIKey
	default:
		return "Bearer " + s.cfg.IAMToken
	}
}
