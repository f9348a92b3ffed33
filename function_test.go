package weatherbot

import (
	"context"
	"testing"

	"github.com/gometeo/weatherbot/internal/bot"
)

func TestAccessToken(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"runtime token", `{"access_token":"t1.abc","expires_in":42000,"token_type":"Bearer"}`, "t1.abc"},
		{"missing", nil, ""},
		{"not a string", 42, ""},
		{"broken json", `{"access_token":`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.value != nil {
				ctx = context.WithValue(ctx, runtimeTokenKey, tt.value)
			}
			if got := accessToken(ctx); got != tt.want {
				t.Errorf("accessToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandlerWithoutTokenAcknowledges(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	body := `{"update_id":1,"message":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"London"}}`
	resp, err := Handler(context.Background(), &bot.Event{HTTPMethod: "POST", Body: body})
	if err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if *resp != bot.Ack() {
		t.Errorf("response = %+v, want ack", *resp)
	}
}
