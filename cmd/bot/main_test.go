package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestWebhookCommands(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		calls = append(calls, r.URL.Path+"?"+r.PostForm.Encode())
		mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/setWebhook"), strings.HasSuffix(r.URL.Path, "/deleteWebhook"):
			io.WriteString(w, `{"ok":true,"result":true}`)
		case strings.HasSuffix(r.URL.Path, "/getWebhookInfo"):
			io.WriteString(w, `{"ok":true,"result":{"url":"https://example.com/webhook","pending_update_count":3}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_API_ENDPOINT", srv.URL+"/bot%s/%s")
	t.Setenv("WEBHOOK_URL", "https://example.com/webhook")

	tests := []struct {
		name      string
		args      []string
		wantCall  string
		wantParam string
		wantOut   string
	}{
		{"set from env", []string{"webhook", "set"}, "/bot123:abc/setWebhook?", "url=https%3A%2F%2Fexample.com%2Fwebhook", "webhook установлен"},
		{"info", []string{"webhook", "info"}, "/bot123:abc/getWebhookInfo?", "", "Ожидают доставки:   3"},
		{"delete", []string{"webhook", "delete", "--drop-pending"}, "/bot123:abc/deleteWebhook?", "drop_pending_updates=true", "webhook удален"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mu.Lock()
			calls = nil
			mu.Unlock()
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)

			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute(%v) error = %v", tt.args, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if len(calls) != 1 || !strings.HasPrefix(calls[0], tt.wantCall) || !strings.Contains(calls[0], tt.wantParam) {
				t.Errorf("calls = %v, want one %s with %q", calls, tt.wantCall, tt.wantParam)
			}
			if !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestWebhookSetRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"webhook", "set", "--url", "https://example.com/webhook"})

	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error without bot token")
	}
}

func TestAccessLogRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	h := accessLog(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=503") || !strings.Contains(out, "path=/api/v1/health") {
		t.Errorf("log = %q", out)
	}
}
