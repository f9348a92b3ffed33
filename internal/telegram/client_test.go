package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const testToken = "123:abc"

type recorder struct {
	mu      sync.Mutex
	methods []string
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.methods)
}

func newTestClient(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.methods = append(rec.methods, r.URL.Path)
		rec.mu.Unlock()
		h, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(testToken, srv.URL+"/bot%s/%s", srv.URL+"/file/bot%s/%s", 5*time.Second)
	return c, rec
}

func TestSendText(t *testing.T) {
	c, rec := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/sendMessage": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
				return
			}
			if got := r.PostForm.Get("chat_id"); got != "42" {
				t.Errorf("chat_id = %q", got)
			}
			if got := r.PostForm.Get("reply_to_message_id"); got != "7" {
				t.Errorf("reply_to_message_id = %q", got)
			}
			if got := r.PostForm.Get("text"); got != "Ясно." {
				t.Errorf("text = %q", got)
			}
			io.WriteString(w, `{"ok":true,"result":{"message_id":8,"date":0,"chat":{"id":42,"type":"private"}}}`)
		},
	})

	if err := c.SendText(context.Background(), 42, 7, "Ясно."); err != nil {
		t.Fatalf("SendText() error = %v", err)
	}
	if n := rec.count(); n != 1 {
		t.Errorf("requests = %d, want one", n)
	}
}

func TestSendTextAPIError(t *testing.T) {
	c, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/sendMessage": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
		},
	})

	err := c.SendText(context.Background(), 42, 7, "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error = %v, want chat not found", err)
	}
}

func TestSendVoice(t *testing.T) {
	c, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/sendVoice": func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
				return
			}
			if got := r.FormValue("chat_id"); got != "42" {
				t.Errorf("chat_id = %q", got)
			}
			if got := r.FormValue("reply_to_message_id"); got != "7" {
				t.Errorf("reply_to_message_id = %q", got)
			}
			f, _, err := r.FormFile("voice")
			if err != nil {
				t.Errorf("voice part: %v", err)
				return
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			if string(data) != "OggS-audio" {
				t.Errorf("voice = %q", data)
			}
			io.WriteString(w, `{"ok":true,"result":{"message_id":9,"date":0,"chat":{"id":42,"type":"private"}}}`)
		},
	})

	if err := c.SendVoice(context.Background(), 42, 7, []byte("OggS-audio")); err != nil {
		t.Fatalf("SendVoice() error = %v", err)
	}
}

func TestDownloadFile(t *testing.T) {
	c, rec := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/getFile": func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if got := r.PostForm.Get("file_id"); got != "voice-1" {
				t.Errorf("file_id = %q", got)
			}
			io.WriteString(w, `{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/file_1.oga"}}`)
		},
		"/file/bot" + testToken + "/voice/file_1.oga": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "OggS-user")
		},
	})

	data, err := c.DownloadFile(context.Background(), "voice-1")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if string(data) != "OggS-user" {
		t.Errorf("data = %q", data)
	}
	if n := rec.count(); n != 2 {
		t.Errorf("requests = %d, want getFile and download", n)
	}
}

func TestDownloadFileMissingPath(t *testing.T) {
	c, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/getFile": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok":true,"result":{"file_id":"voice-1"}}`)
		},
	})

	if _, err := c.DownloadFile(context.Background(), "voice-1"); err == nil {
		t.Fatal("expected error for empty file_path")
	}
}

func TestDownloadFileNotFound(t *testing.T) {
	c, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/getFile": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok":true,"result":{"file_id":"voice-1","file_path":"voice/gone.oga"}}`)
		},
		"/file/bot" + testToken + "/voice/gone.oga": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
	})

	if _, err := c.DownloadFile(context.Background(), "voice-1"); err == nil {
		t.Fatal("expected error for 404 download")
	}
}

func TestWebhookManagement(t *testing.T) {
	c, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/bot" + testToken + "/setWebhook": func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if got := r.PostForm.Get("url"); got != "https://example.com/webhook" {
				t.Errorf("url = %q", got)
			}
			io.WriteString(w, `{"ok":true,"result":true,"description":"Webhook was set"}`)
		},
		"/bot" + testToken + "/getWebhookInfo": func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok":true,"result":{"url":"https://example.com/webhook","pending_update_count":2,"last_error_message":"timeout"}}`)
		},
		"/bot" + testToken + "/deleteWebhook": func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if got := r.PostForm.Get("drop_pending_updates"); got != "true" {
				t.Errorf("drop_pending_updates = %q", got)
			}
			io.WriteString(w, `{"ok":true,"result":true}`)
		},
	})

	if err := c.SetWebhook("https://example.com/webhook"); err != nil {
		t.Fatalf("SetWebhook() error = %v", err)
	}

	info, err := c.WebhookInfo()
	if err != nil {
		t.Fatalf("WebhookInfo() error = %v", err)
	}
	if info.URL != "https://example.com/webhook" || info.PendingUpdateCount != 2 || info.LastErrorMessage != "timeout" {
		t.Errorf("info = %+v", info)
	}

	if err := c.DeleteWebhook(true); err != nil {
		t.Fatalf("DeleteWebhook() error = %v", err)
	}
}
