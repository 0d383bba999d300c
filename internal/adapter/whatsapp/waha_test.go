package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestNormalizeChatID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"0712345678", "254712345678@c.us"},
		{"+254712345678", "254712345678@c.us"},
		{"254712345678", "254712345678@c.us"},
		{" 0712 345 678 ", "254712345678@c.us"},
		{"254712345678@c.us", "254712345678@c.us"},
		{"120363042@g.us", "120363042@g.us"},
	}
	for _, tt := range tests {
		if got := NormalizeChatID(tt.in); got != tt.want {
			t.Fatalf("NormalizeChatID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSend_CallSequence(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
		last  map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key on %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		mu.Lock()
		paths = append(paths, r.URL.Path)
		last = body
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", "chama", WithoutPauses())
	if err := c.Send(context.Background(), "0712345678", "Habari! Your contribution is due."); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := []string{"/api/sendSeen", "/api/startTyping", "/api/stopTyping", "/api/sendText"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("paths = %v", paths)
	}
	if last["chatId"] != "254712345678@c.us" || last["session"] != "chama" || !strings.HasPrefix(last["text"], "Habari") {
		t.Fatalf("sendText body = %v", last)
	}
}

func TestSend_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/startTyping" {
			http.Error(w, "session not started", http.StatusUnprocessableEntity)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", "", WithoutPauses()).Send(context.Background(), "0712345678", "hi")
	if err == nil || !strings.Contains(err.Error(), "start typing") || !strings.Contains(err.Error(), "422") {
		t.Fatalf("want typing failure with status, got %v", err)
	}
}

func TestSend_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewClient(srv.URL, "", "").Send(ctx, "0712345678", "hi"); err == nil {
		t.Fatal("want error on cancelled context")
	}
}
