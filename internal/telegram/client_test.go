package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_GetUpdates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/getUpdates" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %s", got)
		}
		if got := r.URL.Query().Get("allowed_updates"); got != `["message","channel_post"]` {
			t.Errorf("allowed_updates = %s", got)
		}
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":1,"message":{"message_id":10,"date":1700000000,"text":"hi"}},
			{"update_id":2,"channel_post":{"message_id":11,"date":1700000001,"text":"post"}},
			{"update_id":3}
		]}`))
	}))
	defer srv.Close()

	updates, err := NewClient(srv.URL, time.Second).GetUpdates(context.Background(), " TOKEN ")
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("got %d updates", len(updates))
	}
	if p := updates[0].Post(); p == nil || p.Text != "hi" || p.MessageID != 10 {
		t.Errorf("message = %+v", p)
	}
	if p := updates[1].Post(); p == nil || p.Text != "post" || p.Date != 1700000001 {
		t.Errorf("channel post = %+v", p)
	}
	if updates[2].Post() != nil {
		t.Error("empty update should have no post")
	}
}

func TestClient_SendMessage(t *testing.T) {
	var gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botT/sendMessage" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotChat = r.URL.Query().Get("chat_id")
		gotText = r.URL.Query().Get("text")
		w.Write([]byte(`{"ok":true,"result":{"message_id":5}}`))
	}))
	defer srv.Close()

	text := "Клієнт: Іван & Ко\nЗАГАЛЬНА СУМА: 900 грн"
	if err := NewClient(srv.URL, time.Second).SendMessage(context.Background(), "T", "-100123", text); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if gotChat != "-100123" || gotText != text {
		t.Errorf("chat = %q, text = %q", gotChat, gotText)
	}
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/botBAD/"):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
		case strings.HasPrefix(r.URL.Path, "/botHTML/"):
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`<html>bad gateway</html>`))
		default:
			w.Write([]byte(`{"ok":false}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	err := c.SendMessage(ctx, "BAD", "1", "x")
	if !errors.Is(err, ErrAPI) || !strings.Contains(err.Error(), "Unauthorized") {
		t.Errorf("401 error = %v", err)
	}
	if _, err := c.GetUpdates(ctx, "HTML"); !errors.Is(err, ErrAPI) || !strings.Contains(err.Error(), "502") {
		t.Errorf("502 error = %v", err)
	}
	if _, err := c.GetUpdates(ctx, "OTHER"); !errors.Is(err, ErrAPI) {
		t.Errorf("ok=false error = %v", err)
	}
	if err := c.SendMessage(ctx, "", "1", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing token = %v", err)
	}
	if err := c.SendMessage(ctx, "T", " ", "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("missing chat = %v", err)
	}
}

func TestClient_TransportErrorHidesToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := NewClient(base, time.Second).GetUpdates(context.Background(), "SECRET-TOKEN")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "SECRET-TOKEN") {
		t.Errorf("error leaks token: %v", err)
	}
}
