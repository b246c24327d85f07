package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/leopold/internal/shop"
)

// fakeGemini answers generateContent calls with reply, recording the last request.
type fakeGemini struct {
	status int
	reply  string
	path   string
	key    string
	body   string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.path = r.URL.Path
	f.key = r.Header.Get("x-goog-api-key")
	raw, _ := io.ReadAll(r.Body)
	f.body = string(raw)

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	w.Write([]byte(f.reply))
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
		}},
	})
	return string(b)
}

func newTestClient(t *testing.T, f *fakeGemini) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL, APIKey: "k", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestRecommend(t *testing.T) {
	f := &fakeGemini{reply: textReply(`[{"toyId":"2","name":"Джип","reason":"Мяу"},{"toyId":"zzz","name":"?","reason":"?"}]`)}
	c := newTestClient(t, f)

	picks, err := c.Recommend(context.Background(), "5", "машинки", shop.SeedToys())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(picks) != 1 || picks[0].ToyID != "2" || picks[0].Reason != "Мяу" {
		t.Errorf("picks = %+v", picks)
	}

	if !strings.HasSuffix(f.path, "models/gemini-3-flash-preview:generateContent") {
		t.Errorf("path = %s", f.path)
	}
	if f.key != "k" {
		t.Errorf("api key header = %q", f.key)
	}
	for _, want := range []string{"responseMimeType", "application/json", "responseSchema", "toyId"} {
		if !strings.Contains(f.body, want) {
			t.Errorf("request body does not contain %q:\n%s", want, f.body)
		}
	}
	if !strings.Contains(f.body, "- Радіокерований Джип 4х4 (ID: 2, Категорія: cars, Вік: 6-12)") {
		t.Errorf("prompt does not list toys:\n%s", f.body)
	}
}

func TestRecommend_UnparseableOutput(t *testing.T) {
	c := newTestClient(t, &fakeGemini{reply: textReply("Мур, не знаю")})

	picks, err := c.Recommend(context.Background(), "5", "x", shop.SeedToys())
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if picks == nil || len(picks) != 0 {
		t.Errorf("picks = %#v, want empty list", picks)
	}
}

func TestStory(t *testing.T) {
	c := newTestClient(t, &fakeGemini{reply: textReply("  Жила-була лялька.  ")})
	story, err := c.Story(context.Background(), "Лялька")
	if err != nil || story != "Жила-була лялька." {
		t.Errorf("Story = %q, %v", story, err)
	}

	empty := newTestClient(t, &fakeGemini{reply: `{"candidates":[]}`})
	story, err = empty.Story(context.Background(), "Лялька")
	if err != nil || story != StoryFallback {
		t.Errorf("fallback Story = %q, %v", story, err)
	}
}

func TestSpeech(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	reply, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"role": "model", "parts": []any{map[string]any{
				"inlineData": map[string]any{
					"mimeType": "audio/L16;codec=pcm;rate=24000",
					"data":     base64.StdEncoding.EncodeToString(pcm),
				},
			}}},
		}},
	})
	f := &fakeGemini{reply: string(reply)}
	c := newTestClient(t, f)

	audio, err := c.Speech(context.Background(), "Привіт")
	if err != nil {
		t.Fatalf("Speech: %v", err)
	}
	if string(audio.Data) != string(pcm) || !strings.HasPrefix(audio.MimeType, "audio/L16") {
		t.Errorf("audio = %+v", audio)
	}
	if !strings.Contains(f.path, DefaultTTSModel) {
		t.Errorf("path = %s", f.path)
	}
	for _, want := range []string{"AUDIO", `"voiceName":"Kore"`} {
		if !strings.Contains(f.body, want) {
			t.Errorf("request body does not contain %s:\n%s", want, f.body)
		}
	}

	noAudio := newTestClient(t, &fakeGemini{reply: textReply("no audio")})
	if _, err := noAudio.Speech(context.Background(), "x"); !errors.Is(err, ErrNoAudio) {
		t.Errorf("missing audio error = %v", err)
	}
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t, &fakeGemini{
		status: http.StatusBadRequest,
		reply:  `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`,
	})
	_, err := c.Story(context.Background(), "x")
	if !errors.Is(err, ErrAPI) || !strings.Contains(err.Error(), "API key not valid") {
		t.Errorf("400 error = %v", err)
	}

	off, err := NewClient(context.Background(), Config{})
	if err != nil {
		t.Fatalf("NewClient without key: %v", err)
	}
	if off.Enabled() {
		t.Error("client without key reports enabled")
	}
	if _, err := off.Story(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("unconfigured error = %v", err)
	}
}
