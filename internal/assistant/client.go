// Package assistant talks to the Gemini API on behalf of Leopold the cat:
// toy recommendations, short tales about a toy and spoken audio.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Defaults for Config fields left empty.
const (
	DefaultBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultTextModel = "gemini-3-flash-preview"
	DefaultTTSModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice     = "Kore"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("assistant API key is not configured")

	// ErrAPI wraps error responses from the model API.
	ErrAPI = errors.New("assistant API error")

	// ErrNoAudio is returned when a speech response carries no audio part.
	ErrNoAudio = errors.New("assistant returned no audio")
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	TextModel string
	TTSModel  string
	Voice     string
	Timeout   time.Duration
}

// Client calls generateContent on the configured models.
type Client struct {
	cfg    Config
	models *genai.Models // nil without an API key
}

// NewClient creates a client. Without an API key the client is created
// disabled and every call returns ErrNotConfigured.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = DefaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	c := &Client{cfg: cfg}
	if cfg.APIKey == "" {
		return c, nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL + "/",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.models = gc.Models
	return c, nil
}

// Enabled reports whether an API key is set.
func (c *Client) Enabled() bool { return c.models != nil }

func (c *Client) generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s request failed: %w", model, err)
		}
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s returned %d: %s", ErrAPI, model, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%s request failed: %w", model, err)
	}
	return resp, nil
}

// firstParts returns the parts of the first candidate.
func firstParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, p := range firstParts(resp) {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// Audio is synthesized speech.
type Audio struct {
	MimeType string // e.g. audio/L16;codec=pcm;rate=24000
	Data     []byte
}

// Speech reads text aloud with the configured prebuilt voice.
func (c *Client) Speech(ctx context.Context, text string) (Audio, error) {
	resp, err := c.generate(ctx, c.cfg.TTSModel, text, &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	})
	if err != nil {
		return Audio{}, err
	}

	for _, p := range firstParts(resp) {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		return Audio{MimeType: p.InlineData.MIMEType, Data: p.InlineData.Data}, nil
	}
	return Audio{}, ErrNoAudio
}
