package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	telegramAPIBase = "https://api.telegram.org"
	maxSendAttempts = 3
)

// Telegram posts messages to a channel through the Bot API. Failed sends
// are retried with exponential backoff.
type Telegram struct {
	token       string
	chatID      string
	baseURL     string
	backoffBase time.Duration
	httpClient  *http.Client
	log         zerolog.Logger
}

func NewTelegram(token, chatID string, logger zerolog.Logger) *Telegram {
	return &Telegram{
		token:       token,
		chatID:      chatID,
		baseURL:     telegramAPIBase,
		backoffBase: time.Second,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         logger.With().Str("component", "telegram").Logger(),
	}
}

// Enabled reports whether credentials are configured.
func (t *Telegram) Enabled() bool {
	return t.token != "" && t.chatID != ""
}

type inlineButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func sourceKeyboard(sourceURL, sourceName string) *inlineKeyboard {
	if sourceURL == "" {
		return nil
	}
	text := "📖 Leer fuente"
	if sourceName != "" {
		text = "📖 Leer en " + sourceName
	}
	return &inlineKeyboard{InlineKeyboard: [][]inlineButton{{{Text: text, URL: sourceURL}}}}
}

// SendMessage sends an HTML text message and returns the message ID.
func (t *Telegram) SendMessage(ctx context.Context, text, sourceURL, sourceName string) (int64, error) {
	payload := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if kb := sourceKeyboard(sourceURL, sourceName); kb != nil {
		payload["reply_markup"] = kb
	}
	return t.withRetries(ctx, "sendMessage", func(ctx context.Context) (int64, error) {
		return t.postJSON(ctx, "sendMessage", payload)
	})
}

// SendPhoto uploads an image with an HTML caption and returns the message
// ID. Captions past the API limit are cut by the caller.
func (t *Telegram) SendPhoto(ctx context.Context, imageData []byte, caption, sourceURL, sourceName string) (int64, error) {
	return t.withRetries(ctx, "sendPhoto", func(ctx context.Context) (int64, error) {
		return t.postPhoto(ctx, imageData, caption, sourceURL, sourceName)
	})
}

func (t *Telegram) withRetries(ctx context.Context, method string, send func(context.Context) (int64, error)) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		messageID, err := send(ctx)
		if err == nil {
			t.log.Info().Str("method", method).Int64("message_id", messageID).Int("attempt", attempt).Msg("Message sent")
			return messageID, nil
		}
		lastErr = err
		t.log.Warn().Err(err).Str("method", method).Int("attempt", attempt).Int("max_attempts", maxSendAttempts).Msg("Send failed")

		if attempt < maxSendAttempts {
			wait := t.backoffBase * time.Duration(1<<attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}
	}
	return 0, fmt.Errorf("%s failed after %d attempts: %w", method, maxSendAttempts, lastErr)
}

func (t *Telegram) postJSON(ctx context.Context, method string, payload map[string]any) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req)
}

func (t *Telegram) postPhoto(ctx context.Context, imageData []byte, caption, sourceURL, sourceName string) (int64, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"chat_id":    t.chatID,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if kb := sourceKeyboard(sourceURL, sourceName); kb != nil {
		markup, err := json.Marshal(kb)
		if err != nil {
			return 0, fmt.Errorf("encoding keyboard: %w", err)
		}
		fields["reply_markup"] = string(markup)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return 0, fmt.Errorf("writing form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("photo", "image.jpg")
	if err != nil {
		return 0, fmt.Errorf("creating photo part: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return 0, fmt.Errorf("writing photo: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) (int64, error) {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("reading response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if !parsed.OK {
		return 0, fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, parsed.Description)
	}
	return parsed.Result.MessageID, nil
}
