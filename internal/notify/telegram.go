package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// Sender delivers notification messages and photos to an external messaging
// endpoint. Every call is a single best-effort attempt with a bounded
// timeout; callers decide what to do on failure.
type Sender interface {
	SendMessage(ctx context.Context, token, chatID, text string) error
	SendPhotoURL(ctx context.Context, token, chatID, caption, photoURL string) error
	SendPhotoFile(ctx context.Context, token, chatID, caption, filename string, photo io.Reader) error
}

// DefaultTelegramBaseURL is the production Telegram Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// Telegram implements Sender against the Telegram Bot API.
type Telegram struct {
	base   string
	client *http.Client
}

// NewTelegram creates a Telegram sender. An empty baseURL selects the
// production API; the per-call timeout bounds every outbound request so a
// hung endpoint cannot pin a worker.
func NewTelegram(baseURL string, timeout time.Duration) *Telegram {
	if baseURL == "" {
		baseURL = DefaultTelegramBaseURL
	}
	return &Telegram{
		base:   baseURL,
		client: &http.Client{Timeout: timeout},
	}
}

// SendMessage posts a Markdown-formatted text message to the chat.
func (t *Telegram) SendMessage(ctx context.Context, token, chatID, text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.methodURL(token, "sendMessage"), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req)
}

// SendPhotoURL posts a photo by absolute URL; Telegram fetches it remotely.
func (t *Telegram) SendPhotoURL(ctx context.Context, token, chatID, caption, photoURL string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"chat_id": chatID,
		"caption": caption,
		"photo":   photoURL,
	} {
		if err := mw.WriteField(k, v); err != nil {
			return errors.Wrap(err, "write form field")
		}
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close form")
	}

	return t.postForm(ctx, token, mw.FormDataContentType(), &buf)
}

// SendPhotoFile posts a photo by uploading its binary content.
func (t *Telegram) SendPhotoFile(ctx context.Context, token, chatID, caption, filename string, photo io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("chat_id", chatID); err != nil {
		return errors.Wrap(err, "write form field")
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return errors.Wrap(err, "write form field")
	}
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return errors.Wrap(err, "create photo part")
	}
	if _, err := io.Copy(part, photo); err != nil {
		return errors.Wrap(err, "copy photo")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close form")
	}

	return t.postForm(ctx, token, mw.FormDataContentType(), &buf)
}

func (t *Telegram) postForm(ctx context.Context, token, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.methodURL(token, "sendPhoto"), body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", contentType)

	return t.do(req)
}

func (t *Telegram) do(req *http.Request) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		// Telegram error payloads are short; keep a snippet for the log.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("telegram responded %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

func (t *Telegram) methodURL(token, method string) string {
	return fmt.Sprintf("%s/bot%s/%s", t.base, token, method)
}
