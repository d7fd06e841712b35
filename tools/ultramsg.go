package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultUltraMsgBaseURL = "https://api.ultramsg.com"
	DefaultGatewayTimeout  = 30 * time.Second

	// acceptedMarker is what UltraMsg puts in the body when it queues a message
	// ({"sent":"true","message":"ok",...}).
	acceptedMarker = "true"
	maxBodyBytes   = 1 << 20
)

var ErrGatewayNotConfigured = errors.New("ULTRAMSG_TOKEN or ULTRAMSG_INSTANCE not configured")

// GatewayResponse is the raw HTTP outcome of a gateway call.
type GatewayResponse struct {
	StatusCode int
	Body       string
}

// Accepted is true when the gateway answered 200 and flagged the message as sent.
func (r GatewayResponse) Accepted() bool {
	return r.StatusCode == http.StatusOK && strings.Contains(r.Body, acceptedMarker)
}

// UltraMsgClient is a thin client for the UltraMsg WhatsApp API.
// Example: POST {base}/{instance}/messages/chat
type UltraMsgClient struct {
	Token    string
	Instance string
	BaseURL  string // e.g. https://api.ultramsg.com
	Timeout  time.Duration

	HTTPClient *http.Client
}

func (c UltraMsgClient) post(ctx context.Context, path string, form url.Values) (GatewayResponse, error) {
	token := strings.TrimSpace(c.Token)
	instance := strings.TrimSpace(c.Instance)
	if token == "" || instance == "" {
		return GatewayResponse{}, ErrGatewayNotConfigured
	}

	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultUltraMsgBaseURL
	}
	endpoint := fmt.Sprintf("%s/%s/messages/%s", baseURL, instance, strings.TrimPrefix(path, "/"))

	form.Set("token", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return GatewayResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return GatewayResponse{}, fmt.Errorf("ultramsg %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return GatewayResponse{StatusCode: resp.StatusCode}, fmt.Errorf("ultramsg %s: read body: %w", path, err)
	}
	return GatewayResponse{StatusCode: resp.StatusCode, Body: string(raw)}, nil
}

func (c UltraMsgClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultGatewayTimeout
	}
	return &http.Client{Timeout: timeout}
}

// SendMessage sends a WhatsApp text message.
// to is the full international number without '+', e.g. 558599275573.
func (c UltraMsgClient) SendMessage(ctx context.Context, to string, message string) (GatewayResponse, error) {
	return c.post(ctx, "chat", url.Values{
		"to":   {to},
		"body": {message},
	})
}

// SendImage sends an image by URL with an optional caption.
func (c UltraMsgClient) SendImage(ctx context.Context, to string, imageURL string, caption string) (GatewayResponse, error) {
	return c.post(ctx, "image", url.Values{
		"to":      {to},
		"image":   {imageURL},
		"caption": {caption},
	})
}
