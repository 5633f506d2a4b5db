package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Franca20/telegram-motorista-bot/internal/infrastructure/config"
)

// Default client settings, used when config values are absent.
const (
	defaultBaseURL = "https://api.telegram.org"

	defaultRequestTimeout  = 30 * time.Second
	defaultDocumentTimeout = 60 * time.Second
	defaultSendAttempts    = 2
	defaultSendRetryDelay  = time.Second
)

// Client talks to the Telegram Bot API over HTTPS.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//     The underlying http.Client handles connection pooling.
type Client struct {
	httpClient *http.Client
	docClient  *http.Client
	baseURL    string
	token      string

	sendAttempts   int
	sendRetryDelay time.Duration
}

// New creates a Bot API client from configuration.
//
// Parameters:
//   - cfg: Telegram configuration from config.yaml
//
// Returns:
//   - *Client: Client ready for use (no connection is established up front;
//     the Bot API is stateless HTTP)
func New(cfg config.TelegramConfig) *Client {
	requestTimeout := defaultRequestTimeout
	if cfg.RequestTimeout > 0 {
		requestTimeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	documentTimeout := defaultDocumentTimeout
	if cfg.DocumentTimeout > 0 {
		documentTimeout = time.Duration(cfg.DocumentTimeout) * time.Second
	}
	sendAttempts := defaultSendAttempts
	if cfg.SendAttempts > 0 {
		sendAttempts = cfg.SendAttempts
	}
	sendRetryDelay := defaultSendRetryDelay
	if cfg.SendRetryDelay > 0 {
		sendRetryDelay = time.Duration(cfg.SendRetryDelay) * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		docClient:      &http.Client{Timeout: documentTimeout},
		baseURL:        baseURL,
		token:          cfg.Token,
		sendAttempts:   sendAttempts,
		sendRetryDelay: sendRetryDelay,
	}
}

// methodURL builds the endpoint URL for a Bot API method.
func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// apiEnvelope is the outer response shape every Bot API call returns.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// postForm sends a form-encoded Bot API call and decodes the envelope.
// Network failures map to ErrTransport; ok=false maps to ErrAPIRejected.
func (c *Client) postForm(ctx context.Context, httpClient *http.Client, method string, values url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method),
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: building request: %w", ErrTransport, method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(method, resp)
}

// decodeEnvelope reads a Bot API response body and unwraps the result.
func decodeEnvelope(method string, resp *http.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %w", ErrTransport, method, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s: decoding response: %w", ErrTransport, method, err)
	}

	if !envelope.OK {
		description := envelope.Description
		if description == "" {
			description = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrAPIRejected, method, description)
	}

	return envelope.Result, nil
}
