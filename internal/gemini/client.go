package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TextPath locates the generated text inside a generateContent envelope.
const TextPath = "candidates.0.content.parts.0.text"

const maxResponseBytes = 4 << 20

// Client calls the generateContent REST endpoint directly.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient creates a REST Client from cfg.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.TimeoutDuration()},
		endpoint: cfg.Endpoint(),
		apiKey:   cfg.APIKey,
		timeout:  cfg.TimeoutDuration(),
		logger:   logger.With("client", "gemini"),
	}
}

// Generate performs one generateContent call and returns the embedded text.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(NewPayload(req))
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrCommunication, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrCommunication, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrCommunication, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrCommunication, resp.StatusCode, truncate(string(data), 512))
	}

	text, err := ExtractText(data)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(
		ctx, "model responded",
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"bytes", len(text),
	)
	return text, nil
}

// ExtractText returns the text at TextPath. An envelope that is not JSON is
// a communication failure; a missing, non-string, or blank text field is
// ErrEmptyOutput.
func ExtractText(envelope []byte) (string, error) {
	if !gjson.ValidBytes(envelope) {
		return "", fmt.Errorf("%w: response envelope is not valid JSON", ErrCommunication)
	}

	if msg := gjson.GetBytes(envelope, "error.message"); msg.Exists() {
		return "", fmt.Errorf("%w: %s", ErrCommunication, msg.String())
	}

	text := gjson.GetBytes(envelope, TextPath)
	if !text.Exists() || text.Type != gjson.String {
		return "", fmt.Errorf("%w: no text at %s", ErrEmptyOutput, TextPath)
	}

	if strings.TrimSpace(text.Str) == "" {
		return "", fmt.Errorf("%w: empty text at %s", ErrEmptyOutput, TextPath)
	}

	return text.Str, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
