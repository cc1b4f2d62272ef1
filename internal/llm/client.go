// Package llm is the gateway to the Anthropic messages API. It supports
// single-shot completion and token streaming, with context cancellation
// and a typed error taxonomy so callers can tell transport failures from
// provider rejections from unusable responses.
package llm

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
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// ModelFast is the cheap tier used for short numeric estimates.
	ModelFast = "claude-3-5-haiku-latest"
	// ModelQuality is the default tier for workout generation.
	ModelQuality = "claude-3-5-sonnet-latest"
)

// Params configures one request. Model selects the backend variant,
// MaxTokens is a hard cap on output length, and Temperature is sampling
// randomness (0 = deterministic).
type Params struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client talks to the messages API over HTTP.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a gateway client. The HTTP timeout is a transport
// backstop; per-request deadlines come from the caller's context.
func NewClient(apiKey string, log *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

// SetBaseURL overrides the provider endpoint. Used by tests and proxies.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a single-shot prompt and returns the concatenated text
// of all text-bearing content blocks.
func (c *Client) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := c.send(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", providerErrorFromBody(resp.StatusCode, raw)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &MalformedResponseError{Reason: "response is not valid JSON"}
	}
	if parsed.Error != nil {
		return "", &ProviderError{StatusCode: resp.StatusCode, Type: parsed.Error.Type, Message: parsed.Error.Message}
	}

	var b strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &MalformedResponseError{Reason: "no text content in response"}
	}

	c.log.Debug("completion received", "model", p.Model, "chars", b.Len())
	return b.String(), nil
}

func (c *Client) send(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation surfaces as-is so callers can tell an
		// abandoned request from a transport failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Err: err}
	}
	return resp, nil
}

func providerErrorFromBody(status int, raw []byte) error {
	var envelope messagesResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		return &ProviderError{StatusCode: status, Type: envelope.Error.Type, Message: envelope.Error.Message}
	}
	return &ProviderError{StatusCode: status, Type: "unknown", Message: strings.TrimSpace(string(raw))}
}
