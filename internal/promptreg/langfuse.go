package promptreg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	logx "github.com/fraud-detection-agent/server/pkg/logger"
)

type Config struct {
	BaseURL   string `split_words:"true" required:"true"`
	PublicKey string `split_words:"true" required:"true"`
	SecretKey string `split_words:"true" required:"true"`
	Timeout   int    `split_words:"true" default:"10"`
}

// New builds a TTL-cached registry client from the config.
func (c *Config) New() Registry {
	client := &Client{
		baseURL:   c.BaseURL,
		publicKey: c.PublicKey,
		secretKey: c.SecretKey,
		httpc:     &http.Client{Timeout: time.Duration(c.Timeout) * time.Second},
	}
	return NewCached(client)
}

// Client talks to a Langfuse-compatible prompt registry over its public REST
// API using basic auth. It performs no caching itself; wrap with NewCached.
type Client struct {
	baseURL   string
	publicKey string
	secretKey string
	httpc     *http.Client
}

func NewClient(baseURL, publicKey, secretKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, publicKey: publicKey, secretKey: secretKey, httpc: httpc}
}

type promptPayload struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Config struct {
		Model       string   `json:"model"`
		Temperature *float32 `json:"temperature"`
	} `json:"config"`
}

func (c *Client) GetPrompt(ctx context.Context, name, label string, _ time.Duration) (*PromptSpec, error) {
	endpoint := fmt.Sprintf("%s/api/public/v2/prompts/%s", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build prompt request: %w", err)
	}
	q := req.URL.Query()
	q.Set("label", label)
	req.URL.RawQuery = q.Encode()
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prompt %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logx.Error().
			Str("prompt", name).
			Str("label", label).
			Int("status", resp.StatusCode).
			Msg("Prompt registry returned non-OK status")
		return nil, fmt.Errorf("fetch prompt %q: registry status %d: %s", name, resp.StatusCode, string(body))
	}

	var payload promptPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode prompt %q: %w", name, err)
	}
	if payload.Prompt == "" {
		return nil, fmt.Errorf("fetch prompt %q: empty template", name)
	}

	return &PromptSpec{
		Name:        name,
		Label:       label,
		Template:    payload.Prompt,
		Model:       payload.Config.Model,
		Temperature: payload.Config.Temperature,
	}, nil
}

var _ Registry = (*Client)(nil)
