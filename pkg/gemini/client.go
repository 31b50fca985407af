package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brimhq/growth-engine/pkg/config"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	initialBackoff     = 500 * time.Millisecond
)

// Client calls the Gemini generateContent REST endpoint in JSON mode and
// returns the raw model text. Parsing the text into domain shapes is the
// caller's concern.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	apiKey      string
	maxAttempts int
}

// New builds a generator client from configuration.
func New(cfg config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("gemini base url is required")
	}
	model := cfg.Model
	if model == "" {
		return nil, errors.New("gemini model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		model:       model,
		apiKey:      cfg.APIKey,
		maxAttempts: maxAttempts,
	}, nil
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"response_mime_type"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends the prompt and returns the model's text output. The
// request asks for application/json, so on the happy path the returned string
// is a JSON document. Transient transport failures and retryable HTTP codes
// are retried with exponential backoff up to the configured attempt cap;
// anything else fails the single logical call.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	var text string
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), retry.NewExponential(initialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, attemptErr := c.generateOnce(ctx, endpoint, payload)
		if attemptErr != nil {
			return attemptErr
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) generateOnce(ctx context.Context, endpoint string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("call generator: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("read generator response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("generator returned status %d: %s", resp.StatusCode, truncate(body, 256))
		if isRetryableStatus(resp.StatusCode) {
			return "", retry.RetryableError(err)
		}
		return "", err
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generator response contained no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
