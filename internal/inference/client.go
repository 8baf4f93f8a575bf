// Package inference wraps the hosted text-completion service behind a
// narrow interface. All model-assisted callers (normalization, geocoding)
// go through one shared client, which enforces a minimum gap between
// consecutive calls.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/estatelink/property-importer/internal/config"
	"github.com/estatelink/property-importer/internal/logger"
)

// Client issues one short completion request and returns the raw text
// response. The text contract is brittle; callers parse defensively and
// treat unparsable output as a failed call.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const maxErrorBodyBytes = 1024

// HTTPClient implements Client against an OpenAI-compatible chat endpoint.
type HTTPClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Interface
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client from configuration. The rate limiter is
// shared by every caller of this client instance.
func NewHTTPClient(cfg *config.InferenceConfig, log logger.Interface) *HTTPClient {
	return &HTTPClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(cfg.MinCallGap), 1),
		logger:  log.WithComponent("inference"),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user message with zero temperature
// and returns the model's text reply. It waits for the shared call gap
// before issuing the request.
func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("await call gap: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(errBody)))
	}

	var parsed chatResponse
	if decodErr := json.NewDecoder(resp.Body).Decode(&parsed); decodErr != nil {
		return "", fmt.Errorf("decode completion response: %w", decodErr)
	}
	if len(parsed.Choices) == 0 {
		return "", &ParseError{Raw: "", Reason: "completion returned no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}
