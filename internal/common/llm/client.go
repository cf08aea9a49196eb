// internal/common/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
)

// Message is one turn of a reasoning-service conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client talks to an OpenAI-compatible chat-completions endpoint. All
// callers must treat every returned error as recoverable and fall back
// to their deterministic path.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxRetries  int
	httpClient  *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.ReasoningConfig) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
	}
}

// Complete sends system instructions plus ordered messages and returns
// the raw assistant text. The text is NOT guaranteed to be JSON; use
// the decode helpers before trusting any structure in it.
func (c *Client) Complete(ctx context.Context, systemInstructions string, messages []Message) (string, error) {
	payload := struct {
		Model       string    `json:"model"`
		Temperature float64   `json:"temperature"`
		Messages    []Message `json:"messages"`
	}{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    append([]Message{{Role: RoleSystem, Content: systemInstructions}}, messages...),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewReasoningServiceError(err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", apperrors.NewReasoningServiceError(ctx.Err())
			}
		}

		text, err := c.doOnce(ctx, body)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", apperrors.NewReasoningServiceError(ctx.Err())
		}
		lastErr = err
	}

	return "", apperrors.NewReasoningServiceError(lastErr)
}

func (c *Client) doOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("reasoning service status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResponse.Choices) == 0 {
		return "", fmt.Errorf("response contained no choices")
	}

	return apiResponse.Choices[0].Message.Content, nil
}
