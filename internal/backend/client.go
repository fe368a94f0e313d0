// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the generative model backend.
//
// The backend speaks an OpenAI-style chat completions API. The client
// retries transient failures with exponential backoff, rate-limits
// outgoing requests, and caps response bodies to keep a misbehaving
// backend from exhausting memory.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeRateLimited
	ErrTypeServer
	ErrTypeInvalidResponse
)

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "backend request timed out"}
	ErrRateLimited     = &ClientError{Type: ErrTypeRateLimited, Message: "backend rate limit exceeded"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "backend returned an invalid response"}
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for completion requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for
	// transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// MaxResponseSize caps response bodies (prevents memory exhaustion).
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// defaultRequestsPerSecond is the outgoing rate limit.
	defaultRequestsPerSecond = 2
)

// Config holds configuration options for the backend client.
type Config struct {
	// BaseURL is the backend API base URL.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Model is the model identifier requested from the backend.
	Model string

	// Timeout for completion requests (default: 60s).
	Timeout time.Duration

	// MaxRetries for transient failures (default: 3).
	MaxRetries int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://127.0.0.1:11434/v1",
		Model:      "flux-chat",
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the generative backend client.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a backend client from the given configuration.
// Zero-valued fields fall back to defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends a message to the backend and returns the generated text.
// An optional context string (typically matched node content) is prefixed
// as a system message.
func (c *Client) Complete(ctx context.Context, message, contextText string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &ClientError{Type: ErrTypeRateLimited, Message: "rate limiter interrupted", Cause: err}
	}

	messages := make([]chatMessage, 0, 2)
	if contextText != "" {
		messages = append(messages, chatMessage{Role: "system", Content: contextText})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	body, err := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "encoding request", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", &ClientError{Type: ErrTypeTimeout, Message: "request canceled", Cause: ctx.Err()}
			case <-time.After(delay):
			}
		}

		text, retryable, err := c.complete(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

// complete performs one request attempt. The second return reports whether
// the failure is worth retrying.
func (c *Client) complete(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, &ClientError{Type: ErrTypeUnknown, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", false, &ClientError{Type: ErrTypeTimeout, Message: "backend request timed out", Cause: err}
		}
		return "", true, &ClientError{Type: ErrTypeConnection, Message: "connecting to backend", Cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, ErrRateLimited
	case resp.StatusCode >= 500:
		return "", true, &ClientError{
			Type:    ErrTypeServer,
			Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return "", false, &ClientError{
			Type:    ErrTypeServer,
			Message: fmt.Sprintf("backend returned status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return "", true, &ClientError{Type: ErrTypeConnection, Message: "reading response", Cause: err}
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", false, &ClientError{Type: ErrTypeInvalidResponse, Message: "decoding response", Cause: err}
	}
	if parsed.Error != nil {
		return "", false, &ClientError{Type: ErrTypeServer, Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", false, ErrInvalidResponse
	}
	return parsed.Choices[0].Message.Content, false, nil
}
