// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genie provides the HTTP client for the Campus Genie backend.
package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/genie-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the genie backend client.
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

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "Campus Genie backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// IsUnreachable checks if an error indicates the backend is down.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:4000)
	// Note: Uses explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows
	BaseURL string

	// Timeout for chat/history/rating requests (default: 30s)
	Timeout time.Duration

	// ProbeTimeout for reachability checks (default: 3s)
	ProbeTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:4000",
		Timeout:      30 * time.Second,
		ProbeTimeout: 3 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Campus Genie backend.
// It is safe for concurrent use.
//
// Example:
//
//	client := genie.NewClient()
//	resp, err := client.Chat(ctx, "What's my attendance?", userID)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:4000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 3 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// REACHABILITY
// =============================================================================

// CheckReachable verifies the backend answers HTTP within the probe timeout.
// Any HTTP status counts as reachable; only transport failures do not.
func (c *Client) CheckReachable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	drainAndClose(resp.Body)

	return nil
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends a query to the backend and returns the decoded reply.
func (c *Client) Chat(ctx context.Context, query, userID string) (*ChatResponse, error) {
	body, err := json.Marshal(ChatRequest{Query: query, UserID: userID})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, serverErrorFrom(data, "chat request failed: "+resp.Status)
	}

	decoded := decodeChatResponse(data)
	return &decoded, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// History fetches all persisted records for a user, oldest first as the
// backend returns them. Unrecognized payload shapes decode to an empty set.
func (c *Client) History(ctx context.Context, userID string) ([]model.ChatRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/chat/history/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, serverErrorFrom(data, "failed to fetch chat history: "+resp.Status)
	}

	return decodeHistory(data), nil
}

// ClearHistory deletes all persisted records for a user.
func (c *Client) ClearHistory(ctx context.Context, userID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/chat/history/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return serverErrorFrom(data, "failed to clear chat history: "+resp.Status)
	}

	return nil
}

// =============================================================================
// RATING
// =============================================================================

// Rate submits a thumbs up/down for a message. The response body is not
// consumed beyond the status; ratings are best-effort.
func (c *Client) Rate(ctx context.Context, messageID string, rating model.Rating, userID string) error {
	body, err := json.Marshal(RateRequest{MessageID: messageID, Rating: string(rating), UserID: userID})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/rate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return serverErrorFrom(data, "rating request failed: "+resp.Status)
	}

	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// newRequest builds a request against the base URL with a correlation ID.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// serverErrorFrom extracts {"error": "..."} from a non-2xx body, falling
// back to the given message.
func serverErrorFrom(data []byte, fallback string) error {
	var se serverError
	if err := json.Unmarshal(data, &se); err == nil && se.Error != "" {
		return &ClientError{Type: ErrTypeServer, Message: se.Error}
	}
	return &ClientError{Type: ErrTypeServer, Message: fallback}
}

// Helper to drain response body so connections can be reused.
func drainAndClose(r io.ReadCloser) {
	io.Copy(io.Discard, r)
	r.Close()
}
