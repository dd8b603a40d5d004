// Package push implements the HTTP client for the festival push gateway.
// The gateway fronts the platform vendors (APNs, FCM, WebPush); this client
// speaks its JSON API and maps gateway failures onto domain errors.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/festhub/festival-hub/internal/domain/notification"
	"github.com/festhub/festival-hub/internal/domain/shared"
	"github.com/festhub/festival-hub/pkg/circuitbreaker"
	"github.com/festhub/festival-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the push gateway client.
type ClientConfig struct {
	// BaseURL is the push gateway base URL
	BaseURL string

	// APIKey authenticates the engine against the gateway
	APIKey string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Retrier controls retry behavior. Defaults to PushGatewayRetrier.
	Retrier *retry.Retrier

	// Breaker protects dispatch from a failing gateway.
	// Defaults to PushGatewayBreaker.
	Breaker *circuitbreaker.CircuitBreaker

	// Logger for structured logging
	Logger *slog.Logger

	// Debug enables per-request debug logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the push gateway API client. It implements
// notification.PushProvider.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a new push gateway client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Retrier == nil {
		config.Retrier = retry.PushGatewayRetrier()
	}
	if config.Breaker == nil {
		config.Breaker = circuitbreaker.PushGatewayBreaker(func(name string, from, to circuitbreaker.State) {
			config.Logger.Warn("circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		})
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  config.Logger,
		retrier: config.Retrier,
		breaker: config.Breaker,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

// sendRequest is the gateway's delivery request envelope.
type sendRequest struct {
	Platform string            `json:"platform"`
	Token    string            `json:"token"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Category string            `json:"category,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// sendResponse is the gateway's delivery response envelope.
type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SEND
// ══════════════════════════════════════════════════════════════════════════════

// Send delivers one push message to one device token.
// Transient gateway failures are retried; a rejected token or payload is
// returned to the caller immediately so it lands in the delivery log.
func (c *Client) Send(ctx context.Context, platform, token string, msg notification.PushMessage) error {
	req := sendRequest{
		Platform: platform,
		Token:    token,
		Title:    msg.Title,
		Body:     msg.Body,
		Category: string(msg.Category),
		Data:     msg.Data,
	}

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			return c.doSend(ctx, req)
		})
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", shared.ErrPushGatewayUnavailable, err)
		}
		return err
	}
	return nil
}

// doSend performs a single delivery request.
func (c *Client) doSend(ctx context.Context, payload sendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("push gateway request", "platform", payload.Platform)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return retry.Retryable(fmt.Errorf("%w: %v", shared.ErrPushGatewayTimeout, err))
		}
		return retry.Retryable(fmt.Errorf("%w: %v", shared.ErrPushGatewayUnavailable, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Retryable(fmt.Errorf("read push response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return retry.Retryable(fmt.Errorf("%w: status %d", shared.ErrPushGatewayUnavailable, resp.StatusCode))
	case resp.StatusCode >= 400:
		// The gateway rejected this specific message. Retrying will not help.
		return fmt.Errorf("%w: %s", shared.ErrPushGatewayFailed, gatewayError(respBody, resp.StatusCode))
	}

	var result sendResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("unmarshal push response: %w", err)
		}
		if !result.Success {
			return fmt.Errorf("%w: %s", shared.ErrPushGatewayFailed, result.Error)
		}
	}

	return nil
}

// gatewayError extracts the error message from a rejection body.
func gatewayError(body []byte, status int) string {
	var result sendResponse
	if err := json.Unmarshal(body, &result); err == nil && result.Error != "" {
		return result.Error
	}
	return fmt.Sprintf("status %d", status)
}

// IsHealthy checks if the push gateway is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/v1/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
