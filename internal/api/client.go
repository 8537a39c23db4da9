// Package api provides a typed client for the Technovus backend REST API.
//
// The client is a thin transport layer: every method takes the bearer token
// explicitly and returns normalized *Error values. Credential management and
// retry-on-expiry live in the session package on top of this one.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/technovus/client-go/internal/config"
)

// Client calls the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// New creates a new API client.
func New(cfg config.APIConfig, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  logger,
	}
}

// errorEnvelope matches the backend's error body shapes. Some endpoints
// respond {"message": ...}, others {"error": ...}.
type errorEnvelope struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func (e errorEnvelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err
}

// do performs one HTTP request. token may be empty for public endpoints.
// out may be nil when the response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugw("request failed", "method", method, "path", path, "error", err)
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope errorEnvelope
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err := json.Unmarshal(raw, &envelope); err != nil {
			envelope.Message = strings.TrimSpace(string(raw))
		}

		apiErr := &Error{
			Kind:    Classify(resp.StatusCode, envelope.text()),
			Status:  resp.StatusCode,
			Message: envelope.text(),
		}
		c.logger.Debugw("request rejected",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"kind", apiErr.Kind.String(),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}

	return nil
}
