// Package upstream is the HTTP client for the third-party claims platform.
// It owns authentication, JSON encoding and the translation of transport and
// in-band failures into typed errors; it knows nothing about workflow order.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config holds upstream client configuration
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client issues authenticated JSON requests against the claims platform.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a new upstream client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Get issues a GET against the given path suffix and decodes the JSON body
// into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON-encoded body and decodes the response into
// out. A nil body sends no payload; a nil out discards the response.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	c.logger.Info("Calling claims platform",
		zap.String("method", method),
		zap.String("path", path))

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("upstream request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Upstream returned non-2xx status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("reason", resp.Status))
		return &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Reason: resp.Status}
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	// Identifiers arrive as large JSON numbers and get echoed back into URLs
	// and later request bodies; float64 would corrupt them.
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		c.logger.Error("Failed to decode upstream response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &LogicalError{Path: path, Detail: "undecodable response body: " + err.Error()}
	}
	return nil
}

// Envelope is the platform's standard response wrapper. The platform signals
// logical failure with Status != "OK" even on an HTTP 200.
type Envelope struct {
	Status string          `json:"Status"`
	Model  json.RawMessage `json:"Model"`
}

// GetEnvelope issues a GET expecting the standard Status/Model wrapper and
// returns the raw Model after checking the in-band status.
func (c *Client) GetEnvelope(ctx context.Context, path string) (json.RawMessage, error) {
	var env Envelope
	if err := c.Get(ctx, path, &env); err != nil {
		return nil, err
	}
	return c.checkEnvelope(path, env)
}

// PostEnvelope issues a POST expecting the standard Status/Model wrapper and
// returns the raw Model after checking the in-band status.
func (c *Client) PostEnvelope(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var env Envelope
	if err := c.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return c.checkEnvelope(path, env)
}

func (c *Client) checkEnvelope(path string, env Envelope) (json.RawMessage, error) {
	if env.Status != "OK" {
		c.logger.Error("Upstream reported in-band failure",
			zap.String("path", path),
			zap.String("status", env.Status))
		return nil, &LogicalError{Path: path, Detail: fmt.Sprintf("status %q", env.Status)}
	}
	return env.Model, nil
}
