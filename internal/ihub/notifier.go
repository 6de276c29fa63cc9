// Package ihub posts payment-completion notifications to the downstream
// iHub consumer. It authenticates with its own bearer token, separate from
// the claims platform credential.
package ihub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/neweco/claims-orchestrator/internal/upstream"
)

// Config holds iHub notifier configuration
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Notifier delivers payment-completion payloads to iHub.
type Notifier struct {
	url    string
	token  string
	http   *http.Client
	logger *zap.Logger
}

// NewNotifier creates a new iHub notifier
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{
		url:    cfg.URL,
		token:  cfg.Token,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// NotifyPaymentDone posts the composite claim+settlement payload. A failure
// here fails the enclosing workflow; the settlement is already submitted
// upstream at that point.
func (n *Notifier) NotifyPaymentDone(ctx context.Context, payload any) error {
	n.logger.Info("Notifying iHub of payment completion", zap.String("url", n.url))

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payment notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build payment notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.logger.Error("Payment notification failed", zap.Error(err))
		return fmt.Errorf("payment notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.Error("Payment notification rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("reason", resp.Status))
		return &upstream.HTTPError{
			Method: http.MethodPost,
			Path:   n.url,
			Status: resp.StatusCode,
			Reason: resp.Status,
		}
	}

	n.logger.Info("Payment notification sent")
	return nil
}
