package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/the-giftist/funding-ledger/internal/config"
)

// HostedCheckoutClient implements CheckoutProvider against the provider's
// session API.
type HostedCheckoutClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewHostedCheckoutClient(logger *slog.Logger, cfg *config.PaymentsConfig) *HostedCheckoutClient {
	return &HostedCheckoutClient{
		logger:  logger,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.CheckoutBaseURL,
	}
}

// CreateCheckoutSession opens a hosted checkout session and returns the URL
// the contributor must be redirected to.
func (c *HostedCheckoutClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Checkout session request failed", "reference_id", req.ReferenceID.String(), "error", err)
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Checkout session rejected by provider",
			"reference_id", req.ReferenceID.String(),
			"status", resp.StatusCode,
			"body", string(payload),
		)
		return nil, fmt.Errorf("checkout session rejected: status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	c.logger.Debug("Opened checkout session",
		"reference_id", req.ReferenceID.String(),
		"session_id", session.SessionID,
	)

	return &session, nil
}

var _ CheckoutProvider = (*HostedCheckoutClient)(nil)
