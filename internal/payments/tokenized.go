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
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// TokenizedClient implements TokenizedProvider over the provider's token and
// charge endpoints. Both tokenized rails share one API shape; the provider
// field routes the request.
type TokenizedClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

func NewTokenizedClient(logger *slog.Logger, cfg *config.PaymentsConfig) *TokenizedClient {
	return &TokenizedClient{
		logger:  logger,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		baseURL: cfg.CheckoutBaseURL,
	}
}

// ClientToken fetches a short-lived token the browser SDK needs before it can
// tokenize a card.
func (c *TokenizedClient) ClientToken(ctx context.Context, provider shared.PaymentProvider) (string, error) {
	if !provider.Valid() {
		return "", shared.ErrInvalidProvider
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/client_tokens", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build client token request: %w", err)
	}
	httpReq.Header.Set("X-Payment-Rail", string(provider))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Client token request failed", "provider", string(provider), "error", err)
		return "", fmt.Errorf("client token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("client token rejected: status %d", resp.StatusCode)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode client token: %w", err)
	}

	return payload.Token, nil
}

// Charge executes a server-side charge against a tokenized payment method.
// The result is advisory; settlement truth arrives via webhook.
func (c *TokenizedClient) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !req.Provider.Valid() {
		return nil, shared.ErrInvalidProvider
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Charge request failed", "reference_id", req.ReferenceID.String(), "error", err)
		return nil, fmt.Errorf("charge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Charge rejected by provider",
			"reference_id", req.ReferenceID.String(),
			"status", resp.StatusCode,
			"body", string(payload),
		)
		return nil, fmt.Errorf("charge rejected: status %d", resp.StatusCode)
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode charge result: %w", err)
	}

	return &result, nil
}

var _ TokenizedProvider = (*TokenizedClient)(nil)
