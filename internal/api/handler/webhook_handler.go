package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/api/middleware"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/payments"
	"github.com/the-giftist/funding-ledger/internal/platform/messaging/producers"
)

// WebhookHandler receives signed provider callbacks and publishes settlement
// events to Kafka. No ledger state is touched here; the settlement worker
// owns all effects, so a slow database never blocks the provider's retry
// budget.
type WebhookHandler struct {
	producer      producers.MessagePublisher
	webhookSecret string
	logger        *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(logger *slog.Logger, producer producers.MessagePublisher, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		producer:      producer,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandlePaymentEvent verifies the provider signature against the raw body,
// maps the payload to a settlement event and publishes it. Event types the
// ledger does not settle are acknowledged with 200 so the provider stops
// retrying them.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Error("Failed to read webhook body", "error", err)
		RespondBadRequest(c, "Unreadable request body")
		return
	}

	signature := c.GetHeader(payments.SignatureHeader)
	if err := payments.VerifySignature(h.webhookSecret, body, signature); err != nil {
		h.logger.Warn("Rejected webhook with bad signature", "error", err)
		RespondUnauthorized(c, "Invalid webhook signature")
		return
	}

	var req WebhookEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Error("Malformed webhook payload", "error", err)
		RespondBadRequest(c, "Malformed webhook payload")
		return
	}
	if req.EventID == "" || req.EventType == "" {
		RespondBadRequest(c, "event_id and event_type are required")
		return
	}

	provider := shared.PaymentProvider(req.Provider)
	if !provider.Valid() {
		RespondBadRequest(c, "Unknown payment provider")
		return
	}

	kind := shared.SettlementKind(req.EventType)
	switch kind {
	case shared.SettlementWalletDeposit,
		shared.SettlementItemContribution,
		shared.SettlementEventContribution,
		shared.SettlementSubscription,
		shared.SettlementPaymentFailed:
	default:
		// Verified but not ours to settle. Ack so the provider stops retrying.
		h.logger.Info("Ignoring unhandled webhook event type",
			"event_id", req.EventID,
			"event_type", req.EventType,
		)
		RespondOK(c, gin.H{"ignored": true})
		return
	}

	event := &shared.SettlementEvent{
		ExternalEventID: req.EventID,
		Provider:        provider,
		Kind:            kind,
		AmountPaid:      req.AmountPaid,
		SessionID:       req.SessionID,
		CorrelationID:   middleware.GetCorrelationID(c),
		Timestamp:       time.Now(),
	}
	if req.ContributionID != "" {
		id, err := uuid.Parse(req.ContributionID)
		if err != nil {
			RespondBadRequest(c, "Invalid contribution ID")
			return
		}
		event.ContributionID = id
	}
	if req.SubscriberID != "" {
		id, err := uuid.Parse(req.SubscriberID)
		if err != nil {
			RespondBadRequest(c, "Invalid subscriber ID")
			return
		}
		event.SubscriberID = id
	}

	if err := h.producer.Publish(c.Request.Context(), event.ExternalEventID, event); err != nil {
		h.logger.Error("Failed to publish settlement event",
			"event_id", req.EventID,
			"event_type", req.EventType,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Settlement event accepted",
		"event_id", req.EventID,
		"event_type", req.EventType,
		"provider", req.Provider,
	)
	RespondAccepted(c, gin.H{"accepted": true})
}
