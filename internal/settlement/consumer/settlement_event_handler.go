package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/platform/messaging/producers"
	"github.com/the-giftist/funding-ledger/internal/settlement/service"
)

// SettlementEventHandler handles incoming settlement event messages from Kafka
type SettlementEventHandler struct {
	settlementService service.SettlementService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewSettlementEventHandler creates a new handler
func NewSettlementEventHandler(
	logger *slog.Logger,
	settlementService service.SettlementService,
	producer producers.DeadLetterPublisher,
) *SettlementEventHandler {
	return &SettlementEventHandler{
		settlementService: settlementService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. A nil return commits the offset;
// unprocessable payloads are parked in the DLQ so they never block the
// partition, while settlement failures keep the offset uncommitted.
func (h *SettlementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.SettlementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal settlement event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received settlement event for processing",
		"event_id", event.ExternalEventID,
		"kind", string(event.Kind),
		"provider", string(event.Provider),
		"amount_paid", event.AmountPaid,
	)

	if err := h.settlementService.ProcessEvent(ctx, &event); err != nil {
		logger.Error("Failed to process settlement event",
			"event_id", event.ExternalEventID,
			"kind", string(event.Kind),
			"error", err,
		)
		return fmt.Errorf("processing settlement event %s failed: %w", event.ExternalEventID, err)
	}

	logger.Info("Successfully processed settlement event", "event_id", event.ExternalEventID)
	return nil
}
