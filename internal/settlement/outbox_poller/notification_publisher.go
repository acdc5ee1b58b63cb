package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/platform/messaging/producers"
)

// NotificationPublisher delivers outbox messages to their downstream sinks
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message *outbox.Message) error
}

// NotificationPublisherImpl implements NotificationPublisher. Delivery fans
// out to the notification topic and the activity feed; the feed is a
// best-effort projection and never fails the delivery.
type NotificationPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	feed       notification.Feed
	logger     *slog.Logger
}

// NewNotificationPublisher creates a new publisher
func NewNotificationPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	feed notification.Feed,
	logger *slog.Logger,
) NotificationPublisher {
	return &NotificationPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		feed:       feed,
		logger:     logger,
	}
}

// PublishNotification processes and publishes a single outbox message
func (p *NotificationPublisherImpl) PublishNotification(ctx context.Context, message *outbox.Message) error {
	n, err := message.GetNotification()
	if err != nil {
		p.logger.Error("Failed to unmarshal notification from outbox payload",
			"outbox_id", message.ID, "notification_id", message.NotificationID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if n.CorrelationID != "" {
		logger = p.logger.With("correlation_id", n.CorrelationID)
	}

	logger.Info("Attempting to publish outbox notification",
		"outbox_id", message.ID,
		"notification_id", n.ID.String(),
		"kind", string(n.Kind),
	)

	// Keyed per recipient so one user's notifications stay ordered.
	if err := p.producer.Publish(ctx, notificationKey(n), n); err != nil {
		logger.Error("Failed to publish notification to Kafka",
			"outbox_id", message.ID, "notification_id", n.ID.String(), "error", err,
		)
		return fmt.Errorf("failed to publish notification %s: %w", n.ID.String(), err)
	}

	if p.feed != nil {
		if err := p.feed.Append(ctx, n); err != nil {
			logger.Error("Failed to append notification to activity feed",
				"notification_id", n.ID.String(), "error", err,
			)
		}
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "notification_id", n.ID.String(), "error", err,
		)
		return fmt.Errorf("notification %s published, but failed to mark outbox %d as PROCESSED: %w", n.ID.String(), message.ID, err)
	}

	logger.Info("Outbox notification successfully published and marked as PROCESSED",
		"outbox_id", message.ID, "notification_id", n.ID.String(),
	)
	return nil
}

// notificationKey picks the Kafka partition key for a notification
func notificationKey(n *notification.Notification) string {
	if n.RecipientID != nil {
		return n.RecipientID.String()
	}
	if n.RecipientEmail != "" {
		return n.RecipientEmail
	}
	return n.ID.String()
}
