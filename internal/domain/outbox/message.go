package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/domain/notification"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// Message stores a settlement notification for reliable delivery. Rows are
// appended inside the settlement transaction and picked up by the poller, so
// an effect is never lost with the settlement committed, and never delivered
// with the settlement rolled back.
type Message struct {
	ID             int64               `json:"id"`
	NotificationID uuid.UUID           `json:"notification_id"`
	Payload        json.RawMessage     `json:"payload"`
	Status         shared.OutboxStatus `json:"status"`
	Attempts       int                 `json:"attempts"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAttemptAt  *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(n *notification.Notification) (*Message, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}

	return &Message{
		NotificationID: n.ID,
		Payload:        payload,
		Status:         shared.OutboxStatusPending,
		Attempts:       0,
		CreatedAt:      time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetNotification extracts the notification from the payload
func (m *Message) GetNotification() (*notification.Notification, error) {
	var n notification.Notification
	if err := json.Unmarshal(m.Payload, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
