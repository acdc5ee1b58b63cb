package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) ProcessEvent(ctx context.Context, event *shared.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func TestSettlementEventHandler_HandleMessage(t *testing.T) {
	validEvent := shared.SettlementEvent{
		ExternalEventID: "evt_1",
		Provider:        shared.ProviderHostedCheckout,
		Kind:            shared.SettlementWalletDeposit,
		AmountPaid:      5000,
		SessionID:       "cs_1",
	}
	validPayload, err := json.Marshal(validEvent)
	require.NoError(t, err)

	t.Run("processes valid event and commits", func(t *testing.T) {
		mockService := new(MockSettlementService)
		mockDLQ := new(MockDeadLetterPublisher)

		mockService.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(e *shared.SettlementEvent) bool {
			return e.ExternalEventID == "evt_1" && e.Kind == shared.SettlementWalletDeposit
		})).Return(nil)

		handler := NewSettlementEventHandler(newTestLogger(), mockService, mockDLQ)

		err := handler.HandleMessage(context.Background(), []byte("evt_1"), validPayload)

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("parks unparseable payload in DLQ and commits", func(t *testing.T) {
		mockService := new(MockSettlementService)
		mockDLQ := new(MockDeadLetterPublisher)

		garbage := []byte("{not json")
		mockDLQ.On("PublishToDLQ", mock.Anything, "key_1", garbage, mock.Anything).Return(nil)

		handler := NewSettlementEventHandler(newTestLogger(), mockService, mockDLQ)

		err := handler.HandleMessage(context.Background(), []byte("key_1"), garbage)

		assert.NoError(t, err)
		mockDLQ.AssertExpectations(t)
		mockService.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
	})

	t.Run("keeps offset when DLQ publish fails", func(t *testing.T) {
		mockService := new(MockSettlementService)
		mockDLQ := new(MockDeadLetterPublisher)

		garbage := []byte("{not json")
		mockDLQ.On("PublishToDLQ", mock.Anything, "key_1", garbage, mock.Anything).
			Return(errors.New("broker unavailable"))

		handler := NewSettlementEventHandler(newTestLogger(), mockService, mockDLQ)

		err := handler.HandleMessage(context.Background(), []byte("key_1"), garbage)

		assert.Error(t, err)
	})

	t.Run("keeps offset when settlement fails", func(t *testing.T) {
		mockService := new(MockSettlementService)
		mockDLQ := new(MockDeadLetterPublisher)

		mockService.On("ProcessEvent", mock.Anything, mock.Anything).
			Return(errors.New("deadlock detected"))

		handler := NewSettlementEventHandler(newTestLogger(), mockService, mockDLQ)

		err := handler.HandleMessage(context.Background(), []byte("evt_1"), validPayload)

		assert.Error(t, err)
		mockDLQ.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("retries unparseable payload when no DLQ is configured", func(t *testing.T) {
		mockService := new(MockSettlementService)

		handler := NewSettlementEventHandler(newTestLogger(), mockService, nil)

		err := handler.HandleMessage(context.Background(), []byte("key_1"), []byte("{not json"))

		assert.Error(t, err)
	})
}
