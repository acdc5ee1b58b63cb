package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockDepositSettler struct {
	mock.Mock
}

func (m *MockDepositSettler) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockContributionSettler struct {
	mock.Mock
}

func (m *MockContributionSettler) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockContributionSettler) Fail(ctx context.Context, event *shared.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSubscriptionSettler struct {
	mock.Mock
}

func (m *MockSubscriptionSettler) Settle(ctx context.Context, event *shared.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newDispatcher() (*MockDepositSettler, *MockContributionSettler, *MockSubscriptionSettler, SettlementService) {
	deposits := new(MockDepositSettler)
	contributions := new(MockContributionSettler)
	subscriptions := new(MockSubscriptionSettler)
	svc := NewSettlementService(newTestLogger(), deposits, contributions, subscriptions)
	return deposits, contributions, subscriptions, svc
}

func TestSettlementService_ProcessEvent(t *testing.T) {
	t.Run("routes wallet deposits to the deposit settler", func(t *testing.T) {
		deposits, contributions, subscriptions, svc := newDispatcher()
		event := &shared.SettlementEvent{
			ExternalEventID: "evt_1",
			Kind:            shared.SettlementWalletDeposit,
			SessionID:       "cs_1",
		}
		deposits.On("Settle", mock.Anything, event).Return(nil)

		err := svc.ProcessEvent(context.Background(), event)

		assert.NoError(t, err)
		deposits.AssertExpectations(t)
		contributions.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
		subscriptions.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
	})

	t.Run("routes both contribution kinds to the contribution settler", func(t *testing.T) {
		for _, kind := range []shared.SettlementKind{
			shared.SettlementItemContribution,
			shared.SettlementEventContribution,
		} {
			_, contributions, _, svc := newDispatcher()
			event := &shared.SettlementEvent{
				ExternalEventID: "evt_2",
				Kind:            kind,
				ContributionID:  uuid.New(),
			}
			contributions.On("Settle", mock.Anything, event).Return(nil)

			err := svc.ProcessEvent(context.Background(), event)

			assert.NoError(t, err, string(kind))
			contributions.AssertExpectations(t)
		}
	})

	t.Run("routes payment failures to the fail branch", func(t *testing.T) {
		_, contributions, _, svc := newDispatcher()
		event := &shared.SettlementEvent{
			ExternalEventID: "evt_3",
			Kind:            shared.SettlementPaymentFailed,
			ContributionID:  uuid.New(),
		}
		contributions.On("Fail", mock.Anything, event).Return(nil)

		err := svc.ProcessEvent(context.Background(), event)

		assert.NoError(t, err)
		contributions.AssertExpectations(t)
		contributions.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
	})

	t.Run("routes subscription payments to the subscription settler", func(t *testing.T) {
		_, _, subscriptions, svc := newDispatcher()
		event := &shared.SettlementEvent{
			ExternalEventID: "evt_4",
			Kind:            shared.SettlementSubscription,
			SubscriberID:    uuid.New(),
		}
		subscriptions.On("Settle", mock.Anything, event).Return(nil)

		err := svc.ProcessEvent(context.Background(), event)

		assert.NoError(t, err)
		subscriptions.AssertExpectations(t)
	})

	t.Run("acknowledges unknown kinds without effect", func(t *testing.T) {
		deposits, contributions, subscriptions, svc := newDispatcher()
		event := &shared.SettlementEvent{
			ExternalEventID: "evt_5",
			Kind:            shared.SettlementKind("chargeback"),
		}

		err := svc.ProcessEvent(context.Background(), event)

		assert.NoError(t, err)
		deposits.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
		contributions.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
		contributions.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything)
		subscriptions.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
	})

	t.Run("propagates settler failure for redelivery", func(t *testing.T) {
		deposits, _, _, svc := newDispatcher()
		event := &shared.SettlementEvent{
			ExternalEventID: "evt_6",
			Kind:            shared.SettlementWalletDeposit,
		}
		deposits.On("Settle", mock.Anything, event).Return(errors.New("deadlock detected"))

		err := svc.ProcessEvent(context.Background(), event)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "evt_6")
	})
}
