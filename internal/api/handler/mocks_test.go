package handler

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/the-giftist/funding-ledger/internal/api/service"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/fees"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/payments"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) RequestDeposit(ctx context.Context, userID uuid.UUID, amount int64) (*service.DepositIntent, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DepositIntent), args.Error(1)
}

func (m *MockWalletService) FundItemFromWallet(ctx context.Context, userID, itemID uuid.UUID, amount int64) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, itemID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockWalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount int64) (*wallet.Transaction, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockWalletService) ListTransactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*wallet.Transaction, error) {
	args := m.Called(ctx, userID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Transaction), args.Error(1)
}

type MockContributionService struct {
	mock.Mock
}

func (m *MockContributionService) Open(ctx context.Context, params service.OpenParams) (*service.OpenResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OpenResult), args.Error(1)
}

func (m *MockContributionService) ChargeTokenized(ctx context.Context, contributionID uuid.UUID, paymentToken string) (*payments.ChargeResult, error) {
	args := m.Called(ctx, contributionID, paymentToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.ChargeResult), args.Error(1)
}

func (m *MockContributionService) ListByTarget(ctx context.Context, target contribution.Target, page, perPage int) ([]*contribution.Contribution, error) {
	args := m.Called(ctx, target, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contribution.Contribution), args.Error(1)
}

type MockGoalService struct {
	mock.Mock
}

func (m *MockGoalService) PriceItemGoal(ctx context.Context, itemID uuid.UUID, priceCents int64) (*fees.Quote, error) {
	args := m.Called(ctx, itemID, priceCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fees.Quote), args.Error(1)
}

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
