package components

import (
	"log/slog"

	"github.com/the-giftist/funding-ledger/internal/config"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/earnings"
	"github.com/the-giftist/funding-ledger/internal/domain/outbox"
	"github.com/the-giftist/funding-ledger/internal/domain/subscription"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
	"github.com/the-giftist/funding-ledger/internal/platform/persistence"
	"github.com/the-giftist/funding-ledger/internal/settlement/service"
)

// CreateSettlementService builds the settlement dispatcher with all its
// branch settlers, wrapped in the bounded worker pool.
func CreateSettlementService(
	pgDB *persistence.PostgresDB,
	walletRepo wallet.Repository,
	contribRepo contribution.Repository,
	catalogRepo catalog.Repository,
	earningsRepo earnings.Repository,
	subscriptionRepo subscription.Repository,
	outboxRepo outbox.Repository,
	logger *slog.Logger,
	cfg *config.Config,
) service.SettlementService {
	deposits := NewDepositSettler(logger, pgDB, walletRepo, outboxRepo)
	contributions := NewContributionSettler(logger, pgDB, contribRepo, catalogRepo, earningsRepo, outboxRepo)
	subscriptions := NewSubscriptionSettler(logger, pgDB, subscriptionRepo, outboxRepo)

	baseService := service.NewSettlementService(logger, deposits, contributions, subscriptions)

	workerPoolService, err := service.NewWorkerPoolSettlementService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool settlement service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
