package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/payments"
)

// ContributionServiceImpl implements the ContributionService interface
type ContributionServiceImpl struct {
	contribRepo contribution.Repository
	catalogRepo catalog.Repository
	checkout    payments.CheckoutProvider
	tokenized   payments.TokenizedProvider
	logger      *slog.Logger
}

// NewContributionService creates a new contribution service
func NewContributionService(
	logger *slog.Logger,
	contribRepo contribution.Repository,
	catalogRepo catalog.Repository,
	checkout payments.CheckoutProvider,
	tokenized payments.TokenizedProvider,
) ContributionService {
	return &ContributionServiceImpl{
		contribRepo: contribRepo,
		catalogRepo: catalogRepo,
		checkout:    checkout,
		tokenized:   tokenized,
		logger:      logger,
	}
}

// Open validates the target, records a PENDING contribution and obtains the
// payment handle. The row is durable before any provider call, so a provider
// outage leaves a PENDING row that the failure webhook can resolve later.
func (s *ContributionServiceImpl) Open(ctx context.Context, params OpenParams) (*OpenResult, error) {
	if err := s.validateTarget(ctx, params.Target, params.Amount); err != nil {
		return nil, err
	}

	c, err := contribution.New(
		params.Target,
		params.Amount,
		params.ContributorID,
		params.Email,
		params.Message,
		params.Anonymous,
		params.Provider,
	)
	if err != nil {
		return nil, err
	}

	if err := s.contribRepo.Create(ctx, c); err != nil {
		s.logger.Error("Failed to record pending contribution",
			"target_kind", string(params.Target.Kind),
			"target_id", params.Target.ID.String(),
			"error", err,
		)
		return nil, err
	}

	result := &OpenResult{Contribution: c}
	switch params.Provider {
	case shared.ProviderHostedCheckout:
		kind := shared.SettlementItemContribution
		if params.Target.Kind == contribution.TargetEvent {
			kind = shared.SettlementEventContribution
		}
		session, err := s.checkout.CreateCheckoutSession(ctx, payments.CheckoutRequest{
			Kind:          kind,
			AmountCents:   params.Amount,
			ReferenceID:   c.ID,
			CustomerEmail: params.Email,
		})
		if err != nil {
			s.logger.Error("Failed to create contribution checkout session",
				"contribution_id", c.ID.String(),
				"error", err,
			)
			return nil, err
		}
		result.RedirectURL = session.RedirectURL
	default:
		token, err := s.tokenized.ClientToken(ctx, params.Provider)
		if err != nil {
			s.logger.Error("Failed to obtain client token",
				"contribution_id", c.ID.String(),
				"provider", string(params.Provider),
				"error", err,
			)
			return nil, err
		}
		result.ClientToken = token
	}

	s.logger.Info("Contribution opened",
		"contribution_id", c.ID.String(),
		"target_kind", string(params.Target.Kind),
		"target_id", params.Target.ID.String(),
		"amount", params.Amount,
		"provider", string(params.Provider),
	)
	return result, nil
}

// validateTarget checks the target can still accept the amount. The checks
// are advisory; racing contributions that individually pass may together
// settle past the goal.
func (s *ContributionServiceImpl) validateTarget(ctx context.Context, target contribution.Target, amount int64) error {
	if amount <= 0 {
		return contribution.ErrInvalidAmount
	}

	switch target.Kind {
	case contribution.TargetItem:
		item, err := s.catalogRepo.GetItem(ctx, target.ID)
		if err != nil {
			return err
		}
		if item.IsPurchased {
			return catalog.ErrAlreadyPurchased{ItemID: item.ID}
		}
		if item.FullyFunded() {
			return catalog.ErrAlreadyFunded{ItemID: item.ID}
		}
		if remaining, bounded := item.Remaining(); bounded && amount > remaining {
			return contribution.ErrExceedsRemaining{TargetID: item.ID, Remaining: remaining}
		}
		return nil
	case contribution.TargetEvent:
		_, err := s.catalogRepo.GetEvent(ctx, target.ID)
		return err
	default:
		return contribution.ErrEmptyTarget
	}
}

// ChargeTokenized executes a synchronous charge against the payment token. A
// decline marks the row FAILED immediately; approval leaves it PENDING until
// the settlement webhook confirms the payment.
func (s *ContributionServiceImpl) ChargeTokenized(ctx context.Context, contributionID uuid.UUID, paymentToken string) (*payments.ChargeResult, error) {
	c, err := s.contribRepo.GetByID(ctx, contributionID)
	if err != nil {
		return nil, err
	}
	if c.Status != contribution.StatusPending {
		return nil, contribution.ErrTerminalState{ContributionID: c.ID, Status: c.Status}
	}
	if c.Provider == shared.ProviderHostedCheckout {
		return nil, shared.ErrInvalidProvider
	}

	result, err := s.tokenized.Charge(ctx, payments.ChargeRequest{
		Provider:     c.Provider,
		PaymentToken: paymentToken,
		AmountCents:  c.Amount,
		ReferenceID:  c.ID,
	})
	if err != nil {
		s.logger.Error("Tokenized charge failed",
			"contribution_id", c.ID.String(),
			"provider", string(c.Provider),
			"error", err,
		)
		return nil, err
	}

	if !result.Approved {
		applied, failErr := s.contribRepo.MarkFailed(ctx, c.ID)
		if failErr != nil {
			s.logger.Error("Failed to mark declined contribution",
				"contribution_id", c.ID.String(),
				"error", failErr,
			)
			return nil, failErr
		}
		s.logger.Info("Contribution declined",
			"contribution_id", c.ID.String(),
			"decline_reason", result.Declined,
			"applied", applied,
		)
		return result, nil
	}

	s.logger.Info("Tokenized charge approved",
		"contribution_id", c.ID.String(),
		"charge_id", result.ChargeID,
	)
	return result, nil
}

// ListByTarget returns PENDING and COMPLETED contributions for the target,
// newest first
func (s *ContributionServiceImpl) ListByTarget(ctx context.Context, target contribution.Target, page, perPage int) ([]*contribution.Contribution, error) {
	offset := (page - 1) * perPage
	return s.contribRepo.ListVisibleByTarget(ctx, target, perPage, offset)
}
