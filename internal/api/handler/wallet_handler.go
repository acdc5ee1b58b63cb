package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/api/service"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/wallet"
)

// WalletHandler handles HTTP requests for custodial wallet operations
type WalletHandler struct {
	walletService service.WalletService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// Get returns the user's wallet, creating an empty one on first access
func (h *WalletHandler) Get(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	w, err := h.walletService.GetOrCreateWallet(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get wallet", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapWalletToResponse(w))
}

// RequestDeposit opens a hosted checkout session for a wallet top-up
func (h *WalletHandler) RequestDeposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	userID := uuid.MustParse(req.UserID)

	intent, err := h.walletService.RequestDeposit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		if errors.Is(err, wallet.ErrDepositOutOfRange{}) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to request deposit", "user_id", req.UserID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, DepositResponse{
		TransactionID: intent.Transaction.ID.String(),
		SessionID:     intent.SessionID,
		RedirectURL:   intent.RedirectURL,
		Amount:        intent.Transaction.Amount,
	})
}

// FundItem moves wallet balance onto an item the user owns
func (h *WalletHandler) FundItem(c *gin.Context) {
	var req FundItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	userID := uuid.MustParse(req.UserID)
	itemID := uuid.MustParse(req.ItemID)

	txn, err := h.walletService.FundItemFromWallet(c.Request.Context(), userID, itemID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, contribution.ErrExceedsRemaining{}):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, wallet.ErrWalletNotFound{}):
			RespondNotFound(c, "Wallet not found")
		case errors.Is(err, catalog.ErrItemNotFound{}):
			RespondNotFound(c, "Item not found")
		case isNotOwned(err):
			RespondConflict(c, err.Error())
		case errors.Is(err, catalog.ErrAlreadyPurchased{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, catalog.ErrAlreadyFunded{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, wallet.ErrInsufficientBalance{}):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to fund item from wallet",
				"user_id", req.UserID,
				"item_id", req.ItemID,
				"error", err,
			)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Withdraw debits the wallet balance for payout
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	userID := uuid.MustParse(req.UserID)

	txn, err := h.walletService.Withdraw(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, wallet.ErrWalletNotFound{}):
			RespondNotFound(c, "Wallet not found")
		case errors.Is(err, wallet.ErrInsufficientBalance{}):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to withdraw", "user_id", req.UserID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// ListTransactions returns the wallet's ledger rows, newest first
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	transactions, err := h.walletService.ListTransactions(c.Request.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to list wallet transactions", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]WalletTransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		responses = append(responses, mapTransactionToResponse(txn))
	}
	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage)
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("user_id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func isNotOwned(err error) bool {
	var notOwned catalog.ErrNotOwned
	return errors.As(err, &notOwned)
}

func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		UserID:    w.UserID.String(),
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func mapTransactionToResponse(t *wallet.Transaction) WalletTransactionResponse {
	resp := WalletTransactionResponse{
		ID:        t.ID.String(),
		WalletID:  t.WalletID.String(),
		Type:      string(t.Type),
		Amount:    t.Amount,
		Status:    string(t.Status),
		SessionID: t.SessionID,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.ItemID != nil {
		resp.ItemID = t.ItemID.String()
	}
	if t.CompletedAt != nil {
		resp.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
