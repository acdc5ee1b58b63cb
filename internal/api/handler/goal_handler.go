package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/the-giftist/funding-ledger/internal/api/service"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
)

// GoalHandler handles HTTP requests for item goal pricing
type GoalHandler struct {
	goalService service.GoalService
	logger      *slog.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(logger *slog.Logger, goalService service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		logger:      logger,
	}
}

// PriceGoal quotes a goal for the item at the given price and freezes it
func (h *GoalHandler) PriceGoal(c *gin.Context) {
	idParam := c.Param("id")
	itemID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	var req PriceGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.goalService.PriceItemGoal(c.Request.Context(), itemID, req.PriceValue)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound{}) {
			RespondNotFound(c, "Item not found")
			return
		}
		h.logger.Error("Failed to price item goal", "item_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, GoalResponse{
		ItemID:     itemID.String(),
		GoalAmount: quote.GoalAmount,
		FeeRate:    quote.FeeRate.String(),
		FeeAmount:  quote.FeeAmount,
	})
}
