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
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
)

// ContributionHandler handles HTTP requests for contribution operations
type ContributionHandler struct {
	contributionService service.ContributionService
	logger              *slog.Logger
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(logger *slog.Logger, contributionService service.ContributionService) *ContributionHandler {
	return &ContributionHandler{
		contributionService: contributionService,
		logger:              logger,
	}
}

// Open validates and records a PENDING contribution, returning the payment
// handle for the chosen provider
func (h *ContributionHandler) Open(c *gin.Context) {
	var req OpenContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	targetID := uuid.MustParse(req.TargetID)
	target := contribution.ItemTarget(targetID)
	if contribution.TargetKind(req.TargetKind) == contribution.TargetEvent {
		target = contribution.EventTarget(targetID)
	}

	var contributorID *uuid.UUID
	if req.ContributorID != "" {
		id := uuid.MustParse(req.ContributorID)
		contributorID = &id
	}

	result, err := h.contributionService.Open(c.Request.Context(), service.OpenParams{
		Target:        target,
		Amount:        req.Amount,
		ContributorID: contributorID,
		Email:         req.ContributorEmail,
		Message:       req.Message,
		Anonymous:     req.IsAnonymous,
		Provider:      shared.PaymentProvider(req.Provider),
	})
	if err != nil {
		switch {
		case errors.Is(err, contribution.ErrInvalidAmount):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, contribution.ErrExceedsRemaining{}):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, catalog.ErrItemNotFound{}):
			RespondNotFound(c, "Item not found")
		case errors.Is(err, catalog.ErrEventNotFound{}):
			RespondNotFound(c, "Event not found")
		case errors.Is(err, catalog.ErrAlreadyPurchased{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, catalog.ErrAlreadyFunded{}):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to open contribution",
				"target_kind", req.TargetKind,
				"target_id", req.TargetID,
				"error", err,
			)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, OpenContributionResponse{
		ContributionID: result.Contribution.ID.String(),
		Status:         string(result.Contribution.Status),
		RedirectURL:    result.RedirectURL,
		ClientToken:    result.ClientToken,
	})
}

// Charge executes a synchronous tokenized charge for an open contribution
func (h *ContributionHandler) Charge(c *gin.Context) {
	idParam := c.Param("id")
	contributionID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid contribution ID")
		return
	}

	var req ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.contributionService.ChargeTokenized(c.Request.Context(), contributionID, req.PaymentToken)
	if err != nil {
		switch {
		case errors.Is(err, contribution.ErrNotFound{}):
			RespondNotFound(c, "Contribution not found")
		case errors.Is(err, contribution.ErrTerminalState{}):
			RespondConflict(c, err.Error())
		case errors.Is(err, shared.ErrInvalidProvider):
			RespondBadRequest(c, "Contribution is not on a tokenized rail")
		default:
			h.logger.Error("Failed to charge contribution", "contribution_id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, ChargeResponse{
		ContributionID: contributionID.String(),
		Approved:       result.Approved,
		DeclineReason:  result.Declined,
	})
}

// ListByItem returns visible contributions for an item, newest first
func (h *ContributionHandler) ListByItem(c *gin.Context) {
	h.listByTarget(c, contribution.TargetItem)
}

// ListByEvent returns visible contributions for an event, newest first
func (h *ContributionHandler) ListByEvent(c *gin.Context) {
	h.listByTarget(c, contribution.TargetEvent)
}

func (h *ContributionHandler) listByTarget(c *gin.Context, kind contribution.TargetKind) {
	idParam := c.Param("id")
	targetID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid target ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	target := contribution.Target{Kind: kind, ID: targetID}
	contributions, err := h.contributionService.ListByTarget(c.Request.Context(), target, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list contributions",
			"target_kind", string(kind),
			"target_id", idParam,
			"error", err,
		)
		RespondInternalError(c)
		return
	}

	responses := make([]ContributionResponse, 0, len(contributions))
	for _, contrib := range contributions {
		responses = append(responses, mapContributionToResponse(contrib))
	}
	RespondWithPaginatedData(c, http.StatusOK, responses, params.Page, params.PerPage)
}

// mapContributionToResponse maps a contribution to its API shape. Anonymous
// rows keep their amounts but drop contributor identity.
func mapContributionToResponse(c *contribution.Contribution) ContributionResponse {
	resp := ContributionResponse{
		ID:          c.ID.String(),
		TargetKind:  string(c.Target.Kind),
		TargetID:    c.Target.ID.String(),
		Amount:      c.Amount,
		Message:     c.Message,
		IsAnonymous: c.IsAnonymous,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
	if !c.IsAnonymous {
		if c.ContributorID != nil {
			resp.ContributorID = c.ContributorID.String()
		}
		resp.ContributorEmail = c.ContributorEmail
	}
	return resp
}
