package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/the-giftist/funding-ledger/internal/api/service"
	"github.com/the-giftist/funding-ledger/internal/domain/catalog"
	"github.com/the-giftist/funding-ledger/internal/domain/contribution"
	"github.com/the-giftist/funding-ledger/internal/domain/shared"
	"github.com/the-giftist/funding-ledger/internal/payments"
)

func setupContributionRouter(mockService *MockContributionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewContributionHandler(newTestLogger(), mockService)
	router := gin.New()
	router.POST("/contributions", h.Open)
	router.POST("/contributions/:id/charges", h.Charge)
	router.GET("/items/:id/contributions", h.ListByItem)
	router.GET("/events/:id/contributions", h.ListByEvent)
	return router
}

func TestContributionHandler_Open(t *testing.T) {
	itemID := uuid.New()

	makeRequest := func(router *gin.Engine, body OpenContributionRequest) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req, _ := http.NewRequest(http.MethodPost, "/contributions", bytes.NewReader(raw))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("HostedCheckoutReturnsRedirect", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		c, err := contribution.New(contribution.ItemTarget(itemID), 5000, nil, "friend@example.com", "happy birthday", false, shared.ProviderHostedCheckout)
		require.NoError(t, err)
		mockService.On("Open", mock.Anything, mock.MatchedBy(func(params service.OpenParams) bool {
			return params.Target.Kind == contribution.TargetItem &&
				params.Target.ID == itemID &&
				params.Amount == 5000 &&
				params.Provider == shared.ProviderHostedCheckout
		})).Return(&service.OpenResult{Contribution: c, RedirectURL: "https://pay.example/cs_1"}, nil).Once()

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind:       "ITEM",
			TargetID:         itemID.String(),
			Amount:           5000,
			ContributorEmail: "friend@example.com",
			Message:          "happy birthday",
			Provider:         "HOSTED_CHECKOUT",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "PENDING", data["status"])
		assert.Equal(t, "https://pay.example/cs_1", data["redirect_url"])
		mockService.AssertExpectations(t)
	})

	t.Run("TokenizedRailReturnsClientToken", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		c, err := contribution.New(contribution.ItemTarget(itemID), 2000, nil, "", "", true, shared.ProviderTokenizedA)
		require.NoError(t, err)
		mockService.On("Open", mock.Anything, mock.MatchedBy(func(params service.OpenParams) bool {
			return params.Anonymous && params.Provider == shared.ProviderTokenizedA
		})).Return(&service.OpenResult{Contribution: c, ClientToken: "tok_1"}, nil).Once()

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind:  "ITEM",
			TargetID:    itemID.String(),
			Amount:      2000,
			IsAnonymous: true,
			Provider:    "TOKENIZED_A",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "tok_1", data["client_token"])
	})

	t.Run("RejectsUnknownProvider", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind: "ITEM",
			TargetID:   itemID.String(),
			Amount:     2000,
			Provider:   "CASH_IN_ENVELOPE",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("MapsExceedsRemainingTo400", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("Open", mock.Anything, mock.AnythingOfType("service.OpenParams")).
			Return(nil, contribution.ErrExceedsRemaining{TargetID: itemID, Remaining: 700}).Once()

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind: "ITEM",
			TargetID:   itemID.String(),
			Amount:     5000,
			Provider:   "HOSTED_CHECKOUT",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("MapsAlreadyPurchasedTo409", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("Open", mock.Anything, mock.AnythingOfType("service.OpenParams")).
			Return(nil, catalog.ErrAlreadyPurchased{ItemID: itemID}).Once()

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind: "ITEM",
			TargetID:   itemID.String(),
			Amount:     5000,
			Provider:   "HOSTED_CHECKOUT",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("MapsMissingItemTo404", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("Open", mock.Anything, mock.AnythingOfType("service.OpenParams")).
			Return(nil, catalog.ErrItemNotFound{ItemID: itemID}).Once()

		rr := makeRequest(router, OpenContributionRequest{
			TargetKind: "ITEM",
			TargetID:   itemID.String(),
			Amount:     5000,
			Provider:   "HOSTED_CHECKOUT",
		})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestContributionHandler_Charge(t *testing.T) {
	contributionID := uuid.New()

	post := func(router *gin.Engine, id string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(ChargeRequest{PaymentToken: "nonce_1"})
		req, _ := http.NewRequest(http.MethodPost, "/contributions/"+id+"/charges", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("ReturnsChargeOutcome", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("ChargeTokenized", mock.Anything, contributionID, "nonce_1").
			Return(&payments.ChargeResult{ChargeID: "ch_1", Approved: true}, nil).Once()

		rr := post(router, contributionID.String())

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["approved"])
	})

	t.Run("ReportsDecline", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("ChargeTokenized", mock.Anything, contributionID, "nonce_1").
			Return(&payments.ChargeResult{Approved: false, Declined: "card_declined"}, nil).Once()

		rr := post(router, contributionID.String())

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, false, data["approved"])
		assert.Equal(t, "card_declined", data["decline_reason"])
	})

	t.Run("MapsTerminalStateTo409", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		mockService.On("ChargeTokenized", mock.Anything, contributionID, "nonce_1").
			Return(nil, contribution.ErrTerminalState{ContributionID: contributionID, Status: contribution.StatusFailed}).Once()

		rr := post(router, contributionID.String())

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("RejectsMalformedID", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		rr := post(router, "not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ChargeTokenized", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestContributionHandler_List(t *testing.T) {
	itemID := uuid.New()

	t.Run("AnonymousRowsDropIdentity", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		contributorID := uuid.New()
		anon, err := contribution.New(contribution.ItemTarget(itemID), 1000, &contributorID, "secret@example.com", "", true, shared.ProviderHostedCheckout)
		require.NoError(t, err)
		open, err := contribution.New(contribution.ItemTarget(itemID), 2000, &contributorID, "visible@example.com", "", false, shared.ProviderHostedCheckout)
		require.NoError(t, err)

		target := contribution.ItemTarget(itemID)
		mockService.On("ListByTarget", mock.Anything, target, 1, 20).
			Return([]*contribution.Contribution{anon, open}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/items/"+itemID.String()+"/contributions", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		rows := resp.Data.([]interface{})
		require.Len(t, rows, 2)

		anonRow := rows[0].(map[string]interface{})
		assert.Equal(t, float64(1000), anonRow["amount"])
		assert.NotContains(t, anonRow, "contributor_id")
		assert.NotContains(t, anonRow, "contributor_email")

		openRow := rows[1].(map[string]interface{})
		assert.Equal(t, contributorID.String(), openRow["contributor_id"])
		assert.Equal(t, "visible@example.com", openRow["contributor_email"])
	})

	t.Run("EventListUsesEventTarget", func(t *testing.T) {
		mockService := new(MockContributionService)
		router := setupContributionRouter(mockService)

		eventID := uuid.New()
		target := contribution.EventTarget(eventID)
		mockService.On("ListByTarget", mock.Anything, target, 1, 20).
			Return([]*contribution.Contribution{}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/events/"+eventID.String()+"/contributions", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})
}
