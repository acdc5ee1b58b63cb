package handler

// DepositRequest asks for a hosted checkout session topping up the wallet
type DepositRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// DepositResponse carries the checkout redirect for a pending deposit
type DepositResponse struct {
	TransactionID string `json:"transaction_id"`
	SessionID     string `json:"session_id"`
	RedirectURL   string `json:"redirect_url"`
	Amount        int64  `json:"amount"`
}

// FundItemRequest moves wallet balance onto an item
type FundItemRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	ItemID string `json:"item_id" binding:"required,uuid"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// WithdrawRequest pays wallet balance out to the owner
type WithdrawRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Balance   int64  `json:"balance"`
	CreatedAt string `json:"created_at"`
}

// WalletTransactionResponse represents a wallet ledger entry in API responses
type WalletTransactionResponse struct {
	ID          string `json:"id"`
	WalletID    string `json:"wallet_id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	ItemID      string `json:"item_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// OpenContributionRequest opens a contribution toward an item or event
type OpenContributionRequest struct {
	TargetKind       string `json:"target_kind" binding:"required,oneof=ITEM EVENT"`
	TargetID         string `json:"target_id" binding:"required,uuid"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	ContributorID    string `json:"contributor_id,omitempty" binding:"omitempty,uuid"`
	ContributorEmail string `json:"contributor_email,omitempty" binding:"omitempty,email"`
	Message          string `json:"message,omitempty"`
	IsAnonymous      bool   `json:"is_anonymous"`
	Provider         string `json:"provider" binding:"required,oneof=HOSTED_CHECKOUT TOKENIZED_A TOKENIZED_B"`
}

// OpenContributionResponse returns the pending contribution and its payment
// handle: a redirect URL for hosted checkout, a client token for tokenized
// rails.
type OpenContributionResponse struct {
	ContributionID string `json:"contribution_id"`
	Status         string `json:"status"`
	RedirectURL    string `json:"redirect_url,omitempty"`
	ClientToken    string `json:"client_token,omitempty"`
}

// ChargeRequest executes a tokenized charge for an open contribution
type ChargeRequest struct {
	PaymentToken string `json:"payment_token" binding:"required"`
}

// ChargeResponse reports the synchronous charge outcome
type ChargeResponse struct {
	ContributionID string `json:"contribution_id"`
	Approved       bool   `json:"approved"`
	DeclineReason  string `json:"decline_reason,omitempty"`
}

// ContributionResponse represents a contribution in API responses. Anonymous
// rows keep their amounts but drop contributor identity.
type ContributionResponse struct {
	ID               string `json:"id"`
	TargetKind       string `json:"target_kind"`
	TargetID         string `json:"target_id"`
	Amount           int64  `json:"amount"`
	Message          string `json:"message,omitempty"`
	IsAnonymous      bool   `json:"is_anonymous"`
	ContributorID    string `json:"contributor_id,omitempty"`
	ContributorEmail string `json:"contributor_email,omitempty"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// PriceGoalRequest quotes and freezes a goal for a freshly priced item
type PriceGoalRequest struct {
	PriceValue int64 `json:"price_value" binding:"min=0"`
}

// GoalResponse reports the stored goal and the fee embedded in it
type GoalResponse struct {
	ItemID     string `json:"item_id"`
	GoalAmount *int64 `json:"goal_amount"`
	FeeRate    string `json:"fee_rate"`
	FeeAmount  int64  `json:"fee_amount"`
}

// WebhookEventRequest is the provider's signed settlement callback payload
type WebhookEventRequest struct {
	EventID        string `json:"event_id" binding:"required"`
	EventType      string `json:"event_type" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	AmountPaid     int64  `json:"amount_paid"`
	ContributionID string `json:"contribution_id,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	SubscriberID   string `json:"subscriber_id,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}
