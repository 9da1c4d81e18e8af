package handler

// CreateAccountRequest represents a request to create a new wallet account
type CreateAccountRequest struct {
	OwnerID        string `json:"owner_id" binding:"required,uuid"`
	Currency       string `json:"currency" binding:"required,len=3"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// PatchAccountRequest represents a partial account update. Absent fields are
// left untouched.
type PatchAccountRequest struct {
	OwnerID  *string `json:"owner_id,omitempty" binding:"omitempty,uuid"`
	Currency *string `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Currency   string `json:"currency"`
	Balance    int64  `json:"balance"`
	ArchivedAt string `json:"archived_at,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// BalanceResponse represents an account balance in API responses
type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Currency  string `json:"currency"`
	Balance   int64  `json:"balance"`
}

// CreateItemRequest represents a request to create a catalog item
type CreateItemRequest struct {
	MerchantAccountID string `json:"merchant_account_id" binding:"required,uuid"`
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description,omitempty"`
	Price             int64  `json:"price" binding:"required,gt=0"`
	Currency          string `json:"currency" binding:"required,len=3"`
}

// PatchItemRequest represents a partial item update
type PatchItemRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gt=0"`
	Currency    *string `json:"currency,omitempty" binding:"omitempty,len=3"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	ID                string `json:"id"`
	MerchantAccountID string `json:"merchant_account_id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	Price             int64  `json:"price"`
	Currency          string `json:"currency"`
	ArchivedAt        string `json:"archived_at,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

// PurchaseRequest represents a request to buy a catalog item
type PurchaseRequest struct {
	BuyerAccountID string `json:"buyer_account_id" binding:"required,uuid"`
	ItemID         string `json:"item_id" binding:"required,uuid"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ExchangeRequest represents a request to convert between currencies
type ExchangeRequest struct {
	AccountID      string `json:"account_id" binding:"required,uuid"`
	FromCurrency   string `json:"from_currency" binding:"required,len=3"`
	ToCurrency     string `json:"to_currency" binding:"required,len=3"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// QuoteRequest represents a conversion preview request. No balances move.
type QuoteRequest struct {
	FromCurrency string `form:"from" binding:"required,len=3"`
	ToCurrency   string `form:"to" binding:"required,len=3"`
	Amount       int64  `form:"amount" binding:"required,gt=0"`
}

// QuoteResponse represents the result of a conversion preview
type QuoteResponse struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	Amount       int64  `json:"amount"`
	BaseAmount   int64  `json:"base_amount"`
	Result       int64  `json:"result"`
}

// AdjustmentRequest represents a deposit or withdrawal request
type AdjustmentRequest struct {
	AccountID      string `json:"account_id" binding:"required,uuid"`
	Amount         int64  `json:"amount" binding:"required,gt=0"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// RecordResponse represents a transaction record in API responses
type RecordResponse struct {
	ID                    string `json:"id"`
	AccountID             string `json:"account_id"`
	CounterpartyAccountID string `json:"counterparty_account_id,omitempty"`
	Kind                  string `json:"kind"`
	Amount                int64  `json:"amount"`
	Currency              string `json:"currency"`
	BaseAmount            int64  `json:"base_amount"`
	ConvertedAmount       int64  `json:"converted_amount,omitempty"`
	ToCurrency            string `json:"to_currency,omitempty"`
	Status                string `json:"status"`
	FailureReason         string `json:"failure_reason,omitempty"`
	CreatedAt             string `json:"created_at"`
}

// RecordListResponse represents a list of transaction records
type RecordListResponse struct {
	Records []RecordResponse `json:"records"`
}

// RateEntry represents one rate table row
type RateEntry struct {
	Code       string `json:"code" binding:"required,len=3"`
	RateToBase string `json:"rate_to_base" binding:"required"`
	MinorUnits int32  `json:"minor_units" binding:"min=0"`
}

// RefreshRatesRequest replaces the whole non-base rate table atomically
type RefreshRatesRequest struct {
	Entries []RateEntry `json:"entries" binding:"required,min=1,dive"`
}

// RatesResponse represents the active rate table
type RatesResponse struct {
	BaseCurrency string      `json:"base_currency"`
	Entries      []RateEntry `json:"entries"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
