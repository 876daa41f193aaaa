package dto

import (
	"time"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletRequest defines the payload for opening a deposit or withdrawal request.
type WalletRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	Description string          `json:"description" binding:"max=255"`
}

// ListTransactionsParams defines query parameters for listing ledger rows.
type ListTransactionsParams struct {
	Limit     int    `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken string `form:"nextToken"`
}

// ListParams defines a plain page size.
type ListParams struct {
	Limit int `form:"limit,default=20" binding:"min=1,max=200"`
}

// BalanceResponse is the balance of one principal.
type BalanceResponse struct {
	Principal string          `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransactionResponse defines the structure for a ledger row returned by the API.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	Principal     string          `json:"principal"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Counterparty  *string         `json:"counterparty,omitempty"`
	Role          *string         `json:"role,omitempty"`
	Depth         *int            `json:"depth,omitempty"`
	ReviewedBy    *string         `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListTransactionsResponse wraps a page of ledger rows.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// CommissionResponse is one commission earned by the caller.
type CommissionResponse struct {
	CommissionID  string          `json:"commissionID"`
	SourceUser    string          `json:"sourceUser"`
	Amount        decimal.Decimal `json:"amount"`
	Role          string          `json:"role"`
	Depth         int             `json:"depth"`
	TransactionID string          `json:"transactionID"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to a TransactionResponse.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: t.TransactionID,
		Principal:     t.Principal,
		Amount:        t.Amount,
		Kind:          string(t.Kind),
		Status:        string(t.Status),
		Description:   t.Description,
		Counterparty:  t.Counterparty,
		Depth:         t.Depth,
		ReviewedBy:    t.ReviewedBy,
		ReviewedAt:    t.ReviewedAt,
		CreatedAt:     t.CreatedAt,
	}
	if t.Role != nil {
		role := string(*t.Role)
		resp.Role = &role
	}
	return resp
}

// ToTransactionResponses converts a slice of domain.Transaction.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ToCommissionResponses converts a slice of domain.Commission.
func ToCommissionResponses(commissions []domain.Commission) []CommissionResponse {
	res := make([]CommissionResponse, len(commissions))
	for i, c := range commissions {
		res[i] = CommissionResponse{
			CommissionID:  c.CommissionID,
			SourceUser:    c.SourceUser,
			Amount:        c.Amount,
			Role:          string(c.Role),
			Depth:         c.Depth,
			TransactionID: c.TransactionID,
			CreatedAt:     c.CreatedAt,
		}
	}
	return res
}
