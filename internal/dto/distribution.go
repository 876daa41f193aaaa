package dto

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpgradeRequest defines the payload for buying a catalog level.
type UpgradeRequest struct {
	Level int `json:"level" binding:"required,min=1"`
}

// BetLossRequest defines the payload for settling a lost bet.
type BetLossRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
}

// BetWinRequest defines the payload for settling a won bet.
type BetWinRequest struct {
	Stake  decimal.Decimal `json:"stake" binding:"required,decimal_gt0"`
	Payout decimal.Decimal `json:"payout" binding:"required,decimal_gt0"`
}

// ShareResponse is one credit paid by a distribution.
type ShareResponse struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Role      string          `json:"role"`
	Depth     int             `json:"depth,omitempty"`
}

// DistributionResponse is returned by every trigger route.
type DistributionResponse struct {
	EventID     string          `json:"eventID"`
	Kind        string          `json:"kind,omitempty"`
	Principal   string          `json:"principal"`
	Debited     decimal.Decimal `json:"debited"`
	Credited    decimal.Decimal `json:"credited"`
	NewBalance  decimal.Decimal `json:"newBalance"`
	Distributed decimal.Decimal `json:"distributed"`
	Unassigned  decimal.Decimal `json:"unassigned"`
	Shares      []ShareResponse `json:"shares"`
}

// ToDistributionResponse converts a domain.DistributionResult to a DistributionResponse.
func ToDistributionResponse(r *domain.DistributionResult) DistributionResponse {
	shares := make([]ShareResponse, 0, len(r.Plan.Shares))
	for _, s := range r.Plan.Shares {
		shares = append(shares, ShareResponse{
			Recipient: s.Recipient,
			Amount:    s.Amount,
			Role:      string(s.Role),
			Depth:     s.Depth,
		})
	}
	return DistributionResponse{
		EventID:     r.EventID,
		Kind:        string(r.Plan.Kind),
		Principal:   r.Principal,
		Debited:     r.Debited,
		Credited:    r.Credited,
		NewBalance:  r.NewBalance,
		Distributed: r.Plan.Distributed(),
		Unassigned:  r.Plan.Unassigned,
		Shares:      shares,
	}
}
