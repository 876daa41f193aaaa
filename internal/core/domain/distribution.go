package domain

import "github.com/shopspring/decimal"

// EventKind names the trigger of a distribution.
type EventKind string

const (
	EventLevelUpgrade EventKind = "LEVEL_UPGRADE"
	EventBetLoss      EventKind = "BET_LOSS"
)

// Share is one planned credit.
type Share struct {
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Role      CommissionRole  `json:"role"`
	Depth     int             `json:"depth"` // 1-based ancestor depth, 0 for funds
}

// Plan is the ordered list of credits a policy derives from an amount and an upline.
// Unassigned totals the shares whose ancestor depth had no recipient and that no other
// share absorbed.
type Plan struct {
	Kind       EventKind       `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Shares     []Share         `json:"shares"`
	Unassigned decimal.Decimal `json:"unassigned"`
}

// Distributed sums every planned share.
func (p Plan) Distributed() decimal.Decimal {
	total := decimal.Zero
	for _, s := range p.Shares {
		total = total.Add(s.Amount)
	}
	return total
}

// Recipients returns the distinct recipients in plan order.
func (p Plan) Recipients() []string {
	seen := make(map[string]struct{}, len(p.Shares))
	out := make([]string, 0, len(p.Shares))
	for _, s := range p.Shares {
		if _, ok := seen[s.Recipient]; ok {
			continue
		}
		seen[s.Recipient] = struct{}{}
		out = append(out, s.Recipient)
	}
	return out
}

// DistributionResult is what a caller of the distributor observes.
type DistributionResult struct {
	EventID    string          `json:"eventID"`
	Principal  string          `json:"principal"`
	Debited    decimal.Decimal `json:"debited"`
	Credited   decimal.Decimal `json:"credited"` // Paid back to the principal itself, e.g. a bet payout
	NewBalance decimal.Decimal `json:"newBalance"`
	Plan       Plan            `json:"plan"`
}

// DashboardStats summarises a user's ledger position.
type DashboardStats struct {
	Balance         decimal.Decimal `json:"balance"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalDeposit    decimal.Decimal `json:"totalDeposit"`
	TotalWithdrawal decimal.Decimal `json:"totalWithdrawal"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	CurrentLevel    int             `json:"currentLevel"`
	DirectUsers     int             `json:"directUsers"`
}
