package policy

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// levelUpgradeRates are indexed by ancestor depth minus one, not by the ancestor's own level.
var levelUpgradeRates = rates("0.10", "0.08", "0.05", "0.03", "0.02")

// LevelUpgrade distributes part of an upgrade price to up to five ancestors.
// Shares of missing ancestors are not redirected; their total is reported as Unassigned.
// The rest of the price is never commission and appears in neither figure.
type LevelUpgrade struct{}

func (LevelUpgrade) Kind() domain.EventKind { return domain.EventLevelUpgrade }

func (LevelUpgrade) Plan(amount decimal.Decimal, upline []string) (domain.Plan, error) {
	if err := ValidateAmount(amount); err != nil {
		return domain.Plan{}, err
	}
	upline = truncateUpline(upline)

	plan := domain.Plan{Kind: domain.EventLevelUpgrade, Amount: amount, Unassigned: decimal.Zero}
	for i, rate := range levelUpgradeRates {
		share := amount.Mul(rate)
		if i >= len(upline) {
			plan.Unassigned = plan.Unassigned.Add(share)
			continue
		}
		plan.Shares = append(plan.Shares, domain.Share{
			Recipient: upline[i],
			Amount:    share,
			Role:      domain.RoleUpline,
			Depth:     i + 1,
		})
	}

	if err := checkConserved(plan, amount.Mul(sum(levelUpgradeRates...))); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}
