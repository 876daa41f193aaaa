package policy

import (
	"fmt"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

var (
	betLossUplineRates = rates("0.11", "0.09", "0.02", "0.015", "0.015")
	salaryFundRate     = decimal.RequireFromString("0.10")
	reserveFundRate    = decimal.RequireFromString("0.65")
)

func init() {
	total := sum(betLossUplineRates...).Add(salaryFundRate).Add(reserveFundRate)
	if !total.Equal(decimal.NewFromInt(1)) {
		panic(fmt.Sprintf("bet loss rates sum to %s, want 1", total.String()))
	}
}

// BetLoss distributes the whole lost amount: up to five ancestors, the salary fund and the
// reserve fund. Shares of missing ancestors are added to the reserve fund's share.
type BetLoss struct{}

func (BetLoss) Kind() domain.EventKind { return domain.EventBetLoss }

func (BetLoss) Plan(amount decimal.Decimal, upline []string) (domain.Plan, error) {
	if err := ValidateAmount(amount); err != nil {
		return domain.Plan{}, err
	}
	upline = truncateUpline(upline)

	plan := domain.Plan{Kind: domain.EventBetLoss, Amount: amount, Unassigned: decimal.Zero}
	reserve := amount.Mul(reserveFundRate)
	for i, rate := range betLossUplineRates {
		share := amount.Mul(rate)
		if i >= len(upline) {
			reserve = reserve.Add(share)
			continue
		}
		plan.Shares = append(plan.Shares, domain.Share{
			Recipient: upline[i],
			Amount:    share,
			Role:      domain.RoleUpline,
			Depth:     i + 1,
		})
	}
	plan.Shares = append(plan.Shares,
		domain.Share{Recipient: domain.SalaryFund.Principal(), Amount: amount.Mul(salaryFundRate), Role: domain.RoleSalaryFund},
		domain.Share{Recipient: domain.ReserveFund.Principal(), Amount: reserve, Role: domain.RoleReserveFund},
	)

	if err := checkConserved(plan, amount); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}
