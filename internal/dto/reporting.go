package dto

import (
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DashboardResponse summarises the caller's ledger position.
type DashboardResponse struct {
	Balance         decimal.Decimal `json:"balance"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	TotalDeposit    decimal.Decimal `json:"totalDeposit"`
	TotalWithdrawal decimal.Decimal `json:"totalWithdrawal"`
	TotalInvestment decimal.Decimal `json:"totalInvestment"`
	CurrentLevel    int             `json:"currentLevel"`
	DirectUsers     int             `json:"directUsers"`
}

// FundResponse is the balance of a system fund.
type FundResponse struct {
	Name      string          `json:"name"`
	Principal string          `json:"principal"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
}

// ToDashboardResponse converts domain.DashboardStats to a DashboardResponse.
func ToDashboardResponse(s *domain.DashboardStats) DashboardResponse {
	return DashboardResponse{
		Balance:         s.Balance,
		TotalEarnings:   s.TotalEarnings,
		TotalDeposit:    s.TotalDeposit,
		TotalWithdrawal: s.TotalWithdrawal,
		TotalInvestment: s.TotalInvestment,
		CurrentLevel:    s.CurrentLevel,
		DirectUsers:     s.DirectUsers,
	}
}

// ToFundResponse converts a fund account to a FundResponse.
func ToFundResponse(name string, acc *domain.Account) FundResponse {
	return FundResponse{
		Name:      name,
		Principal: acc.Principal,
		Balance:   acc.Balance,
		Version:   acc.Version,
	}
}
