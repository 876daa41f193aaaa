package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DistributorSvc runs the money-moving operations. Each call is one all-or-nothing unit:
// on error no balance has changed and no ledger row exists.
type DistributorSvc interface {
	// ApplyUpgrade charges the price of level to userID, makes it the user's current level and
	// pays the upgrade commission to up to five ancestors. Repeat calls charge again.
	ApplyUpgrade(ctx context.Context, userID string, level int) (*domain.DistributionResult, error)

	// ApplyBetLoss charges a lost stake to userID and splits it across the upline and the funds.
	ApplyBetLoss(ctx context.Context, userID string, amount decimal.Decimal) (*domain.DistributionResult, error)

	// ApplyBetWin charges the stake and credits the payout. No commission is paid.
	ApplyBetWin(ctx context.Context, userID string, stake, payout decimal.Decimal) (*domain.DistributionResult, error)

	// ChargeRegistrationFee moves the configured registration fee from userID to the reserve fund.
	ChargeRegistrationFee(ctx context.Context, userID string) (*domain.DistributionResult, error)
}
