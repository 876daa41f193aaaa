package repositories

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CommissionReader defines read operations for earnings records
type CommissionReader interface {
	// SumCommissionsByRecipient totals everything recipient has earned.
	SumCommissionsByRecipient(ctx context.Context, recipient string) (decimal.Decimal, error)

	// ListCommissionsByRecipient returns recipient's earnings records, newest first.
	ListCommissionsByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Commission, error)
}

// CommissionTxWriter records earnings inside a unit of work
type CommissionTxWriter interface {
	SaveCommissions(ctx context.Context, commissions []domain.Commission) error
}
