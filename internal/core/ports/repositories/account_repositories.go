package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByPrincipal retrieves the account owned by principal, or apperrors.ErrNotFound.
	FindAccountByPrincipal(ctx context.Context, principal string) (*domain.Account, error)
}

// AccountTxWriter defines the account operations available inside a unit of work
type AccountTxWriter interface {
	// LockAccounts returns the accounts of the given principals, creating zero-balance
	// accounts for missing ones. The accounts stay locked until the unit ends.
	LockAccounts(ctx context.Context, principals []string) (map[string]domain.Account, error)

	// UpdateBalances persists new balances for accounts locked in this unit.
	UpdateBalances(ctx context.Context, balances map[string]decimal.Decimal, now time.Time) error
}
