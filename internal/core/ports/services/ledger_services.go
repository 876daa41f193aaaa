package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerSvc reads balances and ledger rows
type LedgerSvc interface {
	// GetBalance returns principal's balance. Principals without an account hold zero.
	GetBalance(ctx context.Context, principal string) (decimal.Decimal, error)

	// GetTransaction returns one ledger row owned by principal.
	GetTransaction(ctx context.Context, principal string, transactionID string) (*domain.Transaction, error)

	// ListTransactions pages through principal's rows, newest first.
	ListTransactions(ctx context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListCommissions returns principal's earnings records, newest first.
	ListCommissions(ctx context.Context, principal string, limit int) ([]domain.Commission, error)
}

// FundSvc exposes the system funds by name
type FundSvc interface {
	// GetFund returns the fund's account. A fund that was never credited reports a zero balance.
	GetFund(ctx context.Context, name string) (*domain.Account, error)

	// ListFunds returns every known fund.
	ListFunds(ctx context.Context) ([]domain.Account, error)
}
