package repositories

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader defines read operations for ledger rows
type TransactionReader interface {
	// FindTransactionByID retrieves one ledger row.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByPrincipal returns a page of rows for principal, newest first,
	// and a token for the next page when there is one.
	ListTransactionsByPrincipal(ctx context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListPendingTransactions returns PENDING requests, oldest first.
	ListPendingTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)

	// SumTransactions totals the amounts of principal's rows of the given kind and status.
	SumTransactions(ctx context.Context, principal string, kind domain.TransactionKind, status domain.TransactionStatus) (decimal.Decimal, error)
}

// TransactionTxWriter defines the ledger operations available inside a unit of work
type TransactionTxWriter interface {
	// SaveTransactions appends rows to the ledger.
	SaveTransactions(ctx context.Context, transactions []domain.Transaction) error

	// FindTransactionForUpdate retrieves a row and locks it until the unit ends.
	FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// UpdateTransactionReview persists the status and reviewer of a reviewed request.
	UpdateTransactionReview(ctx context.Context, transaction domain.Transaction) error
}
