package repositories

import (
	"context"
)

// TxRepositories exposes the writers available inside one unit of work.
// Every write made through them commits or rolls back together.
type TxRepositories interface {
	Accounts() AccountTxWriter
	Transactions() TransactionTxWriter
	Levels() UserLevelTxWriter
	Commissions() CommissionTxWriter
}

// UnitOfWork runs fn as one all-or-nothing unit.
// If fn returns an error, or the commit fails, nothing fn wrote is visible to anyone.
// Contention surfaces as apperrors.ErrConcurrencyConflict and the whole unit may be retried.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxRepositories) error) error
}
