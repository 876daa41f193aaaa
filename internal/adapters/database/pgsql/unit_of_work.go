package pgsql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultLockTimeout bounds how long a unit waits for a row lock before reporting a conflict.
const defaultLockTimeout = 5 * time.Second

// PgxUnitOfWork runs units of work as read-committed transactions. Rows a unit changes are
// locked with SELECT ... FOR UPDATE in principal order, so concurrent units serialize per
// account and cannot deadlock on each other's lock order.
type PgxUnitOfWork struct {
	BaseRepository
	lockTimeout time.Duration
}

func newPgxUnitOfWork(pool *pgxpool.Pool, lockTimeout time.Duration) *PgxUnitOfWork {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}, lockTimeout: lockTimeout}
}

var _ portsrepo.UnitOfWork = (*PgxUnitOfWork)(nil)

// WithinTx implements portsrepo.UnitOfWork.
func (u *PgxUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := u.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			slog.WarnContext(ctx, "Rollback after failed unit of work failed", slog.String("error", rbErr.Error()))
		}
	}()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())); err != nil {
		return mapPgError(err, "failed to set lock timeout")
	}

	if err := fn(ctx, &pgxUnit{tx: tx}); err != nil {
		return err
	}
	return u.Commit(ctx, tx)
}

// pgxUnit exposes the tx-scoped writers. Every statement runs on the same pgx.Tx.
type pgxUnit struct {
	tx pgx.Tx
}

var (
	_ portsrepo.TxRepositories      = (*pgxUnit)(nil)
	_ portsrepo.AccountTxWriter     = (*pgxUnit)(nil)
	_ portsrepo.TransactionTxWriter = (*pgxUnit)(nil)
	_ portsrepo.UserLevelTxWriter   = (*pgxUnit)(nil)
	_ portsrepo.CommissionTxWriter  = (*pgxUnit)(nil)
)

func (u *pgxUnit) Accounts() portsrepo.AccountTxWriter         { return u }
func (u *pgxUnit) Transactions() portsrepo.TransactionTxWriter { return u }
func (u *pgxUnit) Levels() portsrepo.UserLevelTxWriter         { return u }
func (u *pgxUnit) Commissions() portsrepo.CommissionTxWriter   { return u }
