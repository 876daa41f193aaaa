package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository port to the pool.
// lockTimeout bounds row-lock waits inside units of work; zero uses the default.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork:      newPgxUnitOfWork(dbPool, lockTimeout),
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
		LevelRepo:       newPgxLevelRepository(dbPool),
		CommissionRepo:  newPgxCommissionRepository(dbPool),
	}
}
