package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/models"
	"github.com/SscSPs/referral_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `principal, balance, version, created_at, updated_at`

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountReader = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(&m.Principal, &m.Balance, &m.Version, &m.CreatedAt, &m.LastUpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// FindAccountByPrincipal retrieves an account by its owner.
func (r *PgxAccountRepository) FindAccountByPrincipal(ctx context.Context, principal string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE principal = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, principal))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to find account "+principal)
	}
	return &acc, nil
}

// LockAccounts creates missing accounts, then locks every requested row in principal order.
// ON CONFLICT DO NOTHING makes a concurrent first use of the same fund safe: the loser of
// the insert race simply waits on the winner's row lock.
func (u *pgxUnit) LockAccounts(ctx context.Context, principals []string) (map[string]domain.Account, error) {
	if len(principals) == 0 {
		return map[string]domain.Account{}, nil
	}
	sorted := make([]string, 0, len(principals))
	seen := make(map[string]struct{}, len(principals))
	for _, p := range principals {
		if p == "" {
			return nil, fmt.Errorf("%w: empty principal", apperrors.ErrValidation)
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	insertQuery := `
		INSERT INTO accounts (principal, balance, version, created_at, updated_at)
		SELECT p, 0, 0, now(), now() FROM unnest($1::text[]) AS p
		ON CONFLICT (principal) DO NOTHING;
	`
	if _, err := u.tx.Exec(ctx, insertQuery, sorted); err != nil {
		return nil, mapPgError(err, "failed to create accounts")
	}

	lockQuery := `SELECT ` + accountColumns + ` FROM accounts WHERE principal = ANY($1) ORDER BY principal FOR UPDATE;`
	rows, err := u.tx.Query(ctx, lockQuery, sorted)
	if err != nil {
		return nil, mapPgError(err, "failed to lock accounts")
	}
	defer rows.Close()

	locked := make(map[string]domain.Account, len(sorted))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan locked account")
		}
		locked[acc.Principal] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating locked accounts")
	}

	if len(locked) != len(sorted) {
		missing := make([]string, 0)
		for _, p := range sorted {
			if _, ok := locked[p]; !ok {
				missing = append(missing, p)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, apperrors.NewAppError(500, fmt.Sprintf("could not lock accounts %v", missing), apperrors.ErrStorageFailure)
	}
	return locked, nil
}

// UpdateBalances writes absolute balances for rows locked by this unit.
func (u *pgxUnit) UpdateBalances(ctx context.Context, balances map[string]decimal.Decimal, now time.Time) error {
	if len(balances) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = $2, version = version + 1, updated_at = $3
		WHERE principal = $1;
	`
	principals := make([]string, 0, len(balances))
	for p := range balances {
		principals = append(principals, p)
	}
	sort.Strings(principals)

	batch := &pgx.Batch{}
	for _, p := range principals {
		batch.Queue(query, p, balances[p], now)
	}

	br := u.tx.SendBatch(ctx, batch)
	var batchErr error
	for _, p := range principals {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = mapPgError(err, "failed to update balance for account "+p)
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = apperrors.NewAppError(500, "account "+p+" not found during balance update", apperrors.ErrStorageFailure)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapPgError(err, "failed to close balance update batch")
	}
	return batchErr
}
