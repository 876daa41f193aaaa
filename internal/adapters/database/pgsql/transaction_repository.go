package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/models"
	"github.com/SscSPs/referral_ledger/internal/utils/mapping"
	"github.com/SscSPs/referral_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, principal, amount, kind, status, description,
	counterparty, role, depth, reviewed_by, reviewed_at, created_at`

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionReader = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Principal,
		&m.Amount,
		&m.Kind,
		&m.Status,
		&m.Description,
		&m.Counterparty,
		&m.Role,
		&m.Depth,
		&m.ReviewedBy,
		&m.ReviewedAt,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	out := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan transaction row")
		}
		out = append(out, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating transaction rows")
	}
	return out, nil
}

// FindTransactionByID retrieves one ledger row.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to find transaction "+transactionID)
	}
	return &txn, nil
}

// ListTransactionsByPrincipal retrieves a page of rows using token-based pagination.
// It returns the rows, a token for the next page, and an error.
func (r *PgxTransactionRepository) ListTransactionsByPrincipal(ctx context.Context, principal string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	limit = pagination.NormalizeLimit(limit)
	// One extra row tells us whether there is a next page.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + transactionColumns + ` FROM transactions WHERE principal = $1`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`
	args := []interface{}{principal}

	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}
	args = append(args, fetchLimit)
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapPgError(err, "failed to query transactions for "+principal)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(txns) > limit {
		last := txns[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		next = &token
		txns = txns[:limit]
	}
	return txns, next, nil
}

// ListPendingTransactions returns requests awaiting review, oldest first.
func (r *PgxTransactionRepository) ListPendingTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE status = $1
		ORDER BY created_at ASC, transaction_id ASC
		LIMIT $2;`
	rows, err := r.Pool.Query(ctx, query, string(domain.StatusPending), pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, mapPgError(err, "failed to query pending transactions")
	}
	return collectTransactions(rows)
}

// SumTransactions totals principal's rows of one kind and status.
func (r *PgxTransactionRepository) SumTransactions(ctx context.Context, principal string, kind domain.TransactionKind, status domain.TransactionStatus) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE principal = $1 AND kind = $2 AND status = $3;`
	var total decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, principal, string(kind), string(status)).Scan(&total); err != nil {
		return decimal.Zero, mapPgError(err, "failed to sum transactions for "+principal)
	}
	return total, nil
}

// SaveTransactions appends rows in one batch.
func (u *pgxUnit) SaveTransactions(ctx context.Context, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		if err := txn.Validate(); err != nil {
			return err
		}
		m := mapping.ToModelTransaction(txn)
		batch.Queue(query,
			m.TransactionID,
			m.Principal,
			m.Amount,
			m.Kind,
			m.Status,
			m.Description,
			m.Counterparty,
			m.Role,
			m.Depth,
			m.ReviewedBy,
			m.ReviewedAt,
			m.CreatedAt,
		)
	}

	// Close reports the first failing statement of the batch.
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "failed to insert transactions")
	}
	return nil
}

// FindTransactionForUpdate locks a row for the rest of the unit.
func (u *pgxUnit) FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	txn, err := scanTransaction(u.tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to lock transaction "+transactionID)
	}
	return &txn, nil
}

// UpdateTransactionReview persists a review. The status guard keeps terminal rows immutable.
func (u *pgxUnit) UpdateTransactionReview(ctx context.Context, transaction domain.Transaction) error {
	m := mapping.ToModelTransaction(transaction)
	query := `
		UPDATE transactions
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE transaction_id = $1 AND status = $5;
	`
	ct, err := u.tx.Exec(ctx, query, m.TransactionID, m.Status, m.ReviewedBy, m.ReviewedAt, string(domain.StatusPending))
	if err != nil {
		return mapPgError(err, "failed to update transaction "+m.TransactionID)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrAlreadyProcessed
	}
	return nil
}
