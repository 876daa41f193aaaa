package pgsql

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/models"
	"github.com/SscSPs/referral_ledger/internal/utils/mapping"
	"github.com/SscSPs/referral_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxCommissionRepository struct {
	BaseRepository
}

func newPgxCommissionRepository(pool *pgxpool.Pool) *PgxCommissionRepository {
	return &PgxCommissionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CommissionReader = (*PgxCommissionRepository)(nil)

func (r *PgxCommissionRepository) SumCommissionsByRecipient(ctx context.Context, recipient string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM commissions WHERE recipient = $1;`, recipient).Scan(&total)
	if err != nil {
		return decimal.Zero, mapPgError(err, "failed to sum commissions of "+recipient)
	}
	return total, nil
}

func (r *PgxCommissionRepository) ListCommissionsByRecipient(ctx context.Context, recipient string, limit int) ([]domain.Commission, error) {
	query := `
		SELECT commission_id, recipient, source_user, amount, role, depth, transaction_id, created_at
		FROM commissions
		WHERE recipient = $1
		ORDER BY created_at DESC, commission_id DESC
		LIMIT $2;
	`
	rows, err := r.Pool.Query(ctx, query, recipient, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, mapPgError(err, "failed to list commissions of "+recipient)
	}
	defer rows.Close()

	out := make([]domain.Commission, 0)
	for rows.Next() {
		var m models.Commission
		if err := rows.Scan(&m.CommissionID, &m.Recipient, &m.SourceUser, &m.Amount, &m.Role, &m.Depth, &m.TransactionID, &m.CreatedAt); err != nil {
			return nil, mapPgError(err, "failed to scan commission row")
		}
		out = append(out, mapping.ToDomainCommission(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating commission rows")
	}
	return out, nil
}

// SaveCommissions writes earnings records in one batch.
func (u *pgxUnit) SaveCommissions(ctx context.Context, commissions []domain.Commission) error {
	if len(commissions) == 0 {
		return nil
	}
	query := `
		INSERT INTO commissions (commission_id, recipient, source_user, amount, role, depth, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, c := range commissions {
		m := mapping.ToModelCommission(c)
		batch.Queue(query, m.CommissionID, m.Recipient, m.SourceUser, m.Amount, m.Role, m.Depth, m.TransactionID, m.CreatedAt)
	}
	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, "failed to insert commissions")
	}
	return nil
}
