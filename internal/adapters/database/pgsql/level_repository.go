package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/models"
	"github.com/SscSPs/referral_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLevelRepository struct {
	BaseRepository
}

func newPgxLevelRepository(pool *pgxpool.Pool) *PgxLevelRepository {
	return &PgxLevelRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LevelRepositoryFacade = (*PgxLevelRepository)(nil)

func (r *PgxLevelRepository) SaveLevel(ctx context.Context, level domain.Level) error {
	m := mapping.ToModelLevel(level)
	query := `
		INSERT INTO levels (level, name, price, commission_percent)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (level) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			commission_percent = EXCLUDED.commission_percent;
	`
	if _, err := r.Pool.Exec(ctx, query, m.Level, m.Name, m.Price, m.CommissionPercent); err != nil {
		return mapPgError(err, "failed to save level")
	}
	return nil
}

func (r *PgxLevelRepository) FindLevel(ctx context.Context, level int) (*domain.Level, error) {
	query := `SELECT level, name, price, commission_percent FROM levels WHERE level = $1;`
	var m models.Level
	err := r.Pool.QueryRow(ctx, query, level).Scan(&m.Level, &m.Name, &m.Price, &m.CommissionPercent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to find level")
	}
	l := mapping.ToDomainLevel(m)
	return &l, nil
}

func (r *PgxLevelRepository) ListLevels(ctx context.Context) ([]domain.Level, error) {
	rows, err := r.Pool.Query(ctx, `SELECT level, name, price, commission_percent FROM levels ORDER BY level;`)
	if err != nil {
		return nil, mapPgError(err, "failed to list levels")
	}
	defer rows.Close()

	levels := make([]domain.Level, 0)
	for rows.Next() {
		var m models.Level
		if err := rows.Scan(&m.Level, &m.Name, &m.Price, &m.CommissionPercent); err != nil {
			return nil, mapPgError(err, "failed to scan level row")
		}
		levels = append(levels, mapping.ToDomainLevel(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating level rows")
	}
	return levels, nil
}

func (r *PgxLevelRepository) FindUserLevel(ctx context.Context, userID string) (*domain.UserLevel, error) {
	query := `SELECT user_id, level, activated_at FROM user_levels WHERE user_id = $1;`
	var m models.UserLevel
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&m.UserID, &m.Level, &m.ActivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to find level of user "+userID)
	}
	ul := mapping.ToDomainUserLevel(m)
	return &ul, nil
}

// AssignUserLevel overwrites the user's single current-level row.
func (u *pgxUnit) AssignUserLevel(ctx context.Context, userID string, level int, now time.Time) error {
	query := `
		INSERT INTO user_levels (user_id, level, activated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET level = EXCLUDED.level, activated_at = EXCLUDED.activated_at;
	`
	if _, err := u.tx.Exec(ctx, query, userID, level, now); err != nil {
		return mapPgError(err, "failed to assign level to "+userID)
	}
	return nil
}
