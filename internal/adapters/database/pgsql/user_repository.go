package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/referral_ledger/internal/models"
	"github.com/SscSPs/referral_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

// SaveUser upserts a user and its referral edge.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if user.UserID == "" || domain.IsSystemPrincipal(user.UserID) {
		return fmt.Errorf("%w: user ID '%s' is not allowed", apperrors.ErrValidation, user.UserID)
	}
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, referrer_id, can_transact, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
		ON CONFLICT (user_id) DO UPDATE SET
			referrer_id = EXCLUDED.referrer_id,
			can_transact = EXCLUDED.can_transact;
	`
	var createdAt interface{}
	if !m.CreatedAt.IsZero() {
		createdAt = m.CreatedAt
	}
	if _, err := r.Pool.Exec(ctx, query, m.UserID, m.ReferrerID, m.CanTransact, createdAt); err != nil {
		return mapPgError(err, "failed to save user "+m.UserID)
	}
	return nil
}

// FindUserByID retrieves a user by ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT user_id, referrer_id, can_transact, created_at FROM users WHERE user_id = $1;`
	var m models.User
	err := r.Pool.QueryRow(ctx, query, userID).Scan(&m.UserID, &m.ReferrerID, &m.CanTransact, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, mapPgError(err, "failed to find user "+userID)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

// ListReferrals returns the direct referrals of referrerID in registration order.
func (r *PgxUserRepository) ListReferrals(ctx context.Context, referrerID string) ([]domain.User, error) {
	query := `
		SELECT user_id, referrer_id, can_transact, created_at
		FROM users
		WHERE referrer_id = $1
		ORDER BY created_at, user_id;
	`
	rows, err := r.Pool.Query(ctx, query, referrerID)
	if err != nil {
		return nil, mapPgError(err, "failed to list referrals of "+referrerID)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var m models.User
		if err := rows.Scan(&m.UserID, &m.ReferrerID, &m.CanTransact, &m.CreatedAt); err != nil {
			return nil, mapPgError(err, "failed to scan referral row")
		}
		users = append(users, mapping.ToDomainUser(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating referral rows")
	}
	return users, nil
}
