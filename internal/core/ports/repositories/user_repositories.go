package repositories

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// UserReader defines read operations for users and their referral edges
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListReferrals returns the users whose referrer is referrerID.
	ListReferrals(ctx context.Context, referrerID string) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser inserts or replaces a user and its referral edge.
	SaveUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
