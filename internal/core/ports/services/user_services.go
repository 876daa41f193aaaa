package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// UserWriterSvc registers users and their referral edge
type UserWriterSvc interface {
	// UpsertUser creates or replaces a user. A user may not refer itself.
	UpsertUser(ctx context.Context, userID string, referrerID *string, canTransact bool) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
