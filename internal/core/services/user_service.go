package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a UserSvcFacade.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) UpsertUser(ctx context.Context, userID string, referrerID *string, canTransact bool) (*domain.User, error) {
	if userID == "" || domain.IsSystemPrincipal(userID) {
		return nil, fmt.Errorf("%w: user ID '%s' is not allowed", apperrors.ErrValidation, userID)
	}
	if referrerID != nil {
		switch {
		case *referrerID == "":
			referrerID = nil
		case *referrerID == userID:
			return nil, fmt.Errorf("%w: a user cannot refer itself", apperrors.ErrValidation)
		case domain.IsSystemPrincipal(*referrerID):
			return nil, fmt.Errorf("%w: referrer '%s' is not allowed", apperrors.ErrValidation, *referrerID)
		}
	}

	user := domain.User{UserID: userID, ReferrerID: referrerID, CanTransact: canTransact}
	if existing, err := s.userRepo.FindUserByID(ctx, userID); err == nil {
		user.CreatedAt = existing.CreatedAt
	} else {
		user.CreatedAt = time.Now().UTC()
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user", slog.String("user_id", userID))
		return nil, err
	}
	s.LogInfo(ctx, "User saved", slog.String("user_id", userID), slog.Bool("can_transact", canTransact))
	return &user, nil
}
