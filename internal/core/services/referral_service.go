package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
)

const (
	// DefaultTreeDepth is the downline depth shown when the caller does not ask for one.
	DefaultTreeDepth = 3
	// MaxTreeDepth bounds a downline request.
	MaxTreeDepth = 10
)

type referralService struct {
	BaseService
	userRepo  portsrepo.UserReader
	levelRepo portsrepo.LevelReader
}

// NewReferralService creates a ReferralSvc over the user and level repositories.
func NewReferralService(userRepo portsrepo.UserReader, levelRepo portsrepo.LevelReader) portssvc.ReferralSvc {
	return &referralService{userRepo: userRepo, levelRepo: levelRepo}
}

var _ portssvc.ReferralSvc = (*referralService)(nil)

func (s *referralService) Upline(ctx context.Context, userID string, maxDepth int) ([]string, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	upline := make([]string, 0, maxDepth)
	visited := map[string]struct{}{userID: {}}
	next := user.ReferrerID
	for len(upline) < maxDepth && next != nil && *next != "" {
		current := *next
		if _, seen := visited[current]; seen {
			s.LogInfo(ctx, "Referral cycle detected, upline walk stopped",
				slog.String("user_id", userID), slog.String("revisited", current), slog.Int("collected", len(upline)))
			break
		}
		if domain.IsSystemPrincipal(current) {
			break
		}
		visited[current] = struct{}{}
		upline = append(upline, current)

		ancestor, err := s.userRepo.FindUserByID(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				s.LogDebug(ctx, "Referrer has no user record, upline walk stopped", slog.String("referrer_id", current))
				break
			}
			return nil, err
		}
		next = ancestor.ReferrerID
	}
	return upline, nil
}

// Downline builds the tree breadth first. A user reached twice is shown once.
func (s *referralService) Downline(ctx context.Context, userID string, maxDepth int) (*domain.ReferralNode, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultTreeDepth
	}
	if maxDepth > MaxTreeDepth {
		maxDepth = MaxTreeDepth
	}

	rootUser, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	root, err := s.node(ctx, *rootUser)
	if err != nil {
		return nil, err
	}

	visited := map[string]struct{}{userID: {}}
	frontier := []*domain.ReferralNode{root}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var nextFrontier []*domain.ReferralNode
		for _, parent := range frontier {
			referrals, err := s.userRepo.ListReferrals(ctx, parent.UserID)
			if err != nil {
				return nil, err
			}
			for _, child := range referrals {
				if _, seen := visited[child.UserID]; seen {
					continue
				}
				visited[child.UserID] = struct{}{}
				n, err := s.node(ctx, child)
				if err != nil {
					return nil, err
				}
				parent.Children = append(parent.Children, n)
				nextFrontier = append(nextFrontier, n)
			}
		}
		frontier = nextFrontier
	}
	return root, nil
}

func (s *referralService) node(ctx context.Context, user domain.User) (*domain.ReferralNode, error) {
	n := &domain.ReferralNode{UserID: user.UserID, Active: user.CanTransact, Children: []*domain.ReferralNode{}}
	ul, err := s.levelRepo.FindUserLevel(ctx, user.UserID)
	switch {
	case err == nil:
		n.Level = ul.Level
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return nil, err
	}
	return n, nil
}
