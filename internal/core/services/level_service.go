package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/referral_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
)

type levelService struct {
	BaseService
	levelRepo portsrepo.LevelRepositoryFacade
}

// NewLevelService creates a LevelSvcFacade.
func NewLevelService(levelRepo portsrepo.LevelRepositoryFacade) portssvc.LevelSvcFacade {
	return &levelService{levelRepo: levelRepo}
}

var _ portssvc.LevelSvcFacade = (*levelService)(nil)

func (s *levelService) ListLevels(ctx context.Context) ([]domain.Level, error) {
	return s.levelRepo.ListLevels(ctx)
}

func (s *levelService) GetLevel(ctx context.Context, level int) (*domain.Level, error) {
	return s.levelRepo.FindLevel(ctx, level)
}

func (s *levelService) GetUserLevel(ctx context.Context, userID string) (*domain.UserLevel, error) {
	return s.levelRepo.FindUserLevel(ctx, userID)
}

func (s *levelService) SeedLevels(ctx context.Context, levels []domain.Level) error {
	for _, l := range levels {
		if err := s.levelRepo.SaveLevel(ctx, l); err != nil {
			s.LogError(ctx, err, "Failed to seed level", slog.Int("level", l.Level))
			return err
		}
	}
	s.LogInfo(ctx, "Level catalog seeded", slog.Int("count", len(levels)))
	return nil
}
