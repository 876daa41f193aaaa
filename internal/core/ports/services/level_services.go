package services

import (
	"context"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// LevelReaderSvc reads the level catalog
type LevelReaderSvc interface {
	ListLevels(ctx context.Context) ([]domain.Level, error)
	GetLevel(ctx context.Context, level int) (*domain.Level, error)
	// GetUserLevel returns the level userID currently owns, or apperrors.ErrNotFound.
	GetUserLevel(ctx context.Context, userID string) (*domain.UserLevel, error)
}

// LevelWriterSvc maintains the level catalog
type LevelWriterSvc interface {
	// SeedLevels inserts or replaces every given catalog entry.
	SeedLevels(ctx context.Context, levels []domain.Level) error
}

// LevelSvcFacade combines all level operations
type LevelSvcFacade interface {
	LevelReaderSvc
	LevelWriterSvc
}
