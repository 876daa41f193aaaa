package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/referral_ledger/internal/core/domain"
)

// LevelReader defines read operations for the level catalog and current-level assignments
type LevelReader interface {
	// FindLevel retrieves a catalog entry, or apperrors.ErrNotFound.
	FindLevel(ctx context.Context, level int) (*domain.Level, error)

	// ListLevels returns the catalog ordered by level.
	ListLevels(ctx context.Context) ([]domain.Level, error)

	// FindUserLevel returns the level a user currently owns, or apperrors.ErrNotFound.
	FindUserLevel(ctx context.Context, userID string) (*domain.UserLevel, error)
}

// LevelWriter maintains the catalog
type LevelWriter interface {
	// SaveLevel inserts or replaces a catalog entry.
	SaveLevel(ctx context.Context, level domain.Level) error
}

// LevelRepositoryFacade combines catalog reads and writes
type LevelRepositoryFacade interface {
	LevelReader
	LevelWriter
}

// UserLevelTxWriter overwrites current-level assignments inside a unit of work
type UserLevelTxWriter interface {
	AssignUserLevel(ctx context.Context, userID string, level int, now time.Time) error
}
