package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/referral_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/referral_ledger/internal/adapters/database/pgsql"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/core/services"
	"github.com/SscSPs/referral_ledger/internal/platform/catalog"
	"github.com/SscSPs/referral_ledger/internal/platform/config"
	"github.com/SscSPs/referral_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// backend is the storage selected by STORE_DRIVER plus the services built on it.
type backend struct {
	services *portssvc.ServiceContainer
	pool     *pgxpool.Pool
	logger   *slog.Logger
}

// openBackend connects the configured store. The memory store starts empty, so its level
// catalog is seeded from LEVEL_CATALOG_FILE.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("Using the in-memory store; the ledger is lost on exit")
		b := &backend{
			services: services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore())),
			logger:   logger,
		}
		if err := seedCatalog(ctx, b.services, cfg.LevelCatalogFile); err != nil {
			return nil, err
		}
		return b, nil

	case config.StoreDriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return &backend{
			services: services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool, cfg.LockTimeout)),
			pool:     pool,
			logger:   logger,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver '%s'", cfg.StoreDriver)
	}
}

// Close releases the database pool, if any.
func (b *backend) Close() {
	database.ClosePgxPool(b.pool, b.logger)
}

// requirePersistent rejects operator commands that would only touch a throwaway memory store.
func requirePersistent(cfg *config.Config) error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("this command needs STORE_DRIVER=%s, got '%s'", config.StoreDriverPostgres, cfg.StoreDriver)
	}
	return nil
}

func seedCatalog(ctx context.Context, svc *portssvc.ServiceContainer, path string) error {
	levels, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}
	return svc.Levels.SeedLevels(ctx, levels)
}
