package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/referral_ledger/internal/handlers"
	"github.com/SscSPs/referral_ledger/internal/middleware"
	"github.com/SscSPs/referral_ledger/internal/platform/config"
	"github.com/SscSPs/referral_ledger/pkg/cache"
	"github.com/SscSPs/referral_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	serveCmd.Flags().Bool("seed-levels", false, "Load LEVEL_CATALOG_FILE into the level catalog before serving")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := current.cfg, current.logger
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateFirst, _ := cmd.Flags().GetBool("migrate"); migrateFirst {
		if err := requirePersistent(cfg); err != nil {
			return err
		}
		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, database.MigrateUp, logger); err != nil {
			return err
		}
	}

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if seed, _ := cmd.Flags().GetBool("seed-levels"); seed && cfg.StoreDriver == config.StoreDriverPostgres {
		if err := seedCatalog(ctx, b.services, cfg.LevelCatalogFile); err != nil {
			return err
		}
	}

	triggers, closeTriggers, err := buildTriggers(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTriggers()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg)))
	}
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}
	if err := handlers.RegisterRoutes(r, cfg, b.services, triggers...); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildTriggers assembles the middleware in front of every money-moving route: a per-principal
// rate limit, and Idempotency-Key replay when Redis is configured.
func buildTriggers(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]gin.HandlerFunc, func(), error) {
	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid RATE_LIMIT '%s': %w", cfg.RateLimit, err)
	}
	triggers := []gin.HandlerFunc{middleware.RateLimit(limiter)}

	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set; Idempotency-Key replay is disabled")
		return triggers, func() {}, nil
	}
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("Idempotency cache connected", slog.String("addr", cfg.RedisURL))
	triggers = append(triggers, middleware.NewIdempotencyMiddleware(redisCache, cfg.IdempotencyTTL).Require())

	return triggers, func() {
		if err := redisCache.Close(); err != nil {
			logger.Warn("Closing redis failed", slog.String("error", err.Error()))
		}
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", middleware.IdempotencyHeader, "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "Retry-After", "Idempotent-Replayed"}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = cfg.CORSAllowedOrigins
	return c
}
