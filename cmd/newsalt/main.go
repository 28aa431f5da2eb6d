package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dippreneurlab/new-salt/internal/adapter/firebase"
	"github.com/dippreneurlab/new-salt/internal/config"
	httptransport "github.com/dippreneurlab/new-salt/internal/http"
	"github.com/dippreneurlab/new-salt/internal/http/handler"
	httpmiddleware "github.com/dippreneurlab/new-salt/internal/http/middleware"
	"github.com/dippreneurlab/new-salt/internal/identity"
	apimiddleware "github.com/dippreneurlab/new-salt/internal/middleware"
	"github.com/dippreneurlab/new-salt/internal/repository"
	"github.com/dippreneurlab/new-salt/internal/schema"
	"github.com/dippreneurlab/new-salt/internal/server"
	"github.com/dippreneurlab/new-salt/internal/service"
	"github.com/dippreneurlab/new-salt/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newIdentityProvider,
			newQuoteRepository,
			newStorageRepository,
			newMetadataRepository,
			service.NewDirectoryService,
			newQuoteService,
			service.NewStorageService,
			service.NewMetadataService,
			handler.NewUsers,
			handler.NewQuotes,
			handler.NewStorage,
			handler.NewMetadata,
			newAuthMiddleware,
			newRateLimiter,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, runMigrations, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

// newPGXPool constructs the pool on first use of the dependency graph, never
// at package load; cold starts must not open connections early.
func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newIdentityProvider(cfg config.Config) (identity.Provider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return firebase.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
}

func newQuoteRepository(pool *pgxpool.Pool) repository.QuoteRepository {
	return repository.NewPostgresQuoteRepo(pool)
}

func newStorageRepository(pool *pgxpool.Pool) repository.StorageRepository {
	return repository.NewPostgresStorageRepo(pool)
}

func newMetadataRepository(pool *pgxpool.Pool) repository.MetadataRepository {
	return repository.NewPostgresMetadataRepo(pool)
}

func newQuoteService(repo repository.QuoteRepository, logger *zap.Logger) *service.QuoteService {
	return service.NewQuoteService(repo, logger)
}

func newAuthMiddleware(provider identity.Provider, cfg config.Config, logger *zap.Logger) *httpmiddleware.Auth {
	return httpmiddleware.NewAuth(provider, cfg.AdminEmails, logger)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func runMigrations(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return schema.Up(cfg.DatabaseURL, logger)
		},
	})
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
