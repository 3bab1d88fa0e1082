// Package app wires storage, services and the HTTP transport together and
// owns their startup and shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"potion_service/internal/auth"
	"potion_service/internal/config"
	"potion_service/internal/handler"
	"potion_service/internal/service"
	"potion_service/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg    *config.Config
	log    *slog.Logger
	store  storage.Storage
	server *http.Server
}

func New(ctx context.Context, cfg *config.Config, lgr *slog.Logger) (*App, error) {
	const op = "app.New"

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	store, err := OpenStorage(ctx, cfg, lgr, hasher)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authService := service.NewAuth(store, hasher, tokens, lgr)
	h := handler.NewHandler(authService, tokens, store, lgr,
		handler.WithProtectedPrefix(cfg.Auth.ProtectedPrefix),
		handler.WithAllowedOrigins(cfg.CORS.AllowedOrigins),
		handler.WithMetrics(handler.NewMetrics(reg)),
	)

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      h.InitRoutes(),
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	return &App{
		cfg:    cfg,
		log:    lgr,
		store:  store,
		server: server,
	}, nil
}

// OpenStorage returns the configured store. An in-memory store comes up
// seeded; a Postgres store is migrated first when db.migrate_on_start is set.
func OpenStorage(ctx context.Context, cfg *config.Config, lgr *slog.Logger, hasher *auth.Hasher) (storage.Storage, error) {
	const op = "app.OpenStorage"

	if cfg.DB.InMemory {
		st := storage.NewMemoryStorage()
		if err := storage.Seed(ctx, st, storage.DefaultSeed, hasher.Hash); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lgr.Info("using in-memory storage with seed data")

		return st, nil
	}

	if cfg.DB.MigrateOnStart {
		if err := Migrate(ctx, cfg.DB.DbURL, MigrateUp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		lgr.Info("database migrations applied")
	}

	st, err := storage.NewPostgresStorage(ctx, cfg.DB.DbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

type MigrateDirection string

const (
	MigrateUp     MigrateDirection = "up"
	MigrateDown   MigrateDirection = "down"
	MigrateStatus MigrateDirection = "status"
)

func Migrate(ctx context.Context, DbURL string, dir MigrateDirection) error {
	const op = "app.Migrate"

	m, err := storage.NewMigrator(DbURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	switch dir {
	case MigrateUp:
		err = m.Up(ctx)
	case MigrateDown:
		err = m.Reset(ctx)
	case MigrateStatus:
		err = m.Status(ctx)
	default:
		err = fmt.Errorf("unknown direction %q", dir)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	const op = "app.Run"

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", slog.String("address", a.server.Addr))

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Close() {
	a.store.Close()
}
