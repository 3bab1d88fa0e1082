package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"potion_service/internal/app"
	"potion_service/internal/auth"
	"potion_service/internal/config"
	"potion_service/internal/storage"

	"github.com/spf13/cobra"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "potion_service",
		Short:        "Potions and brands HTTP API with bearer-token auth",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (environment only when empty)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:       "migrate [up|down|status]",
			Short:     "Apply or roll back the database schema",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{string(app.MigrateUp), string(app.MigrateDown), string(app.MigrateStatus)},
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.MustLoadConfig(configPath)
				return app.Migrate(cmd.Context(), cfg.DB.DbURL, app.MigrateDirection(args[0]))
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Load the default users, brands and potions into an empty database",
			RunE: func(cmd *cobra.Command, args []string) error {
				return seed(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("potion_service %s\n", version)
			},
		},
	)

	return cmd
}

func serve(ctx context.Context, configPath string) error {
	cfg := config.MustLoadConfig(configPath)

	lgr := setupLogger(cfg.Env)
	lgr.Info("starting potion service", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lgr)
	if err != nil {
		lgr.Error("failed to init app", slog.Any("error", err))
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		lgr.Error("server stopped with error", slog.Any("error", err))
		return err
	}

	lgr.Info("stopped potion service")

	return nil
}

func seed(ctx context.Context, configPath string) error {
	cfg := config.MustLoadConfig(configPath)
	lgr := setupLogger(cfg.Env)

	st, err := storage.NewPostgresStorage(ctx, cfg.DB.DbURL)
	if err != nil {
		return err
	}
	defer st.Close()

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	if err := storage.Seed(ctx, st, storage.DefaultSeed, hasher.Hash); err != nil {
		return err
	}

	lgr.Info("seed data load complete")

	return nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
	return log
}
