package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doctrack/internal/database"
	"doctrack/internal/database/migration"
	"doctrack/internal/otel"
	"doctrack/internal/repository/postgres"
	redisrepo "doctrack/internal/repository/redis"
	"doctrack/internal/service"
	"doctrack/internal/session"
	"doctrack/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing, l)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database, l)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, l); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	rdb := redisrepo.New(cfg.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Token checks answer 503 until redis is reachable.
		l.Warn("redis unavailable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}

	metrics, err := service.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	docRepo := postgres.NewDocumentPostgres(db)
	teamRepo := postgres.NewTeamPostgres(db)
	profileRepo := postgres.NewProfilePostgres(db)
	noteRepo := postgres.NewNotificationPostgres(db)

	docSvc := service.NewDocumentService(objStore, docRepo, teamRepo, noteRepo, metrics)
	teamSvc := service.NewTeamService(teamRepo, profileRepo, metrics)
	noteSvc := service.NewNotificationService(noteRepo)
	authSvc := service.NewAuthService(profileRepo, redisrepo.NewBlacklist(rdb), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	sessions, err := session.NewManager(cfg.Session.CacheSize, docSvc, teamSvc, noteSvc)
	if err != nil {
		return err
	}

	app, err := newApp(l, db, authSvc, sessions, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http server starting", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		l.Error("http shutdown", zap.Error(err))
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		l.Error("tracing shutdown", zap.Error(err))
	}
	return nil
}
