package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/adoption-service/internal/api/http"
	"github.com/spec-kit/adoption-service/internal/api/http/handlers"
	"github.com/spec-kit/adoption-service/internal/app"
	"github.com/spec-kit/adoption-service/internal/auth"
	"github.com/spec-kit/adoption-service/internal/config"
	"github.com/spec-kit/adoption-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.Build(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	if cfg.Postgres.RunMigrations && container.Postgres.PoolHandle() != nil {
		applied, err := container.Migrate(ctx)
		if err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		logger.Info("migrations applied", zap.Int("count", applied))
	}

	container.StartWorkers(ctx)

	pingers := map[string]handlers.Pinger{}
	if container.Postgres.PoolHandle() != nil {
		pingers["postgres"] = container.Postgres
	}
	if container.Redis != nil {
		pingers["redis"] = container.Redis
	}

	svc := container.Services
	server := httptransport.NewServer(cfg.App.Name)
	httptransport.RegisterMiddlewares(server, logger, container.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pingers),
		Users:          handlers.NewUsersHandler(svc.Auth, svc.Users),
		Adoption:       handlers.NewAdoptionHandler(svc.Adoptions, svc.Vendors),
		Pets:           handlers.NewPetsHandler(svc.Pets, svc.Vendors),
		Vendors:        handlers.NewVendorsHandler(svc.Vendors),
		Admin:          handlers.NewAdminHandler(svc.Users, svc.Adoptions, svc.Analytics),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Auth.TokenManager(), container.Repos.Users),
		Metrics:        container.Metrics,
	})

	go func() {
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), app.ShutdownTimeout)
	defer stop()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	container.Shutdown(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
