package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tradeup-app/loyalty-service/internal/app/background"
	"github.com/tradeup-app/loyalty-service/internal/app/setup"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/migrate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	deps, err := setup.InitializeDependencies()
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}

	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		if err := migrate.RunMigrations(deps.DB, path); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	useCases := setup.InitializeUseCases(deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks := background.NewBackgroundTasks(
		useCases.TierUsecase,
		useCases.LedgerUsecase,
		useCases.DistributionUsecase,
		deps.Repositories.TenantRepo,
		deps.Config.Sweeps,
	)
	if err := tasks.Start(ctx); err != nil {
		log.Fatalf("failed to start background tasks: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf("%s:%s", deps.Config.HTTPServer.Host, deps.Config.HTTPServer.Port)
	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cancel()
	if err := server.Shutdown(context.Background()); err != nil {
		slog.Error("metrics server shutdown", "error", err.Error())
	}
}
