package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soyaya/boardling/internal/config"
	"github.com/soyaya/boardling/internal/db"
	"github.com/soyaya/boardling/internal/dispatch"
	"github.com/soyaya/boardling/internal/gateway"
	"github.com/soyaya/boardling/internal/grant"
	"github.com/soyaya/boardling/internal/invoice"
	"github.com/soyaya/boardling/internal/logger"
	"github.com/soyaya/boardling/internal/privacy"
	"github.com/soyaya/boardling/internal/resource"
	"github.com/soyaya/boardling/internal/server"
	"github.com/soyaya/boardling/internal/withdrawal"
)

func main() {
	logger.Init()
	defer logger.Sync()
	logger.Info("starting boardling ledger service")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("migrations completed")

	resourceRepo := resource.NewRepository(database)
	grantRepo := grant.NewRepository(database)
	privacyService := privacy.NewService(privacy.NewRepository(database), resourceRepo, grantRepo)

	addressGateway := gateway.NewHTTPGateway(cfg.AddressServiceURL)
	invoiceService := invoice.NewService(invoice.NewRepository(database), addressGateway, resourceRepo, cfg.PaymentMethod)

	payoutQueue := dispatch.NewQueue(cfg.RedisAddr)
	defer payoutQueue.Close()

	withdrawalRepo := withdrawal.NewRepository(database)
	withdrawalService := withdrawal.NewService(withdrawalRepo, payoutQueue, withdrawal.LimitsFromConfig(cfg))

	dispatcher := dispatch.New(
		payoutQueue,
		withdrawalService,
		withdrawalRepo,
		invoiceService,
		dispatch.NewHTTPExecutor(cfg.ExecutorURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	srv := server.New(database, cfg, server.Deps{
		Invoices:       invoiceService,
		Withdrawals:    withdrawalService,
		WithdrawalRepo: withdrawalRepo,
		Resources:      resourceRepo,
		Privacy:        privacyService,
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("server stopped")
}
