package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thablackcodes/gresh-finance/internal/auth"
	"github.com/thablackcodes/gresh-finance/internal/buildinfo"
	"github.com/thablackcodes/gresh-finance/internal/config"
	"github.com/thablackcodes/gresh-finance/internal/domain"
	grpcserver "github.com/thablackcodes/gresh-finance/internal/grpc"
	"github.com/thablackcodes/gresh-finance/internal/handlers"
	"github.com/thablackcodes/gresh-finance/internal/money"
	"github.com/thablackcodes/gresh-finance/internal/server"
)

const (
	shutdownTimeout     = 15 * time.Second
	healthCheckInterval = 10 * time.Second
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and gRPC health server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{
		"version": buildinfo.Version,
		"env":     cfg.Env,
		"storage": cfg.Storage,
		"broker":  cfg.Events.Broker,
	}).Info("starting gresh")

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	publisher, closePublisher, err := openPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()

	refs := money.NewGenerator()
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
	})

	ledger := domain.NewLedgerService(store.accounts, store.transactions, store.customers,
		store.txManager, refs, publisher, log)
	accounts := domain.NewAccountService(store.accounts, store.txManager, refs, cfg.DefaultCurrency, log)
	customers := domain.NewCustomerService(store.customers, store.accounts, store.txManager, refs,
		auth.NewBcryptHasher(0), tokens, cfg.DefaultCurrency, log)
	log.Info("domain services initialized")

	h := handlers.NewHandler(handlers.Options{
		Ledger:     ledger,
		Accounts:   accounts,
		Customers:  customers,
		Tokens:     tokens,
		Storage:    store.pinger,
		Log:        log,
		Production: cfg.IsProduction(),
	})
	httpServer := server.New(":"+cfg.HTTPPort, server.Handler(h, log))

	grpcServer := grpcserver.NewServer(store.pinger, healthCheckInterval, log)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.GRPCPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	go func() {
		log.WithField("addr", lis.Addr().String()).Info("gRPC server starting")
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go grpcServer.Monitor(monitorCtx)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.WithError(runErr).Error("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		log.Warn("gRPC graceful stop timed out, forcing")
		grpcServer.Stop()
	}
	log.Info("servers stopped")

	if err := ledger.Drain(shutdownCtx); err != nil {
		log.WithError(err).Warn("event publishes still in flight at shutdown")
	}

	return runErr
}
