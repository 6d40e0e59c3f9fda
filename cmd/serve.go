package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sarbjeetmaan/backend/internal/auth"
	"github.com/Sarbjeetmaan/backend/internal/clients"
	"github.com/Sarbjeetmaan/backend/internal/delivery"
	grpcdelivery "github.com/Sarbjeetmaan/backend/internal/delivery/grpc"
	"github.com/Sarbjeetmaan/backend/internal/repository"
	"github.com/Sarbjeetmaan/backend/internal/usecase"
	"github.com/Sarbjeetmaan/backend/pkg/db"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthProbeInterval = 15 * time.Second
)

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the gRPC health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply the schema on startup")
	return cmd
}

func runServe(skipMigrate bool) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	logger.Info("Starting Storefront Service...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established.")

	if !skipMigrate {
		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
		logger.Info("Database schema applied.")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	gateway := clients.NewCashfreeClient(cfg.Payment, logger)
	logger.Infof("Payment gateway client initialized for target: %s", cfg.Payment.BaseURL)

	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	cartRepo := repository.NewPostgresCartRepository(database, logger)
	logger.Info("Repositories initialized.")

	deps := delivery.RouterDeps{
		Orders:   usecase.NewOrderUseCase(orderRepo, gateway, cfg.Payment, logger),
		Users:    usecase.NewUserUseCase(userRepo, tokens, cfg.AdminEmails, logger),
		Products: usecase.NewProductUseCase(productRepo, logger),
		Carts:    usecase.NewCartUseCase(cartRepo, logger),
		Identity: tokens,
		Health:   database,
	}
	logger.Info("Use cases initialized.")

	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           delivery.NewRouter(deps, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthService := grpcdelivery.NewHealthService(database, healthProbeInterval, logger)
	grpcServer := healthService.NewServer()
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.GrpcPort, err)
	}

	errCh := make(chan error, 2)
	go healthService.Run(ctx)
	go func() {
		logger.Infof("gRPC health server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Warn("Shutdown signal received...")
	case runErr = <-errCh:
		logger.Errorf("Server error, shutting down: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Storefront Service shut down gracefully.")
	return runErr
}
