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

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	grpcapi "mylibrary-rental/internal/api/grpc"
	httpapi "mylibrary-rental/internal/api/http"
	"mylibrary-rental/internal/db"
	"mylibrary-rental/internal/logger"
	"mylibrary-rental/internal/repository/sqlstore"
	"mylibrary-rental/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the gRPC health endpoint when grpc.port is set)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Starting mylibrary rental service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_port", cfg.GRPC.Port)
	logger.Info("Database configuration", "driver", cfg.Database.Driver, "host", cfg.Database.Host,
		"port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User, "path", cfg.Database.Path)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return err
	}
	defer conn.Close()
	logger.Info("Database connection established")

	store, err := sqlstore.NewStore(conn, sqlstore.WithQueryTimeout(cfg.QueryTimeout()))
	if err != nil {
		return err
	}
	rentalSvc := service.NewRentalService(store.RentalRepository)

	doc, err := httpapi.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}
	router, err := httpapi.NewRouter(rentalSvc, store, doc)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Bind the gRPC port before serving HTTP so a listen failure leaves
	// nothing running.
	var grpcLis net.Listener
	if cfg.GRPC.Port != 0 {
		grpcLis, err = net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			return err
		}
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if grpcLis != nil {
		grpcServer = grpcapi.NewServer(store)
		go func() {
			logger.Info("gRPC server listening", "address", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errCh:
		logger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown failed", "error", shutdownErr)
		if err == nil {
			err = shutdownErr
		}
	}
	logger.Info("Server stopped")
	return err
}
