package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"belanja/internal/auth"
	"belanja/internal/bus"
	"belanja/internal/config"
	apphttp "belanja/internal/http"
	"belanja/internal/live"
	applog "belanja/internal/log"
	"belanja/internal/services"
	"belanja/internal/storage"
)

func main() {
	// .env is for local development; absent in production.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
		Format:    cfg.LogFormat,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	busClient, err := bus.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPLiveQueue)
	if err != nil {
		logger.Error("Failed to connect to the message bus", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()

	expenseService := services.NewExpenseService(repo, busClient)
	hub := live.NewHub(repo)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Authenticator: auth.NewPasswordAuthenticator(repo),
		Tokens:        auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL),
		Users:         repo,
		Expenses:      expenseService,
		Hub:           hub,
		Ready:         repo.Ping,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := hub.Run(ctx, busClient); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
