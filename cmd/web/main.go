package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/config"
	"github.com/AdamBeresnev/koe-contest/internal/db"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{Component: "koe-api", Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	conn, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	if err := db.RunMigrations(conn); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	blobs, mediaDir, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("init media store", zap.Error(err))
	}

	a, err := newApp(cfg, logger, conn, blobs, mediaDir)
	if err != nil {
		logger.Fatal("init app", zap.Error(err))
	}

	created, err := a.userService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("bootstrap admin", zap.Error(err))
	}
	if created {
		logger.Info("created bootstrap admin", zap.String("email", cfg.AdminEmail))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(a),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server",
			zap.String("port", cfg.Port),
			zap.String("database_driver", cfg.DatabaseDriver),
			zap.String("media_backend", cfg.MediaBackend),
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
