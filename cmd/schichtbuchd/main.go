package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"schichtbuch-backend/config"
	"schichtbuch-backend/internal/api"
	"schichtbuch-backend/internal/auth"
	"schichtbuch-backend/internal/db"
	"schichtbuch-backend/internal/logger"
	"schichtbuch-backend/internal/media"
	"schichtbuch-backend/internal/notification"
	"schichtbuch-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}

	appLog, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("configuration loaded", "path", configPath)

	if cfg.Auth.JWTSecret == "" {
		appLog.Fatal("auth.jwt_secret must be configured")
	}
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		appLog.Fatal("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize database", "error", err)
	}

	// Media storage for uploaded images and videos
	mediaStorage, err := media.NewStorage(cfg.Media.Root)
	if err != nil {
		appLog.Fatal("failed to initialize media storage", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, appLog)
	appLog.Info("data store initialized")

	if cfg.Auth.BootstrapAdminUsername != "" && cfg.Auth.BootstrapAdminPassword != "" {
		hash, err := auth.HashPassword(cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			appLog.Fatal("failed to hash bootstrap admin password", "error", err)
		}
		if err := appStore.EnsureAdminUser(ctx, cfg.Auth.BootstrapAdminUsername, hash); err != nil {
			appLog.Fatal("failed to ensure bootstrap admin user", "error", err)
		}
	}

	// Worker pool delivering mention notifications as web pushes
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, &webpushOptions, appLog)
	workerPool.Start(ctx)

	handler := api.NewHandler(appStore, mediaStorage, workerPool, &webpushOptions, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, appLog)
	router := api.NewRouter(handler, &cfg.Server, mediaStorage.Root(), cfg.Auth.JWTSecret)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		appLog.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("HTTP server ListenAndServe", "error", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	appLog.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("HTTP server Shutdown", "error", err)
	}

	appLog.Info("server gracefully stopped")
}
