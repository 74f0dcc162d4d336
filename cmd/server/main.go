package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linkyfire/guide-backend/internal/infrastructure/config"
	"github.com/linkyfire/guide-backend/internal/infrastructure/geocode"
	"github.com/linkyfire/guide-backend/internal/infrastructure/llm/openai"
	"github.com/linkyfire/guide-backend/internal/infrastructure/logger"
	"github.com/linkyfire/guide-backend/internal/infrastructure/persistence"
	httpiface "github.com/linkyfire/guide-backend/internal/interfaces/http"
	"github.com/linkyfire/guide-backend/internal/interfaces/http/handlers"
)

const (
	appName    = "guide-backend"
	appVersion = "0.1.0"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting guide backend",
		zap.String("name", appName),
		zap.String("version", appVersion),
	)

	db, err := persistence.NewDBConnection(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to open message store", zap.Error(err))
	}

	messageRepo := persistence.NewGormMessageRepository(db)
	geocoder := geocode.NewClient(cfg.Geocode, log)
	model := openai.NewProvider(cfg.LLM, log)

	chatHandler := handlers.NewChatHandler(geocoder, model, messageRepo, log)
	messageHandler := handlers.NewMessageHandler(messageRepo, log)

	server := httpiface.NewServer(httpiface.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Mode: cfg.Server.Mode,
	}, chatHandler, messageHandler, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		log.Fatal("Failed to start HTTP server", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Server stopped successfully")
}
