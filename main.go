package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mediscript/instructions-api/config"
	"github.com/mediscript/instructions-api/data"
	"github.com/mediscript/instructions-api/handlers"
	"github.com/mediscript/instructions-api/health"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/scheduler"
	"github.com/mediscript/instructions-api/server"
	"github.com/mediscript/instructions-api/session"
	"github.com/mediscript/instructions-api/validation"
	"github.com/mediscript/instructions-api/vocabulary"
)

func main() {
	// Environment file is optional; real deployments set the variables
	// directly.
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogLevel, cfg.LogRetentionWeeks)

	ttl := time.Duration(cfg.VocabTTLMinutes) * time.Minute

	container := data.NewVocabularyContainer()
	container.SetServerStartTime(time.Now())

	loader := vocabulary.NewLoader(cfg.VocabDir)
	vocabService := vocabulary.NewService(container, loader, ttl)

	vocabScheduler := scheduler.NewVocabularyScheduler(container, loader)
	if err := vocabScheduler.Start(); err != nil {
		logging.Error("Vocabulary scheduler failed to start", "error", err)
		os.Exit(1)
	}
	defer vocabScheduler.Stop()

	sessions := session.NewManager(session.NewStore(), vocabService, cfg.DefaultLanguage)
	validator := validation.NewInputValidator()
	healthChecker := health.NewHealthChecker(container, ttl)

	handler := handlers.NewHTTPHandler(sessions, vocabService, validator, healthChecker)
	srv := server.NewServer(cfg, handler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
