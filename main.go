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
	"github.com/mindhub/medsafety-api/config"
	"github.com/mindhub/medsafety-api/data"
	"github.com/mindhub/medsafety-api/directory"
	"github.com/mindhub/medsafety-api/handlers"
	"github.com/mindhub/medsafety-api/interfaces"
	"github.com/mindhub/medsafety-api/knowledge"
	"github.com/mindhub/medsafety-api/logging"
	"github.com/mindhub/medsafety-api/safety"
	"github.com/mindhub/medsafety-api/scheduler"
	"github.com/mindhub/medsafety-api/server"
	"github.com/mindhub/medsafety-api/validation"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogRetentionWeeks, cfg.MaxLogFileSize, cfg.LogLevel)

	container := data.NewContainer()
	container.SetServerStartTime(time.Now())

	loader := knowledge.NewFileLoader(cfg.KnowledgeFile)
	sched := scheduler.NewScheduler(container, loader)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start knowledge scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// The directory is optional: without it, controlled-substance checks
	// degrade and medication search is unavailable.
	var dir interfaces.MedicationDirectory
	if cfg.DatabaseURL != "" {
		pgDir, err := directory.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logging.Error("Failed to connect to medication reference database", "error", err)
			os.Exit(1)
		}
		defer pgDir.Close()
		dir = pgDir
	} else {
		logging.Warn("DATABASE_URL not set, medication directory disabled")
		dir = directory.NewDisabled()
	}

	evaluator := safety.NewEvaluator(container, dir)
	handler := handlers.NewHandler(container, evaluator, dir, validation.NewValidator())
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
