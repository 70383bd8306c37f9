// Command reconcile finds slot spots that were claimed but never booked nor
// released, and optionally gives them back. It prints the sweep report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshua-takyi/gylounge/internal/config"
	"github.com/joshua-takyi/gylounge/internal/connect"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	olderThan := flag.Duration("older-than", cfg.ReconcileAfter, "only look at claims untouched for this long")
	repair := flag.Bool("repair", false, "release leaked spots instead of only reporting them")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, logger, *olderThan, *repair))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, olderThan time.Duration, repair bool) int {
	if cfg.MongoDBURI == "" {
		logger.Error("MONGODB_URI is required, the in-memory journal of a server process is not reachable from here")
		return 2
	}

	store, closeStore, err := connect.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open data store", "error", err)
		return 1
	}
	defer closeStore()

	journal, closeJournal, err := connect.OpenJournal(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open reservation journal", "error", err)
		return 1
	}
	defer closeJournal()
	if _, ok := journal.(*models.MemoryJournal); ok {
		logger.Error("MongoDB is not reachable, nothing to sweep")
		return 1
	}

	report, err := services.NewReconciler(store, journal, logger).Sweep(ctx, olderThan, repair)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			logger.Error("Failed to write report", "error", encErr)
		}
	}
	if err != nil {
		logger.Error("Sweep failed", "error", err)
		return 1
	}
	if report.Failed > 0 || report.Unresolved > 0 || (!repair && report.Leaked > 0) {
		return 3
	}
	return 0
}
