package connect

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshua-takyi/gylounge/internal/config"
	"github.com/joshua-takyi/gylounge/internal/models"
)

// OpenStore builds the Store selected by DATA_STORE. The returned close
// function releases whatever connection the store holds.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (models.Store, func(), error) {
	switch cfg.DataStore {
	case config.DataStorePostgres:
		pool, err := InitPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Postgres successfully")
		return models.PostgresNewRepo(pool), pool.Close, nil

	case config.DataStoreMemory:
		repo := models.NewMemoryRepo()
		if cfg.SeedFile != "" {
			f, err := os.Open(cfg.SeedFile)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()
			if err := repo.LoadSeed(f); err != nil {
				return nil, nil, err
			}
		}
		logger.Warn("Using in-memory store, data is lost on restart", "seed_file", cfg.SeedFile)
		return repo, func() {}, nil

	default:
		admin, public, err := InitSupabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Connected to Supabase successfully")
		return models.SupabaseNewRepo(admin, public), func() {}, nil
	}
}

// OpenJournal connects the Mongo reservation journal. Without MONGODB_URI, or
// when Mongo is unreachable, it falls back to an in-process journal and logs
// that reconciliation will not survive restarts.
func OpenJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (models.ReservationJournal, func(), error) {
	if cfg.MongoDBURI == "" {
		logger.Warn("MONGODB_URI not set, reservation journal is in-memory")
		return models.NewMemoryJournal(), func() {}, nil
	}

	client, err := MongoDBConnect(ctx, cfg.MongoDBURI)
	if err != nil {
		if cfg.IsProduction() {
			return nil, nil, err
		}
		logger.Warn("MongoDB unavailable, reservation journal is in-memory", "error", err)
		return models.NewMemoryJournal(), func() {}, nil
	}
	logger.Info("Connected to MongoDB successfully")

	journal := models.NewMongoJournal(models.MongodbNewRepo(client, cfg.MongoDBDatabase))
	if err := journal.EnsureIndexes(ctx); err != nil {
		_ = MongoDBDisconnect(client)
		return nil, nil, fmt.Errorf("failed to create journal indexes: %w", err)
	}

	closeFn := func() {
		if err := MongoDBDisconnect(client); err != nil {
			logger.Error("Error disconnecting from MongoDB", "error", err)
		}
	}
	return journal, closeFn, nil
}
