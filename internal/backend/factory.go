package backend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"smartspend/internal/log"
	"smartspend/internal/storage"
	"smartspend/internal/storage/memory"
	"smartspend/internal/storage/sqlite"
)

// Factory creates stores based on configuration
type Factory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend validates config and opens the selected store.
func (f *Factory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.SeedDemoData {
		if err := f.seed(ctx, result.Store); err != nil {
			if result.Cleanup != nil {
				_ = result.Cleanup()
			}
			return nil, err
		}
	}
	return result, nil
}

func (f *Factory) createSQLiteBackend(config Config) (*BackendResult, error) {
	store, err := sqlite.NewStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *Factory) createMemoryBackend() *BackendResult {
	store := memory.New()

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}
}

// seed fills an empty store with demo records. A store that already holds
// data is left untouched.
func (f *Factory) seed(ctx context.Context, store storage.Store) error {
	existing, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("check existing expenses: %w", err)
	}
	if len(existing) > 0 {
		f.logger.Debug("Store already populated, skipping demo data", log.FieldCount, len(existing))
		return nil
	}

	now := f.now()
	records := storage.DemoRecords(now, rand.New(rand.NewPCG(uint64(now.UnixNano()), 0)))
	if seeder, ok := store.(interface {
		Seed(context.Context, []storage.Record) error
	}); ok {
		if err := seeder.Seed(ctx, records); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	} else {
		for _, r := range records {
			if _, err := store.Add(ctx, r); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
		}
	}
	f.logger.Info("Seeded demo data", log.FieldCount, len(records))
	return nil
}
