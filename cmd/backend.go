package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"storesync/core/config"
	"storesync/core/logger"
	"storesync/core/storage"
	"storesync/feature/dbstore"
	"storesync/feature/filestore"
)

var backendFlag string

// setup loads configuration, builds the logger and assembles the adapter
// chain the subcommands operate on. The selected backend is the primary
// element; an in-memory fallback keeps reads working when it misbehaves.
func setup() (*zap.Logger, *storage.Chain, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	primary, err := newPrimary(cfg, logg)
	if err != nil {
		return nil, nil, err
	}

	chain, err := storage.NewChain(logg, primary, storage.NewMemory(logg))
	if err != nil {
		return nil, nil, err
	}
	return logg, chain, nil
}

func newPrimary(cfg *config.Config, logg *zap.Logger) (storage.Adapter, error) {
	switch backendFlag {
	case "file":
		store, err := filestore.New(cfg.File, logg)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store, nil
	case "db":
		db, err := dbstore.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("database connection required: %w", err)
		}
		store, err := dbstore.New(db, "cli", dbstore.Options{Logger: logg})
		if err != nil {
			return nil, fmt.Errorf("failed to open database store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected file or db)", backendFlag)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "file", "Primary backend (file, db)")
}
