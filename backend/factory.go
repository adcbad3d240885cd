// Package backend opens the tracker.Store selected by configuration.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/warp/drinklog/config"
	"github.com/warp/drinklog/store/jsonfile"
	"github.com/warp/drinklog/store/sqlite"
	"github.com/warp/drinklog/tracker"
	"github.com/warp/drinklog/tracker/store"
)

// Open creates the store for cfg.Backend. The caller owns it and must Close it.
func Open(cfg *config.Config, logger *slog.Logger) (tracker.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		var opts []sqlite.Option
		if cfg.DBMustExist {
			opts = append(opts, sqlite.MustExist())
		}
		s, err := sqlite.New(cfg.DBPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("opened store", "backend", cfg.Backend, "db_path", cfg.DBPath)
		return s, nil

	case config.BackendJSON:
		var opts []jsonfile.Option
		if cfg.DBMustExist {
			opts = append(opts, jsonfile.MustExist())
		}
		s, err := jsonfile.New(cfg.DBPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open json backend: %w", err)
		}
		logger.Info("opened store", "backend", cfg.Backend, "db_path", cfg.DBPath)
		return s, nil

	case config.BackendMemory:
		logger.Warn("using memory backend, entries are lost on exit")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend)
	}
}

// BackupExt returns the file extension a backup of backendType should carry.
func BackupExt(backendType string) string {
	switch backendType {
	case config.BackendJSON:
		return ".json"
	default:
		return ".db"
	}
}
