// Package logger configures the structured logger shared by the driver
// layer. It is a thin wrapper over log/slog so applications embedding
// the library keep full control of the default logger.
package logger

import (
	"log/slog"
	"os"
	"sync"

	"github.com/squill-app/squill-drivers/config"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Init builds the package logger from the given configuration. It runs
// at most once; later calls are no-ops.
func Init(cfg config.Config) {
	once.Do(func() {
		var level slog.Level
		switch cfg.Log.Level {
		case "DEBUG":
			level = slog.LevelDebug
		case "WARN":
			level = slog.LevelWarn
		case "ERROR":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if cfg.Log.Format == "json" {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		} else {
			handler = slog.NewTextHandler(os.Stderr, opts)
		}
		logger = slog.New(handler).With("component", "squill")
	})
}

// Get returns the package logger, initializing it from the process
// configuration if Init was never called. The sync.Once inside Init
// orders the initialization against concurrent first uses.
func Get() *slog.Logger {
	Init(config.Get())
	return logger
}
