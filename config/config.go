// Package config loads process-wide settings for the driver layer from
// the environment, with sane defaults for every knob.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Prefix of the environment variables read by Load.
const envPrefix = "SQUILL_"

// Config holds the tunables of the driver layer. All fields have
// working defaults; none are required.
type Config struct {
	Worker    WorkerConfig    `mapstructure:"worker"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Statement StatementConfig `mapstructure:"statement"`
	Log       LogConfig       `mapstructure:"log"`
}

type WorkerConfig struct {
	// PoolSize bounds the number of concurrently open async
	// connections, each of which owns one blocking worker.
	PoolSize int `mapstructure:"poolsize"`
}

type BatchConfig struct {
	// MaxRows is the default number of rows per result batch when a
	// connection URI does not override it with ?batch_rows=.
	MaxRows int `mapstructure:"maxrows"`
}

type StatementConfig struct {
	// CacheSize enables the prepared-statement LRU cache on blocking
	// connections when greater than zero.
	CacheSize int `mapstructure:"cachesize"`
}

type LogConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level"`
	// Format is "json" or "text".
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Worker: WorkerConfig{PoolSize: 64},
		Batch:  BatchConfig{MaxRows: 1024},
		Log:    LogConfig{Level: "INFO", Format: "text"},
	}
}

// Load reads configuration from an optional .env file and from
// SQUILL_* environment variables (SQUILL_WORKER_POOLSIZE becomes
// worker.poolsize). Unset keys keep their defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		// The .env file is optional.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if _, statErr := os.Stat(".env"); statErr == nil {
				return Config{}, fmt.Errorf("config: reading .env: %w", err)
			}
		}
	}

	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if !strings.HasPrefix(key, envPrefix) {
			continue
		}
		// SQUILL_WORKER_POOLSIZE -> worker.poolsize
		propKey := strings.TrimPrefix(key, envPrefix)
		propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
		v.Set(propKey, value)
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Worker.PoolSize <= 0 {
		cfg.Worker.PoolSize = Default().Worker.PoolSize
	}
	if cfg.Batch.MaxRows <= 0 {
		cfg.Batch.MaxRows = Default().Batch.MaxRows
	}
	return cfg, nil
}

var (
	once   sync.Once
	global Config
)

// Get returns the process-wide configuration, loading it on first use.
// A load failure falls back to the defaults.
func Get() Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		global = cfg
	})
	return global
}
