// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"

	"github.com/okian/tellsight/internal/domain/model"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Addr configures the admin HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// HumanDatasetPath points at the human hand corpus (JSON array).
	// The process refuses to start without it.
	HumanDatasetPath string `koanf:"human_dataset_path" validate:"required"`

	// PollIntervalSeconds is the pause between evaluation cycles.
	PollIntervalSeconds int `koanf:"poll_interval_seconds" validate:"min=1"`

	// RequestTimeoutSeconds bounds a single worker classify call.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds" validate:"min=1"`

	// CycleTimeoutSeconds bounds the dispatch phase of a whole cycle.
	CycleTimeoutSeconds int `koanf:"cycle_timeout_seconds" validate:"min=1"`

	// BatchSize is the number of hands per batch.
	BatchSize int `koanf:"batch_size" validate:"min=1"`

	// ChunkWidth is the number of batches per chunk.
	ChunkWidth int `koanf:"chunk_width" validate:"min=2"`

	// ChunksPerCycle is how many chunks each cycle evaluates.
	ChunksPerCycle int `koanf:"chunks_per_cycle" validate:"min=1"`

	// HumanRatio is the target fraction of human batches per chunk.
	HumanRatio float64 `koanf:"human_ratio" validate:"gt=0,lt=1"`

	// PoolSize caps the in-memory human hand pool.
	PoolSize int `koanf:"pool_size" validate:"min=1"`

	// Seed makes sampling and batch ordering reproducible. Zero means
	// derive from the clock.
	Seed int64 `koanf:"seed"`

	// Workers is the static evaluation roster. RosterPath, when set,
	// is merged in by the registry at startup.
	Workers    []model.Worker `koanf:"workers" validate:"dive"`
	RosterPath string         `koanf:"roster_path"`

	// BurnFraction is the share of weight reserved for the sink UID.
	BurnFraction float64 `koanf:"burn_fraction" validate:"min=0,max=1"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		PollIntervalSeconds:   300,
		RequestTimeoutSeconds: 20,
		CycleTimeoutSeconds:   120,
		BatchSize:             10,
		ChunkWidth:            4,
		ChunksPerCycle:        8,
		HumanRatio:            0.5,
		PoolSize:              10_000,
		BurnFraction:          0.97,
	}
}

// PollInterval returns the inter-cycle pause as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// RequestTimeout returns the per-request bound as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CycleTimeout returns the per-cycle dispatch bound as a duration.
func (c *Config) CycleTimeout() time.Duration {
	return time.Duration(c.CycleTimeoutSeconds) * time.Second
}
