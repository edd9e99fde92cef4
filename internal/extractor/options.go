// Package extractor orchestrates the multi-pass relational filter that
// produces a GTFS feed subset, walking the feed's relationship graph in
// a fixed order and threading id-sets from one pass's output into the
// next pass's predicate.
package extractor

import (
	"runtime"

	"github.com/mkuranowski/gtfs-subset/internal/csvengine"
	"github.com/mkuranowski/gtfs-subset/logging"
)

// ProgressFunc is called after each named pass completes. It is purely
// informational; a nil value is a no-op.
type ProgressFunc func(pass string)

// Config holds the tunables shared by every driver.
type Config struct {
	Workers   int
	ChunkSize int
	Logger    logging.Logger
	Progress  ProgressFunc
}

// Option configures a Config.
type Option func(*Config)

// WithWorkers sets the number of chunks processed concurrently per
// pass. The default is runtime.NumCPU()-1, floored at 1.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithChunkSize sets the number of rows read per unit of work.
func WithChunkSize(n int) Option {
	return func(c *Config) { c.ChunkSize = n }
}

// WithLogger overrides the logger used for pass-level diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithProgress registers a callback invoked after each pass.
func WithProgress(f ProgressFunc) Option {
	return func(c *Config) { c.Progress = f }
}

func defaultConfig() Config {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return Config{
		Workers:   workers,
		ChunkSize: 2000,
		Logger:    logging.GetGlobalLogger(),
	}
}

func newConfig(opts ...Option) Config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) engine() *csvengine.Engine {
	return csvengine.NewEngine(c.Workers, c.ChunkSize, c.Logger)
}

func (c Config) report(pass string) {
	if c.Progress != nil {
		c.Progress(pass)
	}
	c.Logger.Debug("pass complete", logging.String("pass", pass))
}
