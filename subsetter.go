package gtfssubset

import (
	"context"
	"time"

	"github.com/mkuranowski/gtfs-subset/internal/bbox"
	"github.com/mkuranowski/gtfs-subset/internal/extractor"
	"github.com/mkuranowski/gtfs-subset/internal/feed"
	"github.com/mkuranowski/gtfs-subset/logging"
)

// Subsetter extracts subsets from GTFS feeds.
type Subsetter interface {
	// ExtractByBbox keeps only the data reachable from stops inside b.
	ExtractByBbox(inputPath, outputFolder string, b bbox.Bbox) ([]string, error)
	// ExtractByBboxContext is ExtractByBbox with cancellation support.
	ExtractByBboxContext(ctx context.Context, inputPath, outputFolder string, b bbox.Bbox) ([]string, error)

	// ExtractByDate keeps only the data reachable from services whose
	// calendar window lies entirely within [start, end], plus services
	// with a calendar_dates exception dated inside [start, end].
	ExtractByDate(inputPath, outputFolder string, start, end time.Time) ([]string, error)
	// ExtractByDateContext is ExtractByDate with cancellation support.
	ExtractByDateContext(ctx context.Context, inputPath, outputFolder string, start, end time.Time) ([]string, error)

	// Metadata reports the feed's service date window as
	// "YYYY-MM-DD HH:MM:SS" strings.
	Metadata(inputPath string) (start, end string, err error)
	// MetadataContext is Metadata with cancellation support.
	MetadataContext(ctx context.Context, inputPath string) (start, end string, err error)
}

// ProgressCallback is invoked after each pass of a driver completes.
type ProgressCallback func(pass string)

// Config holds tunables shared by every extraction this Subsetter runs.
type Config struct {
	// Workers bounds how many chunks of one file are processed
	// concurrently. Zero selects CPU count minus one, floored at 1.
	Workers int

	// ChunkSize is the number of rows read per unit of work. Zero
	// selects a default tuned for typical GTFS row sizes.
	ChunkSize int

	// Logger receives structured diagnostics. Nil uses the package
	// global logger.
	Logger logging.Logger

	// ProgressCallback is called after each pass, if non-nil.
	ProgressCallback ProgressCallback
}

// Option configures a Config.
type Option func(*Config)

// WithWorkers overrides the worker count.
func WithWorkers(n int) Option { return func(c *Config) { c.Workers = n } }

// WithChunkSize overrides the chunk size.
func WithChunkSize(n int) Option { return func(c *Config) { c.ChunkSize = n } }

// WithLogger overrides the logger.
func WithLogger(l logging.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithProgressCallback registers a per-pass progress callback.
func WithProgressCallback(cb ProgressCallback) Option {
	return func(c *Config) { c.ProgressCallback = cb }
}

type subsetter struct {
	cfg Config
}

// New builds a Subsetter. Options configure worker count, chunk size,
// logging, and progress reporting; all have sensible defaults.
func New(opts ...Option) Subsetter {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &subsetter{cfg: cfg}
}

func (s *subsetter) extractorOptions() []extractor.Option {
	var opts []extractor.Option
	if s.cfg.Workers > 0 {
		opts = append(opts, extractor.WithWorkers(s.cfg.Workers))
	}
	if s.cfg.ChunkSize > 0 {
		opts = append(opts, extractor.WithChunkSize(s.cfg.ChunkSize))
	}
	if s.cfg.Logger != nil {
		opts = append(opts, extractor.WithLogger(s.cfg.Logger))
	}
	if s.cfg.ProgressCallback != nil {
		opts = append(opts, extractor.WithProgress(extractor.ProgressFunc(s.cfg.ProgressCallback)))
	}
	return opts
}

func (s *subsetter) logger() logging.Logger {
	if s.cfg.Logger != nil {
		return s.cfg.Logger
	}
	return logging.GetGlobalLogger()
}

func (s *subsetter) ExtractByBbox(inputPath, outputFolder string, b bbox.Bbox) ([]string, error) {
	return s.ExtractByBboxContext(context.Background(), inputPath, outputFolder, b)
}

func (s *subsetter) ExtractByBboxContext(ctx context.Context, inputPath, outputFolder string, b bbox.Bbox) ([]string, error) {
	l, err := feed.Open(inputPath, s.logger())
	if err != nil {
		return nil, err
	}
	defer l.Close()

	rf, err := extractor.New(l, outputFolder, s.extractorOptions()...)
	if err != nil {
		return nil, err
	}
	return rf.ExtractByBbox(ctx, b)
}

func (s *subsetter) ExtractByDate(inputPath, outputFolder string, start, end time.Time) ([]string, error) {
	return s.ExtractByDateContext(context.Background(), inputPath, outputFolder, start, end)
}

func (s *subsetter) ExtractByDateContext(ctx context.Context, inputPath, outputFolder string, start, end time.Time) ([]string, error) {
	l, err := feed.Open(inputPath, s.logger())
	if err != nil {
		return nil, err
	}
	defer l.Close()

	rf, err := extractor.New(l, outputFolder, s.extractorOptions()...)
	if err != nil {
		return nil, err
	}
	return rf.ExtractByDate(ctx, start, end)
}

func (s *subsetter) Metadata(inputPath string) (string, string, error) {
	return s.MetadataContext(context.Background(), inputPath)
}

func (s *subsetter) MetadataContext(ctx context.Context, inputPath string) (string, string, error) {
	l, err := feed.Open(inputPath, s.logger())
	if err != nil {
		return "", "", err
	}
	defer l.Close()

	return extractor.ServiceDateRange(ctx, l, s.extractorOptions()...)
}
