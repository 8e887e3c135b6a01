package neardup

import (
	"runtime"

	"github.com/hupe1980/neardup/signature"
)

// Options configures a Detector.
type Options struct {
	// Bands is the number of signature bands b. More bands raise recall
	// and candidate volume.
	Bands int

	// RowsPerBand is the number of sign bits r per band, at most
	// signature.MaxRowsPerBand. More rows sharpen each band, shrinking
	// candidate volume.
	RowsPerBand int

	// Threshold is the maximum cosine distance d in [0, 2] for a pair to
	// count as a duplicate.
	Threshold float64

	// Seed drives the projection basis. The same seed and input always
	// reproduce the same result.
	Seed int64

	// Workers bounds parallelism across bands and refinement shards.
	// Defaults to GOMAXPROCS.
	Workers int

	// Logger receives stage-level progress logs. Defaults to a noop
	// logger.
	Logger *Logger

	// Metrics receives per-stage timings and counts. Defaults to
	// NoopMetricsCollector.
	Metrics MetricsCollector
}

// DefaultOptions returns the default detector configuration.
func DefaultOptions() Options {
	return Options{
		Bands:       8,
		RowsPerBand: 16,
		Threshold:   0.1,
		Seed:        1,
		Workers:     runtime.GOMAXPROCS(0),
		Logger:      NoopLogger(),
		Metrics:     NoopMetricsCollector{},
	}
}

func (o *Options) validate() error {
	if o.Bands <= 0 {
		return signature.ErrInvalidBands
	}
	if o.RowsPerBand <= 0 || o.RowsPerBand > signature.MaxRowsPerBand {
		return signature.ErrInvalidRows
	}
	if o.Bands*o.RowsPerBand > signature.MaxProjections {
		return signature.ErrTooManyProjections
	}
	if o.Threshold < 0 || o.Threshold > 2 {
		return &ErrInvalidThreshold{Threshold: o.Threshold}
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetricsCollector{}
	}
	return nil
}

// Option mutates Options.
type Option func(*Options)

// WithBands sets the number of bands b.
func WithBands(b int) Option {
	return func(o *Options) { o.Bands = b }
}

// WithRowsPerBand sets the number of sign bits r per band.
func WithRowsPerBand(r int) Option {
	return func(o *Options) { o.RowsPerBand = r }
}

// WithThreshold sets the maximum cosine distance for a duplicate.
func WithThreshold(d float64) Option {
	return func(o *Options) { o.Threshold = d }
}

// WithSeed sets the projection seed.
func WithSeed(seed int64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithWorkers bounds parallelism. Values <= 0 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithLogger sets the stage logger.
func WithLogger(l *Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *Options) { o.Metrics = mc }
}
