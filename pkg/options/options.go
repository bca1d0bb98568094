// Package options provides the functional options for report reading.
package options

import (
	"github.com/exploopio/nessus/pkg/core"
	"github.com/exploopio/nessus/pkg/metrics"
)

// DefaultMaxReportSize caps the uncompressed document size read into memory.
const DefaultMaxReportSize int64 = 512 << 20

// =============================================================================
// Reader Options
// =============================================================================

// ReaderConfig holds the final report reader configuration.
type ReaderConfig struct {
	Logger        core.Logger
	Collector     metrics.Collector
	Strict        bool  // abort the walk on the first malformed item instead of skipping it
	MaxReportSize int64 // bytes, after decompression
}

// ReaderOption is a function that configures the report reader.
type ReaderOption func(*ReaderConfig)

// DefaultReaderConfig returns default reader configuration.
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		Logger:        &core.NopLogger{},
		Collector:     &metrics.NopCollector{},
		MaxReportSize: DefaultMaxReportSize,
	}
}

// ApplyReaderOptions applies options to config.
func ApplyReaderOptions(cfg *ReaderConfig, opts ...ReaderOption) {
	for _, opt := range opts {
		opt(cfg)
	}
}

// NewReaderConfig returns the defaults with opts applied.
func NewReaderConfig(opts ...ReaderOption) *ReaderConfig {
	cfg := DefaultReaderConfig()
	ApplyReaderOptions(cfg, opts...)
	return cfg
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l core.Logger) ReaderOption {
	return func(c *ReaderConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithCollector sets the metrics collector. A nil collector is ignored.
func WithCollector(m metrics.Collector) ReaderOption {
	return func(c *ReaderConfig) {
		if m != nil {
			c.Collector = m
		}
	}
}

// WithStrict makes a malformed item abort the walk.
func WithStrict(strict bool) ReaderOption {
	return func(c *ReaderConfig) {
		c.Strict = strict
	}
}

// WithMaxReportSize sets the document size cap. Non-positive values keep the default.
func WithMaxReportSize(n int64) ReaderOption {
	return func(c *ReaderConfig) {
		if n > 0 {
			c.MaxReportSize = n
		}
	}
}
