package options

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/exploopio/nessus/pkg/core"
	"github.com/exploopio/nessus/pkg/metrics"
)

func TestNewReaderConfig_Defaults(t *testing.T) {
	cfg := NewReaderConfig()
	assert.IsType(t, &core.NopLogger{}, cfg.Logger)
	assert.IsType(t, &metrics.NopCollector{}, cfg.Collector)
	assert.False(t, cfg.Strict)
	assert.Equal(t, DefaultMaxReportSize, cfg.MaxReportSize)
}

func TestNewReaderConfig_Options(t *testing.T) {
	logger := core.NewDefaultLogger("test", core.LogLevelSilent)
	collector := metrics.NewInMemoryCollector()

	cfg := NewReaderConfig(
		WithLogger(logger),
		WithCollector(collector),
		WithStrict(true),
		WithMaxReportSize(1024),
	)

	assert.Same(t, logger, cfg.Logger)
	assert.Same(t, collector, cfg.Collector)
	assert.True(t, cfg.Strict)
	assert.Equal(t, int64(1024), cfg.MaxReportSize)
}

func TestNewReaderConfig_IgnoresZeroValues(t *testing.T) {
	cfg := NewReaderConfig(WithLogger(nil), WithCollector(nil), WithMaxReportSize(0))
	assert.NotNil(t, cfg.Logger)
	assert.NotNil(t, cfg.Collector)
	assert.Equal(t, DefaultMaxReportSize, cfg.MaxReportSize)
}
