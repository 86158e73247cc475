// Package reporting loads an entry snapshot and runs the analytics pipeline
// over it with the configured options.
package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"moodlens/internal/analytics"
	"moodlens/internal/config"
	"moodlens/internal/entries"
	"moodlens/internal/metrics"
)

// Report sources used as metric labels
const (
	SourceAPI = "api"
	SourceJob = "job"
	SourceCLI = "cli"
)

// Generator computes reports from the entry store
type Generator struct {
	db      *gorm.DB
	logger  *slog.Logger
	metrics *metrics.Metrics
	opts    analytics.Options
	timeout time.Duration
}

// NewGenerator creates a generator using the report settings of cfg. m may
// be nil.
func NewGenerator(db *gorm.DB, logger *slog.Logger, cfg *config.Config, m *metrics.Metrics) *Generator {
	return &Generator{
		db:      db,
		logger:  logger,
		metrics: m,
		opts:    OptionsFromConfig(cfg, logger),
		timeout: cfg.ReportTimeout(),
	}
}

// OptionsFromConfig maps configuration onto pipeline options
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) analytics.Options {
	return analytics.Options{
		Location:        cfg.Location(),
		TagRankSize:     cfg.TagRankSize,
		MaxTagsPerEntry: cfg.MaxTagsPerEntry,
		Workers:         cfg.ReportWorkers,
		Logger:          logger,
	}
}

// Options returns the options reports are computed with
func (g *Generator) Options() analytics.Options {
	return g.opts
}

// Generate loads one snapshot and builds its report. loc overrides the
// configured location when not nil.
func (g *Generator) Generate(ctx context.Context, source string, loc *time.Location) (analytics.Report, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	report, err := g.generate(ctx, loc)
	g.metrics.ObserveReport(source, time.Since(start), err)
	if err != nil {
		g.logger.Error("Failed to generate report", slog.String("source", source), slog.Any("error", err))
		return analytics.Report{}, err
	}

	g.logger.Debug("Report generated",
		slog.String("source", source),
		slog.Int("entries", report.EntryCount),
		slog.Duration("elapsed", time.Since(start)))
	return report, nil
}

func (g *Generator) generate(ctx context.Context, loc *time.Location) (analytics.Report, error) {
	snapshot, err := entries.LoadSnapshot(g.db.WithContext(ctx))
	if err != nil {
		return analytics.Report{}, fmt.Errorf("failed to load entries: %w", err)
	}

	opts := g.opts
	if loc != nil {
		opts.Location = loc
	}

	report, err := analytics.Build(ctx, snapshot, opts)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("failed to build report: %w", err)
	}
	return report, nil
}
