package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"moodlens/internal/config"
	"moodlens/internal/metrics"
	"moodlens/internal/reporting"
)

// ReportRefreshJob recomputes the report over the stored entries and
// publishes its headline numbers as gauges.
type ReportRefreshJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
	metrics   *metrics.Metrics
}

func NewReportRefreshJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config, m *metrics.Metrics) *ReportRefreshJob {
	return &ReportRefreshJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
		metrics:   m,
	}
}

func (j *ReportRefreshJob) Name() string {
	return "report_refresh"
}

// Run computes one report and updates the report gauges
func (j *ReportRefreshJob) Run(ctx context.Context) error {
	gen := reporting.NewGenerator(j.dbManager.GetConnection(), j.logger, j.cfg, j.metrics)

	report, err := gen.Generate(ctx, reporting.SourceJob, nil)
	if err != nil {
		return err
	}

	j.metrics.SetReport(report, time.Now())
	j.logger.Debug("Refreshed report metrics",
		slog.Int("entries", report.EntryCount),
		slog.Int("valid_entries", report.ValidEntryCount))
	return nil
}
