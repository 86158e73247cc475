package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"

	"moodlens/internal/config"
	"moodlens/internal/entries"
)

const cleanupBatchSize = 1000

// CleanupJob removes entries older than the configured retention period
type CleanupJob struct {
	dbManager cartridge.DBManager
	logger    *slog.Logger
	cfg       *config.Config
}

func NewCleanupJob(dbManager cartridge.DBManager, logger *slog.Logger, cfg *config.Config) *CleanupJob {
	return &CleanupJob{
		dbManager: dbManager,
		logger:    logger,
		cfg:       cfg,
	}
}

func (j *CleanupJob) Name() string {
	return "entry_cleanup"
}

// Run deletes expired entries in batches. A retention of 0 days keeps
// everything.
func (j *CleanupJob) Run(ctx context.Context) error {
	retentionDays := j.cfg.EntryRetentionDays
	if retentionDays <= 0 {
		return nil
	}

	cutoffDate := time.Now().AddDate(0, 0, -retentionDays)
	j.logger.Info("Starting cleanup of old entries",
		slog.Int("retention_days", retentionDays),
		slog.Time("cutoff_date", cutoffDate))

	db := j.dbManager.GetConnection().WithContext(ctx)
	deleted, err := entries.DeleteEntriesOlderThan(db, j.logger, cutoffDate, cleanupBatchSize)
	if err != nil {
		j.logger.Error("Failed to delete old entries",
			slog.Any("error", err),
			slog.Int64("deleted_so_far", deleted))
		return err
	}

	if deleted == 0 {
		j.logger.Debug("No old entries to clean up")
		return nil
	}

	j.logger.Info("Cleaned up old entries",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", retentionDays))
	return nil
}
