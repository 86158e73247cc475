package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karloscodes/cartridge"

	"moodlens/internal/config"
	"moodlens/internal/metrics"
)

const cleanupInterval = 24 * time.Hour

// Scheduler is responsible for running background jobs.
// Implements cartridge.BackgroundWorker.
type Scheduler struct {
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	enabled   bool
	isRunning bool
	cfg       *config.Config

	// Mutex to prevent concurrent job executions
	processingMutex sync.Mutex
	isProcessing    bool

	// Job instances
	reportRefresh *ReportRefreshJob
	cleanupJob    *CleanupJob

	// Tickers for each job type
	reportTicker  *time.Ticker
	cleanupTicker *time.Ticker

	wg sync.WaitGroup
}

var _ cartridge.BackgroundWorker = (*Scheduler)(nil)

func NewScheduler(dbManager cartridge.DBManager, logger *slog.Logger, m *metrics.Metrics) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.GetConfig()

	s := &Scheduler{
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		enabled:   true,
		isRunning: false,
		cfg:       cfg,
	}

	s.reportRefresh = NewReportRefreshJob(dbManager, logger, cfg, m)
	s.cleanupJob = NewCleanupJob(dbManager, logger, cfg)

	return s, nil
}

// executeJobSafely runs a job only if no other job is currently executing
func (s *Scheduler) executeJobSafely(job Job) {
	s.processingMutex.Lock()
	if s.isProcessing {
		s.logger.Debug("Skipping job execution - previous job still running", slog.String("job", job.Name()))
		s.processingMutex.Unlock()
		return
	}
	s.isProcessing = true
	s.processingMutex.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic recovered in background job",
				slog.String("job", job.Name()),
				slog.Any("panic", r))
		}

		s.processingMutex.Lock()
		s.isProcessing = false
		s.processingMutex.Unlock()
	}()

	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("Error executing job", slog.String("job", job.Name()), slog.Any("error", err))
	}
}

// Start begins all background jobs
func (s *Scheduler) Start() error {
	if !s.enabled {
		s.logger.Info("Background jobs are disabled.")
		return nil
	}

	if s.isRunning {
		s.logger.Info("Background jobs already running.")
		return nil
	}

	s.logger.Info("Starting background jobs...")
	s.isRunning = true

	s.startReportRefreshJob()

	if s.cfg.EntryRetentionDays > 0 {
		s.startCleanupJob()
	} else {
		s.logger.Info("Entry retention disabled, cleanup job not scheduled")
	}

	s.logger.Info("Background jobs started",
		slog.Bool("enabled", s.enabled),
		slog.Bool("isRunning", s.isRunning))

	return nil
}

func (s *Scheduler) startReportRefreshJob() {
	interval := time.Duration(s.cfg.JobIntervalSeconds) * time.Second
	s.logger.Info("Starting report refresh job", slog.Duration("interval", interval))
	s.reportTicker = time.NewTicker(interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.logger.Info("Running initial report refresh...")
		s.executeJobSafely(s.reportRefresh)

		for {
			select {
			case <-s.reportTicker.C:
				s.executeJobSafely(s.reportRefresh)
			case <-s.ctx.Done():
				s.logger.Info("Report refresh job stopped")
				return
			}
		}
	}()
}

func (s *Scheduler) startCleanupJob() {
	s.logger.Info("Starting cleanup job", slog.Duration("interval", cleanupInterval))
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.logger.Info("Running initial cleanup...")
		if err := s.cleanupJob.Run(s.ctx); err != nil {
			s.logger.Error("Error in initial cleanup job", slog.Any("error", err))
		}

		for {
			select {
			case <-s.cleanupTicker.C:
				s.executeJobSafely(s.cleanupJob)
			case <-s.ctx.Done():
				s.logger.Info("Cleanup job stopped")
				return
			}
		}
	}()
}

// Stop halts all background jobs and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background jobs...")
	s.enabled = false

	if s.reportTicker != nil {
		s.reportTicker.Stop()
	}
	if s.cleanupTicker != nil {
		s.cleanupTicker.Stop()
	}

	s.cancel()
	s.wg.Wait()
	s.isRunning = false
	s.logger.Info("Background jobs stopped")
}

// IsRunning returns whether jobs are currently running
func (s *Scheduler) IsRunning() bool {
	return s.isRunning
}

// RefreshReport allows manual triggering of the report refresh
func (s *Scheduler) RefreshReport() error {
	if !s.enabled {
		return nil
	}
	return s.reportRefresh.Run(s.ctx)
}
