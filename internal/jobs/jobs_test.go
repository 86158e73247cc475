package jobs_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
	"moodlens/internal/entries"
	"moodlens/internal/jobs"
	"moodlens/internal/metrics"
	"moodlens/internal/testsupport"
)

func TestReportRefreshJob(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	cfg := testsupport.TestConfig(t)
	testsupport.CleanAllTables(db)
	testsupport.CreateTestEntries(t, db, testsupport.SampleEntries()...)

	m := metrics.New()
	job := jobs.NewReportRefreshJob(dbManager, logger, cfg, m)
	assert.Equal(t, "report_refresh", job.Name())

	require.NoError(t, job.Run(context.Background()))

	expected := `
# HELP moodlens_entries Entries in the last computed snapshot
# TYPE moodlens_entries gauge
moodlens_entries 9
# HELP moodlens_valid_entries Entries with a valid mood score in the last computed snapshot
# TYPE moodlens_valid_entries gauge
moodlens_valid_entries 8
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"moodlens_entries", "moodlens_valid_entries"))
}

func TestCleanupJob(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	cfg := testsupport.TestConfig(t)

	seed := func(t *testing.T) {
		testsupport.CleanAllTables(db)
		created := testsupport.CreateTestEntries(t, db,
			analytics.RawEntry{Mood: 5},
			analytics.RawEntry{Mood: 6},
			analytics.RawEntry{Mood: 7},
		)
		old := time.Now().AddDate(0, 0, -40)
		require.NoError(t, db.Model(&entries.Entry{}).
			Where("id IN ?", []uint{created[0].ID, created[1].ID}).
			Update("created_at", old).Error)
	}

	t.Run("retention disabled keeps everything", func(t *testing.T) {
		seed(t)
		cfg.EntryRetentionDays = 0

		require.NoError(t, jobs.NewCleanupJob(dbManager, logger, cfg).Run(context.Background()))

		count, err := entries.CountEntries(db)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("expired entries are removed", func(t *testing.T) {
		seed(t)
		cfg.EntryRetentionDays = 30

		require.NoError(t, jobs.NewCleanupJob(dbManager, logger, cfg).Run(context.Background()))

		count, err := entries.CountEntries(db)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestSchedulerStartStop(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.TestConfig(t)
	testsupport.CleanAllTables(db)
	testsupport.CreateTestEntries(t, db, analytics.RawEntry{Mood: 8, Time: "2024-01-01T09:00:00Z"})

	m := metrics.New()
	scheduler, err := jobs.NewScheduler(dbManager, logger, m)
	require.NoError(t, err)

	require.NoError(t, scheduler.Start())
	assert.True(t, scheduler.IsRunning())

	// The initial refresh runs right after start
	require.Eventually(t, func() bool {
		count, err := testutil.GatherAndCount(m.Registry(), "moodlens_reports_total")
		return err == nil && count == 1
	}, 5*time.Second, 20*time.Millisecond)

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
	assert.NoError(t, scheduler.RefreshReport(), "manual refresh is a no-op once stopped")
}
