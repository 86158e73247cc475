package seeder_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
	"moodlens/internal/entries"
	"moodlens/internal/seeder"
	"moodlens/internal/testsupport"
)

func TestGenerateIsDeterministic(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := seeder.NewSeeder(nil, testsupport.GetLogger(), 30).Generate(from)
	b := seeder.NewSeeder(nil, testsupport.GetLogger(), 30).Generate(from)
	assert.Equal(t, a, b)

	other := seeder.NewSeeder(nil, testsupport.GetLogger(), 30)
	other.Seed = 7
	assert.NotEqual(t, a, other.Generate(from))
}

func TestGenerateShape(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := seeder.NewSeeder(nil, testsupport.GetLogger(), 60).Generate(from)

	assert.GreaterOrEqual(t, len(raw), 60)
	assert.LessOrEqual(t, len(raw), 240)

	report := analytics.ComputeReport(raw, analytics.Options{})
	assert.Equal(t, len(raw), report.EntryCount)
	assert.Greater(t, report.ValidEntryCount, len(raw)*9/10)

	for _, day := range report.Temporal.Daily {
		date, err := time.Parse(analytics.DateFormat, day.Date)
		require.NoError(t, err)
		assert.False(t, date.Before(from), "day %s before range", day.Date)
		assert.True(t, date.Before(from.AddDate(0, 0, 60)), "day %s after range", day.Date)
	}
}

func TestRun(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	testsupport.CleanAllTables(db)

	s := seeder.NewSeeder(dbManager, logger, 14)
	require.NoError(t, s.Run(context.Background()))

	count, err := entries.CountEntries(db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, int64(14))

	snapshot, err := entries.LoadSnapshot(db)
	require.NoError(t, err)
	assert.Len(t, snapshot, int(count))
}
