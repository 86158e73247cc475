package reporting_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
	"moodlens/internal/metrics"
	"moodlens/internal/reporting"
	"moodlens/internal/testsupport"
)

func TestGenerate(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	cfg := testsupport.TestConfig(t)

	raw := testsupport.SampleEntries()
	testsupport.CreateTestEntries(t, db, raw...)

	m := metrics.New()
	gen := reporting.NewGenerator(db, logger, cfg, m)

	report, err := gen.Generate(context.Background(), reporting.SourceAPI, nil)
	require.NoError(t, err)

	assert.Equal(t, analytics.ComputeReport(raw, gen.Options()), report)
	assert.Equal(t, len(raw), report.EntryCount)

	expected := `
# HELP moodlens_reports_total Reports computed, by source and result
# TYPE moodlens_reports_total counter
moodlens_reports_total{result="ok",source="api"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "moodlens_reports_total"))
}

func TestGenerateWithLocationOverride(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	cfg := testsupport.TestConfig(t)

	testsupport.CreateTestEntries(t, db, analytics.RawEntry{Mood: 7, Time: "2024-01-01T23:30:00Z"})

	gen := reporting.NewGenerator(db, logger, cfg, nil)
	report, err := gen.Generate(context.Background(), reporting.SourceCLI, time.FixedZone("UTC+2", 2*60*60))
	require.NoError(t, err)

	assert.Equal(t, "UTC+2", report.Timezone)
	require.Len(t, report.Temporal.Daily, 1)
	assert.Equal(t, "2024-01-02", report.Temporal.Daily[0].Date)
	assert.Equal(t, 1, report.Temporal.Hourly[1].Count)
}

func TestGenerateCancelled(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	cfg := testsupport.TestConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := reporting.NewGenerator(dbManager.GetConnection(), logger, cfg, metrics.New())
	_, err := gen.Generate(ctx, reporting.SourceJob, nil)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testsupport.TestConfig(t)

	opts := reporting.OptionsFromConfig(cfg, testsupport.GetLogger())
	assert.Equal(t, cfg.Location(), opts.Location)
	assert.Equal(t, cfg.MaxTagsPerEntry, opts.MaxTagsPerEntry)
	assert.Equal(t, cfg.TagRankSize, opts.TagRankSize)
	assert.Equal(t, cfg.ReportWorkers, opts.Workers)
}
