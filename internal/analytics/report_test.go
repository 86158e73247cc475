package analytics_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
)

func sampleRawEntries() []analytics.RawEntry {
	tags := []string{"gym", "work", "family", "sleep", "rain", "coffee"}
	var raw []analytics.RawEntry
	start := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)
	for i := range 60 {
		ts := start.Add(time.Duration(i) * 7 * time.Hour)
		entryTags := fmt.Sprintf("%s,%s", tags[i%len(tags)], tags[(i*5+1)%len(tags)])
		raw = append(raw, rawEntry(1+(i*7)%10, entryTags, ts.Format(time.RFC3339)))
	}
	raw = append(raw,
		rawEntry("??", "gym", "2024-03-02T10:00:00Z"),
		rawEntry(6, "gym", "not a date"),
	)
	return raw
}

func TestComputeReportEndToEnd(t *testing.T) {
	report := analytics.ComputeReport([]analytics.RawEntry{
		{Mood: 8, Tags: "gym", Time: "2024-01-01T09:00:00Z"},
		{Mood: 3, Tags: "work", Time: "2024-01-01T15:00:00Z"},
	}, analytics.Options{})

	assert.Equal(t, "UTC", report.Timezone)
	assert.Equal(t, 2, report.EntryCount)
	assert.Equal(t, 2, report.ValidEntryCount)
	assert.Equal(t, analytics.Exclusions{}, report.Exclusions)

	hourly := report.Temporal.Hourly
	require.Len(t, hourly, 24)
	assert.Equal(t, 8.0, *hourly[9].Avg)
	assert.Equal(t, 1, hourly[9].Count)
	assert.Equal(t, 3.0, *hourly[15].Avg)
	assert.Equal(t, 1, hourly[15].Count)
	for h, agg := range hourly {
		if h != 9 && h != 15 {
			assert.Nil(t, agg.Avg, "hour %d", h)
		}
	}

	for _, bucket := range report.Distribution.Histogram {
		switch bucket.Score {
		case 3, 8:
			assert.Equal(t, 1, bucket.Count, "score %d", bucket.Score)
		default:
			assert.Equal(t, 0, bucket.Count, "score %d", bucket.Score)
		}
	}
	assert.Equal(t, analytics.CategorySplit{Low: 1, Medium: 0, High: 1}, report.Distribution.Categories)

	// one daily average of 5.5 is neutral
	assert.Nil(t, report.Streaks.LongestPositive)
	assert.Empty(t, report.CoOccurrences)
	assert.Empty(t, report.MoodChanges)
}

func TestComputeReportEmpty(t *testing.T) {
	report := analytics.ComputeReport(nil, analytics.Options{})

	assert.Equal(t, 0, report.EntryCount)
	assert.Len(t, report.Temporal.Hourly, 24)
	assert.Empty(t, report.Temporal.Daily)
	assert.Empty(t, report.Tags.Stats)
	assert.Nil(t, report.Streaks.LongestPositive)
	assert.Empty(t, report.Streaks.All)
	assert.Empty(t, report.CoOccurrences)
	assert.Empty(t, report.Combinations.Top)
	assert.Empty(t, report.MoodChanges)
	assert.Len(t, report.Distribution.Histogram, 10)
	assert.Len(t, report.Distribution.Heatmap, 168)
}

func TestComputeReportIsDeterministic(t *testing.T) {
	raw := sampleRawEntries()

	first := analytics.ComputeReport(raw, analytics.Options{})
	second := analytics.ComputeReport(raw, analytics.Options{})
	assert.Equal(t, first, second)
}

func TestComputeReportCountsExclusions(t *testing.T) {
	report := analytics.ComputeReport(sampleRawEntries(), analytics.Options{})

	assert.Equal(t, 62, report.EntryCount)
	assert.Equal(t, 61, report.ValidEntryCount)
	assert.Equal(t, analytics.Exclusions{InvalidScore: 1, InvalidTime: 1}, report.Exclusions)

	histogramTotal := 0
	for _, bucket := range report.Distribution.Histogram {
		histogramTotal += bucket.Count
	}
	assert.Equal(t, report.ValidEntryCount, histogramTotal)
	assert.Equal(t, histogramTotal, report.Distribution.Categories.Total())
}

func TestComputeReportLogsOversizedTagSets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var many []any
	for i := range 20 {
		many = append(many, fmt.Sprintf("tag%d", i))
	}
	raw := []analytics.RawEntry{
		{Mood: 5, Tags: many, Time: "2024-01-01T09:00:00Z"},
		{Mood: 6, Tags: "a,b", Time: "2024-01-01T10:00:00Z"},
		{Mood: 7, Tags: "a,b", Time: "2024-01-01T11:00:00Z"},
	}

	report := analytics.ComputeReport(raw, analytics.Options{Logger: logger})

	assert.Equal(t, 1, report.Exclusions.OversizedTagSet)
	assert.Equal(t, []string{"a", "b", "a,b"}, combinationKeys(report.Combinations.Top))
	assert.Contains(t, buf.String(), "Skipped oversized tag sets")

	// the oversized entry still feeds every other stage
	assert.Equal(t, 3, report.ValidEntryCount)
	assert.Len(t, report.Tags.Stats, 22)
}

func TestComputeReportClampsTagCap(t *testing.T) {
	var many []any
	for i := range 63 {
		many = append(many, fmt.Sprintf("tag%d", i))
	}
	raw := []analytics.RawEntry{
		{Mood: 5, Tags: many, Time: "2024-01-01T09:00:00Z"},
		{Mood: 6, Tags: "a", Time: "2024-01-01T10:00:00Z"},
	}

	var report analytics.Report
	require.NotPanics(t, func() {
		report = analytics.ComputeReport(raw, analytics.Options{MaxTagsPerEntry: 64})
	})
	assert.Equal(t, 1, report.Exclusions.OversizedTagSet)
	assert.Equal(t, 1, report.Combinations.Skipped)
}

func TestComputeReportHonoursOptions(t *testing.T) {
	raw := sampleRawEntries()
	plusNine := time.FixedZone("UTC+9", 9*60*60)

	report := analytics.ComputeReport(raw, analytics.Options{Location: plusNine, TagRankSize: 1})
	assert.Equal(t, "UTC+9", report.Timezone)
	assert.Len(t, report.Tags.Top, 1)
	assert.Len(t, report.Tags.Bottom, 1)

	utc := analytics.ComputeReport(raw, analytics.Options{})
	assert.NotEqual(t, utc.Temporal.Hourly, report.Temporal.Hourly)
}

func TestBuildMatchesComputeReport(t *testing.T) {
	raw := sampleRawEntries()

	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			opts := analytics.Options{Workers: workers}
			built, err := analytics.Build(context.Background(), raw, opts)
			require.NoError(t, err)
			assert.Equal(t, analytics.ComputeReport(raw, opts), built)
		})
	}
}

func TestBuildCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analytics.Build(ctx, sampleRawEntries(), analytics.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
