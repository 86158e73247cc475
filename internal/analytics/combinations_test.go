package analytics_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
)

func combinationKeys(stats []analytics.TagSetStats) []string {
	keys := make([]string, len(stats))
	for i, s := range stats {
		keys[i] = s.Key
	}
	return keys
}

func TestTagCombinationsEnumerateEverySubsetOnce(t *testing.T) {
	entries := normalize(
		rawEntry(8, "b,a", ""),
		rawEntry(6, "a, b", ""),
	)

	report := analytics.TagCombinations(entries, 0)

	assert.Equal(t, []analytics.TagSetStats{
		{Key: "a", Avg: float(7), Count: 2},
		{Key: "b", Avg: float(7), Count: 2},
		{Key: "a,b", Avg: float(7), Count: 2},
	}, report.Top)
	assert.Equal(t, 0, report.Skipped)
}

func TestTagCombinationsRankings(t *testing.T) {
	entries := normalize(
		rawEntry(9, "gym,sun", ""),
		rawEntry(7, "gym,sun", ""),
		rawEntry(2, "work", ""),
		rawEntry(4, "work", ""),
		rawEntry(5, "gym,work", ""),
		rawEntry(10, "beach", ""),
	)

	report := analytics.TagCombinations(entries, 0)

	// gym: 9,7,5 -> 7; sun and gym,sun: 8; work: 2,4,5 -> 3.67
	assert.Equal(t, []string{"sun", "gym,sun", "gym", "work"}, combinationKeys(report.Top))
	assert.Equal(t, []string{"work", "gym", "sun", "gym,sun"}, combinationKeys(report.Bottom))
	assert.Equal(t, 3.67, *report.Bottom[0].Avg)
	assert.Equal(t, 3, report.Bottom[0].Count)
}

func TestTagCombinationsRankSize(t *testing.T) {
	var raw []analytics.RawEntry
	for i := range 8 {
		tag := fmt.Sprintf("t%d", i)
		raw = append(raw, rawEntry(1+i, tag, ""), rawEntry(1+i, tag, ""))
	}

	report := analytics.TagCombinations(normalize(raw...), 0)
	assert.Equal(t, []string{"t7", "t6", "t5", "t4", "t3"}, combinationKeys(report.Top))
	assert.Equal(t, []string{"t0", "t1", "t2", "t3", "t4"}, combinationKeys(report.Bottom))
}

func TestTagCombinationsSkipOversizedTagSets(t *testing.T) {
	var many []string
	for i := range 20 {
		many = append(many, fmt.Sprintf("tag%02d", i))
	}

	entries := normalize(
		rawEntry(5, many, ""),
		rawEntry(5, many, ""),
		rawEntry(6, "calm", ""),
		rawEntry(8, "calm", ""),
	)

	report := analytics.TagCombinations(entries, analytics.DefaultMaxTagsPerEntry)
	assert.Equal(t, 2, report.Skipped)
	require.Len(t, report.Top, 1)
	assert.Equal(t, "calm", report.Top[0].Key)

	capped := analytics.TagCombinations(entries, 2)
	assert.Equal(t, 2, capped.Skipped)
}

func TestTagCombinationsClampCapToLimit(t *testing.T) {
	var overLimit []any
	for i := range analytics.MaxTagsPerEntryLimit + 1 {
		overLimit = append(overLimit, fmt.Sprintf("t%d", i))
	}
	entries := normalize(
		rawEntry(5, overLimit, ""),
		rawEntry(6, "calm", ""),
		rawEntry(8, "calm", ""),
	)

	report := analytics.TagCombinations(entries, 64)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Top, 1)
	assert.Equal(t, "calm", report.Top[0].Key)
}

func TestTagCombinationsIgnoreUnscoredEntries(t *testing.T) {
	entries := normalize(
		rawEntry(5, "a", ""),
		rawEntry(nil, "a", ""),
	)

	report := analytics.TagCombinations(entries, 0)
	assert.NotNil(t, report.Top)
	assert.Empty(t, report.Top)
	assert.Empty(t, report.Bottom)
}
