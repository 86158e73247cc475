package analytics_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
)

func TestCoOccurrences(t *testing.T) {
	entries := normalize(
		rawEntry(8, "c, b, a", ""),
		rawEntry(6, "b,a", ""),
		rawEntry(5, "c", ""),
		rawEntry("oops", nil, ""),
	)

	pairs := analytics.CoOccurrences(entries, analytics.CoOccurrenceLimit)

	assert.Equal(t, []analytics.CoOccurrencePair{
		{TagA: "a", TagB: "b", Count: 2, PercentOfEntries: 50.0},
		{TagA: "a", TagB: "c", Count: 1, PercentOfEntries: 25.0},
		{TagA: "b", TagB: "c", Count: 1, PercentOfEntries: 25.0},
	}, pairs)
}

func TestCoOccurrencesPercentRounding(t *testing.T) {
	entries := normalize(
		rawEntry(8, "x,y", ""),
		rawEntry(6, "", ""),
		rawEntry(5, "", ""),
	)

	pairs := analytics.CoOccurrences(entries, analytics.CoOccurrenceLimit)
	require.Len(t, pairs, 1)
	assert.Equal(t, 33.3, pairs[0].PercentOfEntries)
}

func TestCoOccurrencesLimit(t *testing.T) {
	var raw []analytics.RawEntry
	for i := range 12 {
		raw = append(raw, rawEntry(5, fmt.Sprintf("t%02d,u%02d", i, i), ""))
	}
	raw = append(raw, rawEntry(5, "t11,u11", ""))

	pairs := analytics.CoOccurrences(normalize(raw...), analytics.CoOccurrenceLimit)
	require.Len(t, pairs, analytics.CoOccurrenceLimit)
	assert.Equal(t, "t11", pairs[0].TagA)
	assert.Equal(t, 2, pairs[0].Count)
	assert.Equal(t, "t00", pairs[1].TagA)
}

func TestCoOccurrencesEmpty(t *testing.T) {
	pairs := analytics.CoOccurrences(normalize(rawEntry(5, "solo", "")), analytics.CoOccurrenceLimit)
	assert.NotNil(t, pairs)
	assert.Empty(t, pairs)
}
