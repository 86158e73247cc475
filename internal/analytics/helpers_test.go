package analytics_test

import (
	"time"

	"moodlens/internal/analytics"
)

func rawEntry(mood any, tags any, ts string) analytics.RawEntry {
	return analytics.RawEntry{Mood: mood, Tags: tags, Time: ts}
}

func normalize(raw ...analytics.RawEntry) []analytics.Entry {
	return analytics.Normalize(raw, time.UTC)
}

func float(v float64) *float64 {
	return &v
}
