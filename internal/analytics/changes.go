package analytics

import (
	"cmp"
	"slices"
)

// MoodChangeLimit is the number of tags kept in the mood change ranking
const MoodChangeLimit = 10

const minMoodChangeCount = 2

// MoodChangeByTag is the average mood delta seen right after entries carrying
// a tag.
type MoodChangeByTag struct {
	Tag              string  `json:"tag" yaml:"tag"`
	AvgChange        float64 `json:"avg_change" yaml:"avg_change"`
	Count            int     `json:"count" yaml:"count"`
	PercentOfEntries float64 `json:"percent_of_entries" yaml:"percent_of_entries"`
}

// Chronological returns the scored and timed entries ordered by time. Entries
// logged at the same instant keep snapshot order.
func Chronological(entries []Entry) []Entry {
	ordered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if scoredAndTimed(e) {
			ordered = append(ordered, e)
		}
	}
	slices.SortStableFunc(ordered, func(a, b Entry) int {
		if c := a.Time.Compare(b.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ordered
}

// MoodChanges attributes each delta between consecutive entries to the tags
// of the earlier one and ranks tags by average delta. Entries without both a
// valid score and a valid timestamp cannot be ordered and are left out.
func MoodChanges(entries []Entry, limit int) []MoodChangeByTag {
	ordered := Chronological(entries)

	groups := newOrderedGroups[int]()
	for i := 1; i < len(ordered); i++ {
		prev, curr := ordered[i-1], ordered[i]
		delta := curr.Score - prev.Score
		for _, tag := range prev.Tags {
			groups.add(tag, delta)
		}
	}

	total := len(entries)
	changes := []MoodChangeByTag{}
	for _, tag := range groups.keys {
		deltas := groups.values[tag]
		if len(deltas) < minMoodChangeCount {
			continue
		}
		changes = append(changes, MoodChangeByTag{
			Tag:              tag,
			AvgChange:        *Mean(deltas),
			Count:            len(deltas),
			PercentOfEntries: Percent(len(deltas), total),
		})
	}

	slices.SortStableFunc(changes, func(a, b MoodChangeByTag) int {
		return cmp.Compare(b.AvgChange, a.AvgChange)
	})
	return changes[:min(limit, len(changes))]
}
