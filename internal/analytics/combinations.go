package analytics

import (
	"cmp"
	"slices"
	"strings"
)

const (
	// CombinationRankSize is the length of the best and worst rankings
	CombinationRankSize = 5

	// DefaultMaxTagsPerEntry bounds power set expansion to 4095 subsets
	DefaultMaxTagsPerEntry = 12

	// MaxTagsPerEntryLimit is the hard ceiling on the per-entry tag cap,
	// about a million subsets per entry
	MaxTagsPerEntryLimit = 20

	minCombinationCount = 2
)

// TagSetStats is the mood observed for one tag subset
type TagSetStats struct {
	Key   string   `json:"key" yaml:"key"`
	Avg   *float64 `json:"avg" yaml:"avg"`
	Count int      `json:"count" yaml:"count"`
}

// CombinationReport bundles the tag-combination stage output. Skipped counts
// the entries whose tag sets were too large to expand.
type CombinationReport struct {
	Top     []TagSetStats `json:"top" yaml:"top"`
	Bottom  []TagSetStats `json:"bottom" yaml:"bottom"`
	Skipped int           `json:"-" yaml:"-"`
}

func clampMaxTags(maxTags int) int {
	if maxTags <= 0 {
		return DefaultMaxTagsPerEntry
	}
	return min(maxTags, MaxTagsPerEntryLimit)
}

// subsetKeys lists every non-empty subset of tags as a comma-joined key.
// tags must already be sorted; bit i of the mask selects tags[i], which keeps
// each key sorted.
func subsetKeys(tags []string) []string {
	n := len(tags)
	keys := make([]string, 0, (1<<n)-1)
	parts := make([]string, 0, n)
	for mask := 1; mask < 1<<n; mask++ {
		parts = parts[:0]
		for i := range n {
			if mask&(1<<i) != 0 {
				parts = append(parts, tags[i])
			}
		}
		keys = append(keys, strings.Join(parts, ","))
	}
	return keys
}

// TagCombinations aggregates mood per tag subset over entries with a valid
// score. Entries carrying more than maxTags tags are not expanded; a
// non-positive maxTags selects DefaultMaxTagsPerEntry and larger values are
// clamped to MaxTagsPerEntryLimit.
func TagCombinations(entries []Entry, maxTags int) CombinationReport {
	maxTags = clampMaxTags(maxTags)

	groups := newOrderedGroups[int]()
	skipped := 0
	for _, e := range entries {
		if !e.ScoreValid || len(e.Tags) == 0 {
			continue
		}
		if len(e.Tags) > maxTags {
			skipped++
			continue
		}
		for _, key := range subsetKeys(e.Tags) {
			groups.add(key, e.Score)
		}
	}

	var eligible []TagSetStats
	for _, key := range groups.keys {
		scores := groups.values[key]
		if len(scores) < minCombinationCount {
			continue
		}
		eligible = append(eligible, TagSetStats{Key: key, Avg: Mean(scores), Count: len(scores)})
	}

	top := slices.Clone(eligible)
	slices.SortStableFunc(top, func(a, b TagSetStats) int {
		return cmp.Compare(*b.Avg, *a.Avg)
	})
	bottom := slices.Clone(eligible)
	slices.SortStableFunc(bottom, func(a, b TagSetStats) int {
		return cmp.Compare(*a.Avg, *b.Avg)
	})

	report := CombinationReport{
		Top:     []TagSetStats{},
		Bottom:  []TagSetStats{},
		Skipped: skipped,
	}
	report.Top = append(report.Top, top[:min(CombinationRankSize, len(top))]...)
	report.Bottom = append(report.Bottom, bottom[:min(CombinationRankSize, len(bottom))]...)
	return report
}
