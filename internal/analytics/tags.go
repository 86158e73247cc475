package analytics

import (
	"cmp"
	"slices"
)

// TagStats is the descriptive summary of the scores of entries carrying a tag
type TagStats struct {
	Tag    string   `json:"tag" yaml:"tag"`
	Count  int      `json:"count" yaml:"count"`
	Avg    *float64 `json:"avg" yaml:"avg"`
	StdDev *float64 `json:"std_dev" yaml:"std_dev"`
	Median *float64 `json:"median" yaml:"median"`
}

// TagUsage counts the entries carrying a tag, whatever their score
type TagUsage struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// TagReport bundles the tag statistics stage output
type TagReport struct {
	Stats  []TagStats `json:"stats" yaml:"stats"`
	Top    []TagStats `json:"top" yaml:"top"`
	Bottom []TagStats `json:"bottom" yaml:"bottom"`
	Usage  []TagUsage `json:"usage" yaml:"usage"`
}

// orderedGroups accumulates values per key and remembers the order in which
// keys were first seen, which is the tie-break for every ranking.
type orderedGroups[V any] struct {
	keys   []string
	values map[string][]V
}

func newOrderedGroups[V any]() *orderedGroups[V] {
	return &orderedGroups[V]{values: make(map[string][]V)}
}

func (g *orderedGroups[V]) add(key string, v V) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = append(g.values[key], v)
}

// TagStatistics computes per-tag summaries over entries with a valid score.
// The result is in first-seen order.
func TagStatistics(entries []Entry) []TagStats {
	groups := newOrderedGroups[int]()
	for _, e := range entries {
		if !e.ScoreValid {
			continue
		}
		for _, tag := range e.Tags {
			groups.add(tag, e.Score)
		}
	}

	stats := make([]TagStats, 0, len(groups.keys))
	for _, tag := range groups.keys {
		s := Describe(groups.values[tag])
		stats = append(stats, TagStats{Tag: tag, Count: s.Count, Avg: s.Avg, StdDev: s.StdDev, Median: s.Median})
	}
	return stats
}

// TagUsageCounts counts tag occurrences over all entries in first-seen order.
func TagUsageCounts(entries []Entry) []TagUsage {
	index := make(map[string]int)
	var usage []TagUsage
	for _, e := range entries {
		for _, tag := range e.Tags {
			i, ok := index[tag]
			if !ok {
				i = len(usage)
				index[tag] = i
				usage = append(usage, TagUsage{Tag: tag})
			}
			usage[i].Count++
		}
	}
	if usage == nil {
		return []TagUsage{}
	}
	return usage
}

// RankTags returns the n highest and n lowest tags by average. A stable sort
// keeps first-seen order among equal averages.
func RankTags(stats []TagStats, n int) (top, bottom []TagStats) {
	top = slices.Clone(stats)
	slices.SortStableFunc(top, func(a, b TagStats) int {
		return cmp.Compare(valueOr(b.Avg, 0), valueOr(a.Avg, 0))
	})
	bottom = slices.Clone(stats)
	slices.SortStableFunc(bottom, func(a, b TagStats) int {
		return cmp.Compare(valueOr(a.Avg, 0), valueOr(b.Avg, 0))
	})
	return top[:min(n, len(top))], bottom[:min(n, len(bottom))]
}

// Tags runs the tag statistics stage.
func Tags(entries []Entry, rankSize int) TagReport {
	stats := TagStatistics(entries)
	top, bottom := RankTags(stats, rankSize)

	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, func(a, b TagStats) int {
		return cmp.Compare(valueOr(b.Avg, 0), valueOr(a.Avg, 0))
	})

	return TagReport{
		Stats:  sorted,
		Top:    top,
		Bottom: bottom,
		Usage:  TagUsageCounts(entries),
	}
}
