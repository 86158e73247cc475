package analytics

import (
	"cmp"
	"slices"
)

// CoOccurrenceLimit is the number of pairs kept in the ranking
const CoOccurrenceLimit = 10

// CoOccurrencePair counts entries on which two distinct tags appear together.
// TagA sorts before TagB.
type CoOccurrencePair struct {
	TagA             string  `json:"tag_a" yaml:"tag_a"`
	TagB             string  `json:"tag_b" yaml:"tag_b"`
	Count            int     `json:"count" yaml:"count"`
	PercentOfEntries float64 `json:"percent_of_entries" yaml:"percent_of_entries"`
}

type tagPair struct {
	a, b string
}

// CoOccurrences returns the most frequent tag pairs. Percentages are taken
// over every entry in the snapshot. Equal counts keep the order in which the
// pairs were first seen.
func CoOccurrences(entries []Entry, limit int) []CoOccurrencePair {
	index := make(map[tagPair]int)
	var pairs []CoOccurrencePair

	for _, e := range entries {
		// Tags are already sorted, so (a, b) is canonical
		for i := 0; i < len(e.Tags); i++ {
			for j := i + 1; j < len(e.Tags); j++ {
				key := tagPair{e.Tags[i], e.Tags[j]}
				k, ok := index[key]
				if !ok {
					k = len(pairs)
					index[key] = k
					pairs = append(pairs, CoOccurrencePair{TagA: key.a, TagB: key.b})
				}
				pairs[k].Count++
			}
		}
	}

	total := len(entries)
	for i := range pairs {
		pairs[i].PercentOfEntries = Percent(pairs[i].Count, total)
	}

	slices.SortStableFunc(pairs, func(x, y CoOccurrencePair) int {
		return cmp.Compare(y.Count, x.Count)
	})

	if pairs == nil {
		return []CoOccurrencePair{}
	}
	return pairs[:min(limit, len(pairs))]
}
