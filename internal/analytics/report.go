// Package analytics turns a snapshot of mood log entries into a report of
// descriptive, temporal and combinatorial statistics.
//
// The package is organized into focused modules:
//   - entry.go: Raw and normalized entry types, tag/score/time normalization
//   - decode.go: JSON decoding of entry documents
//   - stats.go: Shared descriptive statistics and rounding
//   - temporal.go: Hour-of-day and per-date aggregates
//   - tags.go: Per-tag statistics and rankings
//   - streaks.go: Positive and negative day streaks
//   - cooccurrence.go: Tag pair co-occurrence
//   - combinations.go: Tag subset mood rankings
//   - changes.go: Mood deltas following each tag
//   - distribution.go: Histogram, categories and weekday/hour heatmap
//   - report.go: Report assembly, sequential and concurrent
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moodlens/internal/pkg/async"
)

// DefaultTagRankSize is the length of the top and bottom tag rankings
const DefaultTagRankSize = 3

// Options tunes report computation. The zero value is usable.
type Options struct {
	// Location is the zone used for hour and date grouping; nil means UTC
	Location *time.Location
	// TagRankSize is the length of the best and worst tag rankings
	TagRankSize int
	// MaxTagsPerEntry bounds power set expansion in the combination stage,
	// at most MaxTagsPerEntryLimit
	MaxTagsPerEntry int
	// Workers is the pool size used by Build
	Workers int
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.TagRankSize <= 0 {
		o.TagRankSize = DefaultTagRankSize
	}
	o.MaxTagsPerEntry = clampMaxTags(o.MaxTagsPerEntry)
	if o.Workers <= 0 {
		o.Workers = len(stages)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Exclusions counts the data quality problems found in a snapshot
type Exclusions struct {
	InvalidScore    int `json:"invalid_score" yaml:"invalid_score"`
	InvalidTime     int `json:"invalid_time" yaml:"invalid_time"`
	OversizedTagSet int `json:"oversized_tag_set" yaml:"oversized_tag_set"`
}

// Report is the full analytics output for one snapshot
type Report struct {
	Timezone        string             `json:"timezone" yaml:"timezone"`
	EntryCount      int                `json:"entry_count" yaml:"entry_count"`
	ValidEntryCount int                `json:"valid_entry_count" yaml:"valid_entry_count"`
	Exclusions      Exclusions         `json:"exclusions" yaml:"exclusions"`
	Temporal        TemporalStats      `json:"temporal" yaml:"temporal"`
	Tags            TagReport          `json:"tags" yaml:"tags"`
	Streaks         StreakReport       `json:"streaks" yaml:"streaks"`
	CoOccurrences   []CoOccurrencePair `json:"co_occurrences" yaml:"co_occurrences"`
	Combinations    CombinationReport  `json:"combinations" yaml:"combinations"`
	MoodChanges     []MoodChangeByTag  `json:"mood_changes" yaml:"mood_changes"`
	Distribution    Distribution       `json:"distribution" yaml:"distribution"`
}

// stage is one independent computation over the normalized snapshot
type stage struct {
	name string
	run  func(entries []Entry, opts Options) any
}

var stages = []stage{
	{"temporal", func(e []Entry, _ Options) any { return Temporal(e) }},
	{"tags", func(e []Entry, o Options) any { return Tags(e, o.TagRankSize) }},
	{"streaks", func(e []Entry, _ Options) any { return Streaks(e) }},
	{"cooccurrences", func(e []Entry, _ Options) any { return CoOccurrences(e, CoOccurrenceLimit) }},
	{"combinations", func(e []Entry, o Options) any { return TagCombinations(e, o.MaxTagsPerEntry) }},
	{"moodChanges", func(e []Entry, _ Options) any { return MoodChanges(e, MoodChangeLimit) }},
	{"distribution", func(e []Entry, _ Options) any { return Distributions(e) }},
}

// ComputeReport normalizes raw and runs every stage in order.
func ComputeReport(raw []RawEntry, opts Options) Report {
	opts = opts.withDefaults()
	entries := Normalize(raw, opts.Location)

	outputs := make(map[string]any, len(stages))
	for _, s := range stages {
		outputs[s.name] = s.run(entries, opts)
	}
	return assemble(entries, outputs, opts)
}

// Build computes the same report as ComputeReport with the stages running
// concurrently on a worker pool. Stages only read the shared snapshot.
func Build(ctx context.Context, raw []RawEntry, opts Options) (Report, error) {
	opts = opts.withDefaults()
	entries := Normalize(raw, opts.Location)

	tasks := make([]async.Task, 0, len(stages))
	for _, s := range stages {
		tasks = append(tasks, async.Task{
			Name: s.name,
			Execute: func() (any, error) {
				return s.run(entries, opts), nil
			},
		})
	}

	pool := async.NewPool(opts.Workers)
	results := pool.Execute(ctx, tasks)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	outputs := make(map[string]any, len(results))
	for _, s := range stages {
		result, ok := results[s.name]
		if !ok {
			return Report{}, fmt.Errorf("stage %s produced no result", s.name)
		}
		if result.Err != nil {
			return Report{}, fmt.Errorf("error computing %s: %w", s.name, result.Err)
		}
		outputs[s.name] = result.Data
	}
	return assemble(entries, outputs, opts), nil
}

func assemble(entries []Entry, outputs map[string]any, opts Options) Report {
	report := Report{
		Timezone:      opts.Location.String(),
		EntryCount:    len(entries),
		Temporal:      outputs["temporal"].(TemporalStats),
		Tags:          outputs["tags"].(TagReport),
		Streaks:       outputs["streaks"].(StreakReport),
		CoOccurrences: outputs["cooccurrences"].([]CoOccurrencePair),
		Combinations:  outputs["combinations"].(CombinationReport),
		MoodChanges:   outputs["moodChanges"].([]MoodChangeByTag),
		Distribution:  outputs["distribution"].(Distribution),
	}

	for _, e := range entries {
		if e.ScoreValid {
			report.ValidEntryCount++
		} else {
			report.Exclusions.InvalidScore++
		}
		if !e.TimeValid {
			report.Exclusions.InvalidTime++
		}
	}
	report.Exclusions.OversizedTagSet = report.Combinations.Skipped

	if report.Exclusions.OversizedTagSet > 0 {
		opts.Logger.Warn("Skipped oversized tag sets in combination analysis",
			slog.Int("entries", report.Exclusions.OversizedTagSet),
			slog.Int("max_tags_per_entry", opts.MaxTagsPerEntry))
	}
	return report
}
