// Package render writes a mood report for terminals and scripts.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"moodlens/internal/analytics"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const missing = "-"

// Formats lists the accepted output formats
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// UnsupportedFormatError is returned for an unknown output format
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q, expected one of %s", e.Format, strings.Join(Formats, ", "))
}

// Report writes report to w in the given format
func Report(w io.Writer, report analytics.Report, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		_, err := io.WriteString(w, Tables(report))
		return err
	default:
		return &UnsupportedFormatError{Format: format}
	}
}

// Tables renders every report section as a text table
func Tables(report analytics.Report) string {
	sections := []string{
		summaryTable(report),
		hourlyTable(report.Temporal),
		dailyTable(report.Temporal),
		tagTable("Tags", report.Tags.Stats),
		tagTable("Happiest tags", report.Tags.Top),
		tagTable("Saddest tags", report.Tags.Bottom),
		usageTable(report.Tags.Usage),
		streakTable(report.Streaks),
		coOccurrenceTable(report.CoOccurrences),
		combinationTable("Best tag combinations", report.Combinations.Top),
		combinationTable("Worst tag combinations", report.Combinations.Bottom),
		moodChangeTable(report.MoodChanges),
		distributionTable(report.Distribution),
		heatmapTable(report.Distribution.Heatmap),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func summaryTable(report analytics.Report) string {
	t := newTable("Summary")
	t.AppendRow(table.Row{"Timezone", report.Timezone})
	t.AppendRow(table.Row{"Entries", humanize.Comma(int64(report.EntryCount))})
	t.AppendRow(table.Row{"Valid entries", humanize.Comma(int64(report.ValidEntryCount))})
	t.AppendRow(table.Row{"Invalid mood", humanize.Comma(int64(report.Exclusions.InvalidScore))})
	t.AppendRow(table.Row{"Invalid time", humanize.Comma(int64(report.Exclusions.InvalidTime))})
	t.AppendRow(table.Row{"Oversized tag sets", humanize.Comma(int64(report.Exclusions.OversizedTagSet))})
	return t.Render()
}

func hourlyTable(stats analytics.TemporalStats) string {
	t := newTable("Mood by hour")
	t.AppendHeader(table.Row{"Hour", "Entries", "Min", "Max", "Avg"})
	for _, h := range stats.Hourly {
		if h.Count == 0 {
			continue
		}
		t.AppendRow(table.Row{fmt.Sprintf("%02d:00", h.Hour), h.Count, intOrMissing(h.Min), intOrMissing(h.Max), floatOrMissing(h.Avg)})
	}
	t.AppendFooter(table.Row{"Best", hourList(stats.TopHours), "", "Worst", hourList(stats.BottomHours)})
	return t.Render()
}

func dailyTable(stats analytics.TemporalStats) string {
	volatility := make(map[string]*float64, len(stats.Volatility))
	for _, v := range stats.Volatility {
		volatility[v.Date] = v.StdDev
	}

	t := newTable("Mood by day")
	t.AppendHeader(table.Row{"Date", "Entries", "Min", "Max", "Avg", "Std dev"})
	for _, d := range stats.Daily {
		t.AppendRow(table.Row{d.Date, d.Count, intOrMissing(d.Min), intOrMissing(d.Max), floatOrMissing(d.Avg), floatOrMissing(volatility[d.Date])})
	}
	return t.Render()
}

func tagTable(title string, stats []analytics.TagStats) string {
	t := newTable(title)
	t.AppendHeader(table.Row{"Tag", "Entries", "Avg", "Std dev", "Median"})
	for _, s := range stats {
		t.AppendRow(table.Row{s.Tag, s.Count, floatOrMissing(s.Avg), floatOrMissing(s.StdDev), floatOrMissing(s.Median)})
	}
	return t.Render()
}

func usageTable(usage []analytics.TagUsage) string {
	t := newTable("Tag usage")
	t.AppendHeader(table.Row{"Tag", "Entries"})
	for _, u := range usage {
		t.AppendRow(table.Row{u.Tag, humanize.Comma(int64(u.Count))})
	}
	return t.Render()
}

func streakTable(streaks analytics.StreakReport) string {
	t := newTable("Streaks")
	t.AppendHeader(table.Row{"Type", "From", "To", "Days"})
	for _, s := range streaks.All {
		t.AppendRow(table.Row{string(s.Type), s.StartDate, s.EndDate, s.LengthInDays})
	}
	if longest := streaks.LongestPositive; longest != nil {
		t.AppendFooter(table.Row{"Longest positive", longest.StartDate, longest.EndDate, longest.LengthInDays})
	}
	return t.Render()
}

func coOccurrenceTable(pairs []analytics.CoOccurrencePair) string {
	t := newTable("Tags logged together")
	t.AppendHeader(table.Row{"Tag", "Tag", "Entries", "Share"})
	for _, p := range pairs {
		t.AppendRow(table.Row{p.TagA, p.TagB, p.Count, percent(p.PercentOfEntries)})
	}
	return t.Render()
}

func combinationTable(title string, sets []analytics.TagSetStats) string {
	t := newTable(title)
	t.AppendHeader(table.Row{"Tags", "Entries", "Avg"})
	for _, s := range sets {
		t.AppendRow(table.Row{s.Key, s.Count, floatOrMissing(s.Avg)})
	}
	return t.Render()
}

func moodChangeTable(changes []analytics.MoodChangeByTag) string {
	t := newTable("Mood change after tag")
	t.AppendHeader(table.Row{"Tag", "Avg change", "Entries", "Share"})
	for _, c := range changes {
		t.AppendRow(table.Row{c.Tag, fmt.Sprintf("%+.2f", c.AvgChange), c.Count, percent(c.PercentOfEntries)})
	}
	return t.Render()
}

func distributionTable(d analytics.Distribution) string {
	t := newTable("Mood distribution")
	t.AppendHeader(table.Row{"Mood", "Entries", "Bar"})
	for _, b := range d.Histogram {
		t.AppendRow(table.Row{b.Score, b.Count, strings.Repeat("#", b.Count)})
	}
	t.AppendFooter(table.Row{"Low / Medium / High", fmt.Sprintf("%d / %d / %d", d.Categories.Low, d.Categories.Medium, d.Categories.High), ""})
	return t.Render()
}

func heatmapTable(cells []analytics.HeatmapCell) string {
	header := table.Row{"Day"}
	for hour := 0; hour < analytics.HoursPerDay; hour++ {
		header = append(header, strconv.Itoa(hour))
	}

	t := newTable("Average mood by weekday and hour")
	t.AppendHeader(header)
	for day := 0; day < analytics.DaysPerWeek; day++ {
		row := table.Row{time.Weekday(day).String()[:3]}
		for hour := 0; hour < analytics.HoursPerDay; hour++ {
			idx := day*analytics.HoursPerDay + hour
			if idx < len(cells) && cells[idx].Avg != nil {
				row = append(row, strconv.FormatFloat(*cells[idx].Avg, 'f', 0, 64))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func hourList(hours []analytics.HourlyAggregate) string {
	labels := make([]string, len(hours))
	for i, h := range hours {
		labels[i] = fmt.Sprintf("%02d", h.Hour)
	}
	return strings.Join(labels, ",")
}

func intOrMissing(v *int) string {
	if v == nil {
		return missing
	}
	return strconv.Itoa(*v)
}

func floatOrMissing(v *float64) string {
	if v == nil {
		return missing
	}
	return humanize.FormatFloat("#.##", *v)
}

func percent(v float64) string {
	return humanize.FormatFloat("#.#", v) + "%"
}
