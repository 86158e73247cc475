package analytics

import (
	"cmp"
	"slices"
)

// HoursPerDay is the number of hour-of-day buckets
const HoursPerDay = 24

// DateFormat is the calendar date key used by daily aggregates and streaks
const DateFormat = "2006-01-02"

// HourlyAggregate summarizes the scores logged during one hour of the day
type HourlyAggregate struct {
	Hour  int      `json:"hour" yaml:"hour"`
	Count int      `json:"count" yaml:"count"`
	Min   *int     `json:"min" yaml:"min"`
	Max   *int     `json:"max" yaml:"max"`
	Avg   *float64 `json:"avg" yaml:"avg"`
}

// DailyAggregate summarizes the scores logged on one calendar date
type DailyAggregate struct {
	Date   string   `json:"date" yaml:"date"`
	Count  int      `json:"count" yaml:"count"`
	Min    *int     `json:"min" yaml:"min"`
	Max    *int     `json:"max" yaml:"max"`
	Avg    *float64 `json:"avg" yaml:"avg"`
	StdDev *float64 `json:"std_dev" yaml:"std_dev"`
	Median *float64 `json:"median" yaml:"median"`
}

// DailyVolatility is the spread of scores within one date
type DailyVolatility struct {
	Date   string   `json:"date" yaml:"date"`
	StdDev *float64 `json:"std_dev" yaml:"std_dev"`
}

// TemporalStats bundles the hour and date groupings
type TemporalStats struct {
	Hourly      []HourlyAggregate `json:"hourly" yaml:"hourly"`
	TopHours    []HourlyAggregate `json:"top_hours" yaml:"top_hours"`
	BottomHours []HourlyAggregate `json:"bottom_hours" yaml:"bottom_hours"`
	Daily       []DailyAggregate  `json:"daily" yaml:"daily"`
	Volatility  []DailyVolatility `json:"volatility" yaml:"volatility"`
}

// hourRankSize is how many hours the happiest/saddest rankings keep
const hourRankSize = 3

// scoredAndTimed reports whether an entry can feed time-bucketed stats
func scoredAndTimed(e Entry) bool {
	return e.ScoreValid && e.TimeValid
}

// groupByDate collects scores per calendar date and returns the dates in
// ascending order.
func groupByDate(entries []Entry) ([]string, map[string][]int) {
	byDate := make(map[string][]int)
	for _, e := range entries {
		if !scoredAndTimed(e) {
			continue
		}
		key := e.Time.Format(DateFormat)
		byDate[key] = append(byDate[key], e.Score)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates, byDate
}

// HourlyAggregates returns one aggregate per hour of the day, always 24.
func HourlyAggregates(entries []Entry) []HourlyAggregate {
	var byHour [HoursPerDay][]int
	for _, e := range entries {
		if !scoredAndTimed(e) {
			continue
		}
		h := e.Time.Hour()
		byHour[h] = append(byHour[h], e.Score)
	}

	result := make([]HourlyAggregate, HoursPerDay)
	for h := range HoursPerDay {
		s := Describe(byHour[h])
		result[h] = HourlyAggregate{Hour: h, Count: s.Count, Min: s.Min, Max: s.Max, Avg: s.Avg}
	}
	return result
}

// DailyAggregates returns one aggregate per date that has entries, sorted
// ascending by date.
func DailyAggregates(entries []Entry) []DailyAggregate {
	dates, byDate := groupByDate(entries)

	result := make([]DailyAggregate, 0, len(dates))
	for _, d := range dates {
		s := Describe(byDate[d])
		result = append(result, DailyAggregate{
			Date:   d,
			Count:  s.Count,
			Min:    s.Min,
			Max:    s.Max,
			Avg:    s.Avg,
			StdDev: s.StdDev,
			Median: s.Median,
		})
	}
	return result
}

// RankHours returns the n happiest and n saddest non-empty hours. Equal
// averages keep hour order.
func RankHours(hourly []HourlyAggregate, n int) (top, bottom []HourlyAggregate) {
	filled := make([]HourlyAggregate, 0, len(hourly))
	for _, h := range hourly {
		if h.Avg != nil {
			filled = append(filled, h)
		}
	}

	top = slices.Clone(filled)
	slices.SortStableFunc(top, func(a, b HourlyAggregate) int {
		return cmp.Compare(*b.Avg, *a.Avg)
	})
	bottom = slices.Clone(filled)
	slices.SortStableFunc(bottom, func(a, b HourlyAggregate) int {
		return cmp.Compare(*a.Avg, *b.Avg)
	})
	return top[:min(n, len(top))], bottom[:min(n, len(bottom))]
}

// VolatilityTable orders dates by their standard deviation, most volatile
// first. Equal deviations keep date order.
func VolatilityTable(daily []DailyAggregate) []DailyVolatility {
	result := make([]DailyVolatility, len(daily))
	for i, d := range daily {
		result[i] = DailyVolatility{Date: d.Date, StdDev: d.StdDev}
	}
	slices.SortStableFunc(result, func(a, b DailyVolatility) int {
		return cmp.Compare(valueOr(b.StdDev, 0), valueOr(a.StdDev, 0))
	})
	return result
}

// Temporal runs the temporal aggregator stage.
func Temporal(entries []Entry) TemporalStats {
	hourly := HourlyAggregates(entries)
	daily := DailyAggregates(entries)
	top, bottom := RankHours(hourly, hourRankSize)
	return TemporalStats{
		Hourly:      hourly,
		TopHours:    top,
		BottomHours: bottom,
		Daily:       daily,
		Volatility:  VolatilityTable(daily),
	}
}
