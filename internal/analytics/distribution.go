package analytics

import "time"

// DaysPerWeek is the number of heatmap rows
const DaysPerWeek = 7

// Category bounds: low is up to LowMax, high starts at HighMin
const (
	LowMax  = 3
	HighMin = 8
)

// HistogramBucket counts the entries with one exact score
type HistogramBucket struct {
	Score int `json:"score" yaml:"score"`
	Count int `json:"count" yaml:"count"`
}

// CategorySplit counts scores per low, medium and high band
type CategorySplit struct {
	Low    int `json:"low" yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high" yaml:"high"`
}

// Total returns the number of categorized scores
func (c CategorySplit) Total() int {
	return c.Low + c.Medium + c.High
}

// HeatmapCell is the average mood for one weekday and hour. DayOfWeek follows
// time.Weekday, so 0 is Sunday.
type HeatmapCell struct {
	DayOfWeek int      `json:"day_of_week" yaml:"day_of_week"`
	Hour      int      `json:"hour" yaml:"hour"`
	Avg       *float64 `json:"avg" yaml:"avg"`
}

// Distribution bundles the distribution stage output
type Distribution struct {
	Histogram  []HistogramBucket `json:"histogram" yaml:"histogram"`
	Categories CategorySplit     `json:"categories" yaml:"categories"`
	Heatmap    []HeatmapCell     `json:"heatmap" yaml:"heatmap"`
}

// Categorize maps a valid score to its band name
func Categorize(score int) string {
	switch {
	case score <= LowMax:
		return "low"
	case score >= HighMin:
		return "high"
	default:
		return "medium"
	}
}

// Distributions builds the histogram, category split and weekday by hour
// heatmap. Cells are ordered day-major, Sunday first.
func Distributions(entries []Entry) Distribution {
	histogram := make([]HistogramBucket, MaxScore-MinScore+1)
	for i := range histogram {
		histogram[i].Score = MinScore + i
	}

	var split CategorySplit
	var cells [DaysPerWeek][HoursPerDay][]int

	for _, e := range entries {
		if !e.ScoreValid {
			continue
		}
		histogram[e.Score-MinScore].Count++

		switch Categorize(e.Score) {
		case "low":
			split.Low++
		case "high":
			split.High++
		default:
			split.Medium++
		}

		if e.TimeValid {
			day := int(e.Time.Weekday())
			cells[day][e.Time.Hour()] = append(cells[day][e.Time.Hour()], e.Score)
		}
	}

	heatmap := make([]HeatmapCell, 0, DaysPerWeek*HoursPerDay)
	for day := time.Sunday; day <= time.Saturday; day++ {
		for h := range HoursPerDay {
			heatmap = append(heatmap, HeatmapCell{DayOfWeek: int(day), Hour: h, Avg: Mean(cells[day][h])})
		}
	}

	return Distribution{Histogram: histogram, Categories: split, Heatmap: heatmap}
}
