package analytics

// StreakType classifies a run of dates
type StreakType string

const (
	StreakPositive StreakType = "positive"
	StreakNegative StreakType = "negative"
)

// Daily average thresholds for streak classification
const (
	PositiveThreshold = 7.0
	NegativeThreshold = 3.0
)

// StreakRecord is a maximal run of observed dates sharing one classification
type StreakRecord struct {
	Type         StreakType `json:"type" yaml:"type"`
	StartDate    string     `json:"start_date" yaml:"start_date"`
	EndDate      string     `json:"end_date" yaml:"end_date"`
	LengthInDays int        `json:"length_in_days" yaml:"length_in_days"`
}

// StreakReport bundles the streak stage output. LongestPositive is nil when
// no date qualified as positive.
type StreakReport struct {
	LongestPositive *StreakRecord  `json:"longest_positive" yaml:"longest_positive"`
	All             []StreakRecord `json:"all" yaml:"all"`
}

// ClassifyDay maps a daily average to a streak type; ok is false for the
// neutral band in between.
func ClassifyDay(avg float64) (StreakType, bool) {
	switch {
	case avg >= PositiveThreshold:
		return StreakPositive, true
	case avg <= NegativeThreshold:
		return StreakNegative, true
	default:
		return "", false
	}
}

// DetectStreaks scans daily aggregates in date order. Only dates present in
// daily exist for the scan, so calendar gaps never break a run. A neutral
// date or a change of classification closes the current run.
func DetectStreaks(daily []DailyAggregate) StreakReport {
	all := []StreakRecord{}
	var current *StreakRecord

	closeCurrent := func() {
		if current != nil {
			all = append(all, *current)
			current = nil
		}
	}

	for _, d := range daily {
		if d.Avg == nil {
			closeCurrent()
			continue
		}
		kind, ok := ClassifyDay(*d.Avg)
		if !ok {
			closeCurrent()
			continue
		}
		if current != nil && current.Type == kind {
			current.EndDate = d.Date
			current.LengthInDays++
			continue
		}
		closeCurrent()
		current = &StreakRecord{Type: kind, StartDate: d.Date, EndDate: d.Date, LengthInDays: 1}
	}
	closeCurrent()

	var longest *StreakRecord
	for i := range all {
		s := all[i]
		if s.Type != StreakPositive {
			continue
		}
		// strictly longer only: the earliest of equal runs is kept
		if longest == nil || s.LengthInDays > longest.LengthInDays {
			longest = &s
		}
	}

	return StreakReport{LongestPositive: longest, All: all}
}

// Streaks runs the streak detector stage.
func Streaks(entries []Entry) StreakReport {
	return DetectStreaks(DailyAggregates(entries))
}
