// Package seeder fills the entry store with a reproducible set of demo mood
// entries.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"gorm.io/gorm"

	"moodlens/internal/analytics"
	"moodlens/internal/entries"
)

// DefaultSeed makes two runs with the same settings produce the same entries
const DefaultSeed uint64 = 20240101

// activity is a tag with the mood shift it tends to cause
type activity struct {
	tag   string
	shift int
}

var activities = []activity{
	{"gym", 2},
	{"family", 2},
	{"friends", 2},
	{"sun", 1},
	{"reading", 1},
	{"coffee", 0},
	{"commute", -1},
	{"work", -1},
	{"rain", -1},
	{"deadline", -2},
	{"sick", -3},
}

var descriptions = []string{
	"",
	"",
	"quiet day",
	"long walk after lunch",
	"could not sleep well",
	"good talk with an old friend",
	"too many meetings",
}

// Connector hands out the database connection entries are written to
type Connector interface {
	GetConnection() *gorm.DB
}

// Seeder handles the data seeding process
type Seeder struct {
	DBManager Connector
	Logger    *slog.Logger
	Days      int
	Seed      uint64
}

// NewSeeder creates a new seeder instance
func NewSeeder(dbManager Connector, logger *slog.Logger, days int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DBManager: dbManager,
		Logger:    logger,
		Days:      days,
		Seed:      DefaultSeed,
	}
}

// Run generates Days of entries ending at the current day and stores them
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.Info("Starting database seeding...", slog.Int("days", s.Days))

	end := time.Now().UTC().Truncate(24 * time.Hour)
	raw := s.Generate(end.AddDate(0, 0, -s.Days+1))

	created, err := entries.ImportEntries(s.DBManager.GetConnection().WithContext(ctx), s.Logger, raw)
	if err != nil {
		return fmt.Errorf("failed to seed entries: %w", err)
	}

	s.Logger.Info("Seeding completed successfully",
		slog.Int("entries", len(created)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Generate builds the demo entries for Days consecutive days starting at
// from. The result depends only on Days, Seed and from.
func (s *Seeder) Generate(from time.Time) []analytics.RawEntry {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	var raw []analytics.RawEntry
	for day := 0; day < s.Days; day++ {
		date := from.AddDate(0, 0, day)

		// Multi-day swings give the streak detector something to find
		baseline := 5 + int(math.Round(3*math.Sin(float64(day)/3)))

		for n := rng.IntN(4) + 1; n > 0; n-- {
			raw = append(raw, s.entry(rng, date, baseline))
		}
	}
	return raw
}

func (s *Seeder) entry(rng *rand.Rand, date time.Time, baseline int) analytics.RawEntry {
	tags := pickTags(rng)

	mood := baseline + rng.IntN(3) - 1
	for _, tag := range tags {
		for _, a := range activities {
			if a.tag == tag {
				mood += a.shift
			}
		}
	}
	mood = min(max(mood, 1), 10)

	at := date.Add(time.Duration(6+rng.IntN(17))*time.Hour + time.Duration(rng.IntN(60))*time.Minute)

	entry := analytics.RawEntry{
		Mood:        mood,
		Description: descriptions[rng.IntN(len(descriptions))],
		Time:        at.Format(time.RFC3339),
	}

	// Mix both tag shapes the API accepts
	if rng.IntN(2) == 0 {
		entry.Tags = strings.Join(tags, ", ")
	} else {
		list := make([]any, len(tags))
		for i, tag := range tags {
			list[i] = tag
		}
		entry.Tags = list
	}

	// A few entries carry the data problems real logs have
	switch rng.IntN(50) {
	case 0:
		entry.Mood = "meh"
	case 1:
		entry.Time = "sometime in the evening"
	case 2:
		entry.Mood = fmt.Sprintf("%d", mood)
	}

	return entry
}

func pickTags(rng *rand.Rand) []string {
	count := rng.IntN(4)
	picked := make([]string, 0, count)
	for _, idx := range rng.Perm(len(activities))[:count] {
		picked = append(picked, activities[idx].tag)
	}
	return picked
}
