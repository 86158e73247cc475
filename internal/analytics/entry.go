package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Score bounds for a valid mood observation
const (
	MinScore = 1
	MaxScore = 10
)

// RawEntry is one record as handed over by the entry store. Field values are
// kept loosely typed because the store does not guarantee their shape.
type RawEntry struct {
	Mood        any `json:"mood" yaml:"mood"`
	Tags        any `json:"tags" yaml:"tags"`
	Description any `json:"description" yaml:"description"`
	Time        any `json:"time" yaml:"time"`
}

// Entry is a normalized mood observation. Entries are never mutated after
// Normalize returns them.
type Entry struct {
	Index       int
	Score       int
	ScoreValid  bool
	Tags        []string
	Description string
	Time        time.Time
	TimeValid   bool
}

// HasTag reports whether the entry carries tag.
func (e Entry) HasTag(tag string) bool {
	_, found := slices.BinarySearch(e.Tags, tag)
	return found
}

// TagFieldKind identifies which representation a raw tags value used.
type TagFieldKind int

const (
	TagFieldNone TagFieldKind = iota
	TagFieldText
	TagFieldList
)

// TagField is the tagged union of the representations a raw tags value may
// take: comma separated text or an itemized list.
type TagField struct {
	Kind  TagFieldKind
	Text  string
	Items []string
}

// ParseTagField classifies a raw tags value.
func ParseTagField(v any) TagField {
	switch t := v.(type) {
	case string:
		return TagField{Kind: TagFieldText, Text: t}
	case []string:
		return TagField{Kind: TagFieldList, Items: t}
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			switch s := item.(type) {
			case nil:
				continue
			case string:
				items = append(items, s)
			default:
				items = append(items, fmt.Sprint(s))
			}
		}
		return TagField{Kind: TagFieldList, Items: items}
	default:
		return TagField{Kind: TagFieldNone}
	}
}

var lowerCaser = cases.Lower(language.Und)

// Canonical returns the sorted, de-duplicated, lowercase tag set.
func (f TagField) Canonical() []string {
	var parts []string
	switch f.Kind {
	case TagFieldText:
		parts = strings.Split(f.Text, ",")
	case TagFieldList:
		parts = f.Items
	default:
		return []string{}
	}

	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := lowerCaser.String(strings.TrimSpace(p))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// NormalizeTags maps any raw tags value onto the canonical tag set.
func NormalizeTags(v any) []string {
	return ParseTagField(v).Canonical()
}

// ParseScore extracts an integer mood score. Any numeric kind and numeric
// strings are accepted as long as the value is integral, so "8.0" and 8.0
// both give 8 while "8.5" is rejected. ok is false outside MinScore..MaxScore.
func ParseScore(v any) (score int, ok bool) {
	var f float64
	switch s := v.(type) {
	case int:
		f = float64(s)
	case int8:
		f = float64(s)
	case int16:
		f = float64(s)
	case int32:
		f = float64(s)
	case int64:
		f = float64(s)
	case uint:
		f = float64(s)
	case uint8:
		f = float64(s)
	case uint16:
		f = float64(s)
	case uint32:
		f = float64(s)
	case uint64:
		f = float64(s)
	case float32:
		f = float64(s)
	case float64:
		f = s
	case json.Number:
		return ParseScore(string(s))
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || f != math.Trunc(f) || f < MinScore || f > MaxScore {
		return 0, false
	}
	return int(f), true
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a raw timestamp and converts it to loc. Zone-less
// timestamps are read as wall clock time in loc.
func ParseTime(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.In(loc), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return t.In(loc), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range zonedLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.In(loc), true
			}
		}
		for _, layout := range localLayouts {
			if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// Normalize validates and canonicalizes raw entries. Malformed fields never
// fail the call; they only flag the entry so that dependent stages skip it.
func Normalize(raw []RawEntry, loc *time.Location) []Entry {
	entries := make([]Entry, len(raw))
	for i, r := range raw {
		score, scoreOK := ParseScore(r.Mood)
		ts, timeOK := ParseTime(r.Time, loc)

		var description string
		switch d := r.Description.(type) {
		case nil:
		case string:
			description = d
		default:
			description = fmt.Sprint(d)
		}

		entries[i] = Entry{
			Index:       i,
			Score:       score,
			ScoreValid:  scoreOK,
			Tags:        NormalizeTags(r.Tags),
			Description: description,
			Time:        ts,
			TimeValid:   timeOK,
		}
	}
	return entries
}
