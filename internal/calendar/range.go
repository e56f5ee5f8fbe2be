// Package calendar provides date ranges, presets, and month grids used to
// filter rows by their timestamp.
package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// Layouts accepted when parsing time values, tried in order.
var Layouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTime parses s using the accepted layouts, falling back to unix
// seconds. The zero time is returned with an error when nothing matches.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// Only 10+ digit integers count as unix seconds; shorter numbers are
	// ordinary data, not timestamps.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs >= 1_000_000_000 {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time value %q", s)
}

// Range is a half-open time interval [From, To).
// A zero Range means no restriction.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewRange returns a Range normalized so From is not after To.
func NewRange(from, to time.Time) Range {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// ParseRange builds a Range from string bounds. Empty strings leave the
// corresponding bound open.
func ParseRange(from, to string) (Range, error) {
	var r Range
	if from != "" {
		t, err := ParseTime(from)
		if err != nil {
			return Range{}, err
		}
		r.From = t
	}
	if to != "" {
		t, err := ParseTime(to)
		if err != nil {
			return Range{}, err
		}
		r.To = t
	}
	return NewRange(r.From, r.To), nil
}

// IsZero reports whether the range places no restriction.
func (r Range) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range. Open bounds always
// match; the To bound is exclusive.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Days returns the whole number of days the range spans, or 0 when a
// bound is open.
func (r Range) Days() int {
	if r.From.IsZero() || r.To.IsZero() {
		return 0
	}
	return int(r.To.Sub(r.From) / (24 * time.Hour))
}

// Clamp returns t limited to the range bounds.
func (r Range) Clamp(t time.Time) time.Time {
	if !r.From.IsZero() && t.Before(r.From) {
		return r.From
	}
	if !r.To.IsZero() && t.After(r.To) {
		return r.To
	}
	return t
}

// String renders the range for status bars and logs.
func (r Range) String() string {
	if r.IsZero() {
		return "all time"
	}
	const day = "2006-01-02"
	switch {
	case r.From.IsZero():
		return fmt.Sprintf("until %s", r.To.Format(day))
	case r.To.IsZero():
		return fmt.Sprintf("since %s", r.From.Format(day))
	default:
		return fmt.Sprintf("%s to %s", r.From.Format(day), r.To.Format(day))
	}
}

// Preset identifies a commonly used date range.
type Preset string

const (
	// PresetAll places no restriction.
	PresetAll Preset = "all"
	// PresetToday covers the current calendar day.
	PresetToday Preset = "today"
	// PresetYesterday covers the previous calendar day.
	PresetYesterday Preset = "yesterday"
	// PresetLast7Days covers the trailing seven days including today.
	PresetLast7Days Preset = "7d"
	// PresetLast30Days covers the trailing thirty days including today.
	PresetLast30Days Preset = "30d"
	// PresetMonthToDate covers the current month so far.
	PresetMonthToDate Preset = "mtd"
	// PresetQuarterToDate covers the current quarter so far.
	PresetQuarterToDate Preset = "qtd"
	// PresetYearToDate covers the current year so far.
	PresetYearToDate Preset = "ytd"
)

// Presets returns all presets in cycling order.
func Presets() []Preset {
	return []Preset{
		PresetAll,
		PresetToday,
		PresetYesterday,
		PresetLast7Days,
		PresetLast30Days,
		PresetMonthToDate,
		PresetQuarterToDate,
		PresetYearToDate,
	}
}

// IsValid returns true if the preset is known.
func (p Preset) IsValid() bool {
	switch p {
	case PresetAll, PresetToday, PresetYesterday, PresetLast7Days,
		PresetLast30Days, PresetMonthToDate, PresetQuarterToDate, PresetYearToDate:
		return true
	}
	return false
}

// Next returns the preset following p in cycling order.
func (p Preset) Next() Preset {
	presets := Presets()
	for i, candidate := range presets {
		if candidate == p {
			return presets[(i+1)%len(presets)]
		}
	}
	return PresetAll
}

// Label returns a human-readable name for the preset.
func (p Preset) Label() string {
	switch p {
	case PresetAll:
		return "All time"
	case PresetToday:
		return "Today"
	case PresetYesterday:
		return "Yesterday"
	case PresetLast7Days:
		return "Last 7 days"
	case PresetLast30Days:
		return "Last 30 days"
	case PresetMonthToDate:
		return "Month to date"
	case PresetQuarterToDate:
		return "Quarter to date"
	case PresetYearToDate:
		return "Year to date"
	default:
		return string(p)
	}
}

// Resolve converts the preset into a concrete Range using ref's local
// calendar day boundaries.
func (p Preset) Resolve(ref time.Time) Range {
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	tomorrow := dayStart.AddDate(0, 0, 1)

	switch p {
	case PresetToday:
		return Range{From: dayStart, To: tomorrow}
	case PresetYesterday:
		return Range{From: dayStart.AddDate(0, 0, -1), To: dayStart}
	case PresetLast7Days:
		return Range{From: dayStart.AddDate(0, 0, -6), To: tomorrow}
	case PresetLast30Days:
		return Range{From: dayStart.AddDate(0, 0, -29), To: tomorrow}
	case PresetMonthToDate:
		return Range{
			From: time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()),
			To:   tomorrow,
		}
	case PresetQuarterToDate:
		quarterMonth := time.Month((int(ref.Month())-1)/3*3 + 1)
		return Range{
			From: time.Date(ref.Year(), quarterMonth, 1, 0, 0, 0, 0, ref.Location()),
			To:   tomorrow,
		}
	case PresetYearToDate:
		return Range{
			From: time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location()),
			To:   tomorrow,
		}
	default:
		return Range{}
	}
}
