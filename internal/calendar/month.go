// Package calendar provides date ranges, presets, and month grids.
// This file contains the month grid used by the calendar picker.
package calendar

import (
	"time"
)

// Day is one cell of a month grid.
type Day struct {
	// Date is the day at midnight in the grid's location.
	Date time.Time
	// InMonth is false for leading/trailing days padded from adjacent months.
	InMonth bool
	// Today marks the reference day.
	Today bool
	// InRange marks days falling inside the active range.
	InRange bool
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month.
func (m Month) Next() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Title returns the month heading, e.g. "January 2026".
func (m Month) Title() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// sameDay compares calendar days ignoring time of day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Grid returns the month laid out as full Monday-first weeks. Leading and
// trailing cells are padded from adjacent months. today marks the Today
// cell and rng marks InRange cells; pass a zero range to mark none.
func (m Month) Grid(today time.Time, rng Range) [][]Day {
	loc := today.Location()
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)

	// Monday-first offset: Monday=0 ... Sunday=6.
	lead := (int(first.Weekday()) + 6) % 7
	cursor := first.AddDate(0, 0, -lead)

	var weeks [][]Day
	for {
		week := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, Day{
				Date:    cursor,
				InMonth: m.Contains(cursor),
				Today:   sameDay(cursor, today),
				InRange: !rng.IsZero() && rng.Contains(cursor),
			})
			cursor = cursor.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
		// Week boundaries land inside the month or past it, never before.
		if !m.Contains(cursor) {
			break
		}
	}
	return weeks
}

// WeekdayHeader returns the Monday-first column headings.
func WeekdayHeader() []string {
	return []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
}
