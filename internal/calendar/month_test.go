package calendar

import (
	"testing"
	"time"
)

func TestMonthOf(t *testing.T) {
	m := MonthOf(time.Date(2026, 8, 23, 15, 0, 0, 0, time.UTC))
	if m.Year != 2026 || m.Month != time.August {
		t.Errorf("MonthOf() = %+v, want August 2026", m)
	}
}

func TestMonth_NextPrev(t *testing.T) {
	dec := Month{Year: 2025, Month: time.December}

	jan := dec.Next()
	if jan.Year != 2026 || jan.Month != time.January {
		t.Errorf("December.Next() = %+v, want January 2026", jan)
	}

	back := jan.Prev()
	if back != dec {
		t.Errorf("January.Prev() = %+v, want %+v", back, dec)
	}
}

func TestMonth_Title(t *testing.T) {
	m := Month{Year: 2026, Month: time.March}
	if got := m.Title(); got != "March 2026" {
		t.Errorf("Title() = %q, want %q", got, "March 2026")
	}
}

func TestMonth_Days(t *testing.T) {
	tests := []struct {
		month Month
		want  int
	}{
		{Month{Year: 2026, Month: time.January}, 31},
		{Month{Year: 2026, Month: time.February}, 28},
		{Month{Year: 2028, Month: time.February}, 29},
		{Month{Year: 2026, Month: time.April}, 30},
	}
	for _, tt := range tests {
		if got := tt.month.Days(); got != tt.want {
			t.Errorf("%s Days() = %d, want %d", tt.month.Title(), got, tt.want)
		}
	}
}

func TestMonth_Grid_Shape(t *testing.T) {
	// June 2026 starts on a Monday and has 30 days: exactly 5 weeks.
	m := Month{Year: 2026, Month: time.June}
	weeks := m.Grid(time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), Range{})

	if len(weeks) != 5 {
		t.Fatalf("June 2026 grid has %d weeks, want 5", len(weeks))
	}
	for i, week := range weeks {
		if len(week) != 7 {
			t.Errorf("week %d has %d days, want 7", i, len(week))
		}
	}

	first := weeks[0][0]
	if first.Date.Day() != 1 || !first.InMonth {
		t.Errorf("first cell = %v (in month %v), want June 1", first.Date, first.InMonth)
	}
	last := weeks[4][6]
	if last.InMonth {
		t.Error("last cell of final week should be July padding")
	}
	if last.Date.Day() != 5 || last.Date.Month() != time.July {
		t.Errorf("last cell = %v, want July 5", last.Date)
	}
}

func TestMonth_Grid_LeadingPad(t *testing.T) {
	// March 2026 starts on a Sunday, so Monday-first grids lead with
	// six February days.
	m := Month{Year: 2026, Month: time.March}
	weeks := m.Grid(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), Range{})

	padding := 0
	for _, d := range weeks[0] {
		if !d.InMonth {
			padding++
		}
	}
	if padding != 6 {
		t.Errorf("leading padding = %d days, want 6", padding)
	}
	if weeks[0][0].Date.Day() != 23 || weeks[0][0].Date.Month() != time.February {
		t.Errorf("grid starts at %v, want February 23", weeks[0][0].Date)
	}
}

func TestMonth_Grid_TodayAndRange(t *testing.T) {
	m := Month{Year: 2026, Month: time.March}
	today := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	rng := Range{
		From: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}

	weeks := m.Grid(today, rng)

	var todayCount, inRange int
	for _, week := range weeks {
		for _, d := range week {
			if d.Today {
				todayCount++
				if d.Date.Day() != 15 {
					t.Errorf("Today marked on %v, want the 15th", d.Date)
				}
			}
			if d.InRange {
				inRange++
			}
		}
	}

	if todayCount != 1 {
		t.Errorf("Today marked %d times, want 1", todayCount)
	}
	// [Mar 10, Mar 13) covers the 10th, 11th, and 12th.
	if inRange != 3 {
		t.Errorf("InRange marked %d days, want 3", inRange)
	}
}

func TestMonth_Grid_ZeroRangeMarksNothing(t *testing.T) {
	m := Month{Year: 2026, Month: time.March}
	weeks := m.Grid(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Range{})

	for _, week := range weeks {
		for _, d := range week {
			if d.InRange {
				t.Fatalf("zero range should mark no cells, got %v", d.Date)
			}
		}
	}
}

func TestWeekdayHeader(t *testing.T) {
	header := WeekdayHeader()
	if len(header) != 7 {
		t.Fatalf("header has %d entries, want 7", len(header))
	}
	if header[0] != "Mo" || header[6] != "Su" {
		t.Errorf("header = %v, want Monday-first", header)
	}
}
