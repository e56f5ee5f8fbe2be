package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/calendar"
)

func fixedPicker(t *testing.T) *CalendarPicker {
	t.Helper()

	p := NewCalendarPicker()
	p.now = func() time.Time {
		return time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)
	}
	return p
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestCalendarPicker_OpensOnToday(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	if !p.IsVisible() {
		t.Fatal("picker not visible after Show")
	}
	want := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	if !p.cursor.Equal(want) {
		t.Errorf("cursor = %v, want %v", p.cursor, want)
	}
	if !strings.Contains(p.View(), "March 2026") {
		t.Errorf("View() missing the month title")
	}
}

func TestCalendarPicker_OpensOnRangeStart(t *testing.T) {
	p := fixedPicker(t)
	from := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	p.Show(calendar.NewRange(from, from.AddDate(0, 0, 7)))

	if !p.cursor.Equal(from) {
		t.Errorf("cursor = %v, want %v", p.cursor, from)
	}
	if !strings.Contains(p.View(), "January 2026") {
		t.Errorf("View() shows the wrong month")
	}
}

func TestCalendarPicker_PicksRange(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	// Anchor on the 18th, extend two days, confirm.
	p.Update(key("enter"))
	if p.anchor.IsZero() {
		t.Fatal("first enter should set the anchor")
	}
	p.Update(key("l"))
	p.Update(key("l"))

	cmd := p.Update(key("enter"))
	if cmd == nil {
		t.Fatal("second enter should emit the range")
	}
	msg, ok := cmd().(RangePickedMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want RangePickedMsg", cmd())
	}

	wantFrom := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 3, 21, 0, 0, 0, 0, time.UTC)
	if !msg.Range.From.Equal(wantFrom) || !msg.Range.To.Equal(wantTo) {
		t.Errorf("Range = %v, want [%v, %v)", msg.Range, wantFrom, wantTo)
	}
	if p.IsVisible() {
		t.Error("picker still visible after pick")
	}
}

func TestCalendarPicker_BackwardSelectionNormalizes(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	p.Update(key("enter"))
	p.Update(key("h")) // one day back
	cmd := p.Update(key("enter"))

	msg := cmd().(RangePickedMsg)
	wantFrom := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)
	if !msg.Range.From.Equal(wantFrom) || !msg.Range.To.Equal(wantTo) {
		t.Errorf("Range = %v, want [%v, %v)", msg.Range, wantFrom, wantTo)
	}
}

func TestCalendarPicker_WeekNavigationCrossesMonths(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	// Two weeks forward from March 18 lands in April.
	p.Update(key("j"))
	p.Update(key("j"))
	if p.cursor.Month() != time.April {
		t.Errorf("cursor month = %v, want April", p.cursor.Month())
	}
	if !strings.Contains(p.View(), "April 2026") {
		t.Error("View() did not follow the cursor into April")
	}
}

func TestCalendarPicker_MonthKeys(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	p.Update(key("["))
	if !strings.Contains(p.View(), "February 2026") {
		t.Error("[ should show the previous month")
	}
	p.Update(key("]"))
	p.Update(key("]"))
	if !strings.Contains(p.View(), "April 2026") {
		t.Error("] should show the next month")
	}
}

func TestCalendarPicker_MonthStepClampsDay(t *testing.T) {
	p := fixedPicker(t)
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	p.Show(calendar.NewRange(from, from.AddDate(0, 0, 1)))

	p.Update(key("]"))
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !p.cursor.Equal(want) {
		t.Errorf("cursor = %v, want %v", p.cursor, want)
	}
	if !strings.Contains(p.View(), "February 2026") {
		t.Error("] should land on February, not skip it")
	}
}

func TestCalendarPicker_AllTime(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.NewRange(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	))

	cmd := p.Update(key("a"))
	if cmd == nil {
		t.Fatal("a should emit a cleared range")
	}
	msg := cmd().(RangePickedMsg)
	if !msg.Range.IsZero() {
		t.Errorf("Range = %v, want zero", msg.Range)
	}
}

func TestCalendarPicker_EscCloses(t *testing.T) {
	p := fixedPicker(t)
	p.Show(calendar.Range{})

	if cmd := p.Update(key("esc")); cmd != nil {
		t.Error("esc must not emit a range")
	}
	if p.IsVisible() {
		t.Error("picker still visible after esc")
	}
}
