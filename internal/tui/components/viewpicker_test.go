package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/dataset"
	"gridwatch/internal/view"
)

func sampleViews() []*view.View {
	v1 := view.New("orders · east", "orders", dataset.Query{Filter: "east"})
	v1.ID = "VIEW-001"
	v2 := view.New("latency · slow", "latency", dataset.Query{Filter: "slow"})
	v2.ID = "VIEW-002"
	return []*view.View{v1, v2}
}

func TestViewPicker_SelectEmitsView(t *testing.T) {
	p := NewViewPicker()
	p.Show(sampleViews())

	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should emit the selected view")
	}

	msg, ok := cmd().(ViewSelectedMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want ViewSelectedMsg", cmd())
	}
	if msg.View.ID != "VIEW-002" {
		t.Errorf("selected ID = %q, want VIEW-002", msg.View.ID)
	}
	if p.IsVisible() {
		t.Error("picker still visible after select")
	}
}

func TestViewPicker_DeleteRequest(t *testing.T) {
	p := NewViewPicker()
	p.Show(sampleViews())

	cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatal("x should request a delete")
	}

	msg, ok := cmd().(ViewDeleteRequestMsg)
	if !ok {
		t.Fatalf("cmd() = %T, want ViewDeleteRequestMsg", cmd())
	}
	if msg.ID != "VIEW-001" {
		t.Errorf("ID = %q, want VIEW-001", msg.ID)
	}
	if !p.IsVisible() {
		t.Error("picker should stay open while the delete is confirmed")
	}
}

func TestViewPicker_SetViewsClampsSelection(t *testing.T) {
	p := NewViewPicker()
	p.Show(sampleViews())
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	p.SetViews(sampleViews()[:1])
	if got := p.Selected(); got == nil || got.ID != "VIEW-001" {
		t.Errorf("Selected() = %v, want VIEW-001", got)
	}

	p.SetViews(nil)
	if p.Selected() != nil {
		t.Error("Selected() on empty picker should be nil")
	}
}

func TestViewPicker_EmptyEnterIsNoop(t *testing.T) {
	p := NewViewPicker()
	p.Show(nil)

	if cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on an empty picker must not emit")
	}
	if !strings.Contains(p.View(), "no saved views yet") {
		t.Error("View() missing the empty placeholder")
	}
}

func TestViewPicker_EscCloses(t *testing.T) {
	p := NewViewPicker()
	p.Show(sampleViews())

	p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if p.IsVisible() {
		t.Error("picker still visible after esc")
	}
}
