package components

import (
	"strings"
	"testing"
)

func TestHeader_View(t *testing.T) {
	h := NewHeader("demo-workspace")
	h.SetWidth(100)
	h.SetTotals(3, 12500, 2048)

	view := h.View()
	if !strings.Contains(view, "gridwatch") {
		t.Error("View() missing the app name")
	}
	if !strings.Contains(view, "demo-workspace") {
		t.Error("View() missing the workspace name")
	}
	if !strings.Contains(view, "3 frames") {
		t.Error("View() missing the frame count")
	}
	if !strings.Contains(view, "12,500 rows") {
		t.Error("View() missing the row total")
	}
}

func TestHeader_NarrowWidthDropsTotals(t *testing.T) {
	h := NewHeader("demo")
	h.SetWidth(18)
	h.SetTotals(3, 12500, 2048)

	if strings.Contains(h.View(), "frames") {
		t.Error("narrow header should drop the totals")
	}
}
