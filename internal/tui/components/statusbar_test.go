package components

import (
	"strings"
	"testing"
	"time"

	"gridwatch/internal/cache"
)

func TestStatusBar_QueryState(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(120)
	s.SetQueryState("Last 7 days", "region:east", 42, 250)

	view := s.View()
	if !strings.Contains(view, "Last 7 days") {
		t.Error("View() missing the range label")
	}
	if !strings.Contains(view, "region:east") {
		t.Error("View() missing the filter")
	}
	if !strings.Contains(view, "42 of 250 rows") {
		t.Error("View() missing the row counts")
	}
}

func TestStatusBar_RefreshState(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(120)

	if !strings.Contains(s.View(), "no reload yet") {
		t.Error("View() missing the initial reload state")
	}

	s.SetReloading(true)
	if !strings.Contains(s.View(), "reloading") {
		t.Error("View() missing the reloading marker")
	}

	s.SetReloading(false)
	s.SetLastReload(time.Now().Add(-2 * time.Minute))
	if !strings.Contains(s.View(), "reloaded 2 minutes ago") {
		t.Errorf("View() = %q, missing the relative reload time", s.View())
	}

	s.SetWatching(true)
	if !strings.Contains(s.View(), "watch") {
		t.Error("View() missing the watch marker")
	}
}

func TestStatusBar_CacheStats(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(120)

	// No lookups yet: the cache segment stays hidden.
	if strings.Contains(s.View(), "cache") {
		t.Error("View() should omit cache stats before any lookups")
	}

	s.SetCacheStats(cache.Stats{Hits: 3, Misses: 1})
	if !strings.Contains(s.View(), "cache 75%") {
		t.Errorf("View() = %q, missing the hit rate", s.View())
	}
}

func TestStatusBar_TransientMessage(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(120)
	s.SetQueryState("All time", "", 3, 3)

	s.ShowMessage("saved view VIEW-001", MessageSuccess, 5*time.Second)
	if !strings.Contains(s.View(), "saved view VIEW-001") {
		t.Error("View() missing the transient message")
	}
	if strings.Contains(s.View(), "3 of 3 rows") {
		t.Error("the message should replace the query summary")
	}

	// Expiry restores the query summary.
	s.ClearExpired(time.Now().Add(10 * time.Second))
	if strings.Contains(s.View(), "saved view VIEW-001") {
		t.Error("expired message still shown")
	}
	if !strings.Contains(s.View(), "3 of 3 rows") {
		t.Error("query summary not restored after expiry")
	}
}

func TestStatusBar_NarrowWidthDropsRightSide(t *testing.T) {
	s := NewStatusBar()
	s.SetWidth(30)
	s.SetQueryState("All time", "", 1000, 1000)

	if strings.Contains(s.View(), "no reload yet") {
		t.Error("narrow bar should drop the right-hand segment")
	}
}
