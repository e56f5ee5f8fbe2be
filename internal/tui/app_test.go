package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/cache"
	"gridwatch/internal/calendar"
	"gridwatch/internal/dataset"
	"gridwatch/internal/tui/components"
	"gridwatch/internal/view"
)

func ordersFrame(t *testing.T) *dataset.Frame {
	t.Helper()

	schema := dataset.NewSchema([]dataset.Column{
		{Name: "id", Kind: dataset.KindString},
		{Name: "region", Kind: dataset.KindString},
		{Name: "amount", Kind: dataset.KindFloat},
		{Name: "created_at", Kind: dataset.KindTime},
	})
	f := dataset.NewFrame("orders", schema)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := []*dataset.Row{
		{Key: "ORD-001", Stamp: base, Cells: []dataset.Value{
			dataset.String("ORD-001"), dataset.String("east"),
			dataset.Float(100.5), dataset.Time(base),
		}},
		{Key: "ORD-002", Stamp: base.AddDate(0, 0, 1), Cells: []dataset.Value{
			dataset.String("ORD-002"), dataset.String("west"),
			dataset.Float(20), dataset.Time(base.AddDate(0, 0, 1)),
		}},
		{Key: "ORD-003", Stamp: base.AddDate(0, 0, 2), Cells: []dataset.Value{
			dataset.String("ORD-003"), dataset.String("east"),
			dataset.Float(55.25), dataset.Time(base.AddDate(0, 0, 2)),
		}},
	}
	for _, row := range rows {
		if err := f.Append(row); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	return f
}

func testModel(t *testing.T) *Model {
	t.Helper()

	store := dataset.NewStore()
	store.Replace(ordersFrame(t))
	return New(Options{
		Store:        store,
		Workspace:    "demo",
		WorkspaceDir: t.TempDir(),
	})
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	t.Helper()

	newModel, cmd := m.Update(msg)
	model, ok := newModel.(*Model)
	if !ok {
		t.Fatalf("Update() returned %T, want *Model", newModel)
	}
	return model, cmd
}

func TestModel_InitialState(t *testing.T) {
	m := testModel(t)

	if m.ActiveFrame() != "orders" {
		t.Errorf("ActiveFrame() = %q, want %q", m.ActiveFrame(), "orders")
	}
	if m.result == nil || m.result.TotalMatched != 3 {
		t.Errorf("initial query did not run, result = %+v", m.result)
	}
	if !m.Query().IsZero() {
		t.Errorf("initial query = %+v, want zero", m.Query())
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := testModel(t)

	_, cmd := update(t, m, keyRune('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestModel_CtrlCQuits(t *testing.T) {
	m := testModel(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestModel_QuitConfirmsWhileWatching(t *testing.T) {
	m := testModel(t)
	m, _ = update(t, m, WatchStatusMsg{Active: true})

	m, cmd := update(t, m, keyRune('q'))
	if cmd != nil {
		t.Fatal("q should open the confirm dialog, not quit")
	}
	if !m.confirm.IsVisible() {
		t.Fatal("confirm dialog not shown")
	}

	// Confirming quits.
	m, cmd = update(t, m, components.ConfirmYesMsg{Action: components.ActionQuit})
	if cmd == nil {
		t.Fatal("expected quit command after confirm")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestModel_FocusToggle(t *testing.T) {
	m := testModel(t)

	if m.focus != FocusFrames {
		t.Fatalf("initial focus = %v, want FocusFrames", m.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusTable {
		t.Errorf("focus after tab = %v, want FocusTable", m.focus)
	}
	if !m.dataTable.Focused() || m.frameList.Focused() {
		t.Error("component focus flags out of sync")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FocusFrames {
		t.Errorf("focus after second tab = %v, want FocusFrames", m.focus)
	}
}

func TestModel_SortCycle(t *testing.T) {
	m := testModel(t)

	steps := []struct {
		sortBy string
		desc   bool
	}{
		{"id", false},
		{"id", true},
		{"region", false},
		{"region", true},
		{"amount", false},
		{"amount", true},
		{"created_at", false},
		{"created_at", true},
		{"", false},
	}

	for i, want := range steps {
		m, _ = update(t, m, keyRune('s'))
		if m.query.SortBy != want.sortBy || m.query.Desc != want.desc {
			t.Fatalf("step %d: sort = (%q, %v), want (%q, %v)",
				i, m.query.SortBy, m.query.Desc, want.sortBy, want.desc)
		}
	}
}

func TestModel_ApplyFilter(t *testing.T) {
	m := testModel(t)

	t.Run("plain text matches all cells", func(t *testing.T) {
		m.applyFilter("east")
		if m.query.Filter != "east" || m.query.Column != "" {
			t.Errorf("query = %+v", m.query)
		}
		if m.result.TotalMatched != 2 {
			t.Errorf("TotalMatched = %d, want 2", m.result.TotalMatched)
		}
	})

	t.Run("column prefix restricts the match", func(t *testing.T) {
		m.applyFilter("region:west")
		if m.query.Column != "region" || m.query.Filter != "west" {
			t.Errorf("query = %+v", m.query)
		}
		if m.result.TotalMatched != 1 {
			t.Errorf("TotalMatched = %d, want 1", m.result.TotalMatched)
		}
	})

	t.Run("unknown column stays literal", func(t *testing.T) {
		m.applyFilter("bogus:xyz")
		if m.query.Column != "" || m.query.Filter != "bogus:xyz" {
			t.Errorf("query = %+v", m.query)
		}
	})

	t.Run("empty clears the filter", func(t *testing.T) {
		m.applyFilter("")
		if m.query.Filter != "" || m.query.Column != "" {
			t.Errorf("query = %+v", m.query)
		}
		if m.result.TotalMatched != 3 {
			t.Errorf("TotalMatched = %d, want 3", m.result.TotalMatched)
		}
	})
}

func TestModel_FilterInputFlow(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('/'))
	if !m.filterInput.IsVisible() {
		t.Fatal("filter input not shown")
	}

	// Keys route into the input while it is open.
	m, _ = update(t, m, keyRune('e'))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit the filter")
	}

	m, _ = update(t, m, cmd())
	if m.query.Filter != "e" {
		t.Errorf("Filter = %q, want %q", m.query.Filter, "e")
	}
	if m.filterInput.IsVisible() {
		t.Error("filter input still visible after submit")
	}
}

func TestModel_PresetCycle(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('p'))
	if m.preset != calendar.PresetToday {
		t.Fatalf("preset = %q, want today", m.preset)
	}
	if m.query.Range.IsZero() {
		t.Error("today preset should set a range")
	}

	// A full lap lands back on all time.
	for i := 0; i < len(calendar.Presets())-1; i++ {
		m, _ = update(t, m, keyRune('p'))
	}
	if m.preset != calendar.PresetAll {
		t.Errorf("preset after full cycle = %q, want all", m.preset)
	}
	if !m.query.Range.IsZero() {
		t.Errorf("range after full cycle = %v, want zero", m.query.Range)
	}
}

func TestModel_RangePicked(t *testing.T) {
	m := testModel(t)

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rng := calendar.NewRange(from, from.AddDate(0, 0, 2))

	m, _ = update(t, m, components.RangePickedMsg{Range: rng})
	if m.preset != "" {
		t.Errorf("preset = %q, want custom", m.preset)
	}
	if !m.query.Range.From.Equal(from) {
		t.Errorf("Range.From = %v, want %v", m.query.Range.From, from)
	}
	if m.result.TotalMatched != 2 {
		t.Errorf("TotalMatched = %d, want 2", m.result.TotalMatched)
	}

	// Clearing restores all time.
	m, _ = update(t, m, components.RangePickedMsg{})
	if m.preset != calendar.PresetAll || !m.query.Range.IsZero() {
		t.Errorf("clear: preset = %q, range = %v", m.preset, m.query.Range)
	}
}

func TestModel_SaveAndApplyView(t *testing.T) {
	store := dataset.NewStore()
	store.Replace(ordersFrame(t))
	views := view.NewStoreInDir(t.TempDir())

	m := New(Options{Store: store, Views: views, WorkspaceDir: t.TempDir()})
	m.applyFilter("region:east")

	m, _ = update(t, m, keyRune('v'))
	saved := views.All()
	if len(saved) != 1 {
		t.Fatalf("views.All() = %d entries, want 1", len(saved))
	}
	if saved[0].Frame != "orders" || saved[0].Query.Column != "region" {
		t.Errorf("saved view = %+v", saved[0])
	}

	// Applying the view after the query changed restores it.
	m.applyFilter("")
	m, _ = update(t, m, components.ViewSelectedMsg{View: saved[0]})
	if m.query.Filter != "east" || m.query.Column != "region" {
		t.Errorf("query after apply = %+v", m.query)
	}
}

func TestModel_DeleteViewConfirmFlow(t *testing.T) {
	store := dataset.NewStore()
	store.Replace(ordersFrame(t))
	views := view.NewStoreInDir(t.TempDir())

	m := New(Options{Store: store, Views: views, WorkspaceDir: t.TempDir()})
	m, _ = update(t, m, keyRune('v'))
	id := views.All()[0].ID

	m, _ = update(t, m, components.ViewDeleteRequestMsg{ID: id})
	if !m.confirm.IsVisible() {
		t.Fatal("delete should ask for confirmation")
	}

	m, _ = update(t, m, components.ConfirmYesMsg{
		Action: components.ActionDeleteView, Target: id,
	})
	if len(views.All()) != 0 {
		t.Errorf("views.All() = %d entries after delete, want 0", len(views.All()))
	}
}

func TestModel_DropFrameConfirmFlow(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('D'))
	if !m.confirm.IsVisible() {
		t.Fatal("drop should ask for confirmation")
	}

	m, _ = update(t, m, components.ConfirmYesMsg{
		Action: components.ActionDrop, Target: "orders",
	})
	if m.store.Len() != 0 {
		t.Errorf("store.Len() = %d after drop, want 0", m.store.Len())
	}
	if m.ActiveFrame() != "" {
		t.Errorf("ActiveFrame() = %q after drop, want empty", m.ActiveFrame())
	}
}

func TestModel_ConfirmDeclineKeepsFrame(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('D'))
	m, cmd := update(t, m, keyRune('n'))
	if cmd == nil {
		t.Fatal("n should produce a decline message")
	}
	m, _ = update(t, m, cmd())

	if m.confirm.IsVisible() {
		t.Error("confirm still visible after decline")
	}
	if m.store.Len() != 1 {
		t.Errorf("store.Len() = %d, want 1", m.store.Len())
	}
}

func TestModel_FrameMessages(t *testing.T) {
	m := testModel(t)

	latency := dataset.NewFrame("latency", dataset.NewSchema([]dataset.Column{
		{Name: "id", Kind: dataset.KindString},
	}))
	m.store.Replace(latency)

	m, _ = update(t, m, FramesUpdatedMsg{Names: []string{"latency", "orders"}})
	if m.frameList.Len() != 2 {
		t.Errorf("frameList.Len() = %d, want 2", m.frameList.Len())
	}
	if m.ActiveFrame() != "orders" {
		t.Errorf("ActiveFrame() = %q, want orders kept", m.ActiveFrame())
	}

	m, _ = update(t, m, ReloadFailedMsg{Path: "/data/latency.csv", Error: "bad header"})
	if m.failed["latency"] == "" {
		t.Error("failed frame not recorded")
	}

	m, _ = update(t, m, FrameLoadedMsg{Frame: "latency", Rows: 1})
	if m.failed["latency"] != "" {
		t.Error("failure not cleared by a successful load")
	}

	m.store.Drop("latency")
	m, _ = update(t, m, FrameDroppedMsg{Frame: "latency"})
	if m.frameList.Len() != 1 {
		t.Errorf("frameList.Len() = %d after drop, want 1", m.frameList.Len())
	}
}

func TestModel_ReloadLifecycle(t *testing.T) {
	m := testModel(t)

	m, cmd := update(t, m, ReloadStartedMsg{})
	if !m.reloading {
		t.Error("reloading flag not set")
	}
	if cmd == nil {
		t.Error("spinner tick not started")
	}

	m, _ = update(t, m, FramesUpdatedMsg{Names: m.store.Names()})
	if m.reloading {
		t.Error("reloading flag not cleared")
	}
	if m.spin.Active() {
		t.Error("spinner still active")
	}
}

type fakeController struct {
	reloads   int
	snapshots int
}

func (f *fakeController) ReloadNow(ctx context.Context) error {
	f.reloads++
	return nil
}

func (f *fakeController) SnapshotNow(ctx context.Context) error {
	f.snapshots++
	return nil
}

func TestModel_ManualReloadAndSnapshot(t *testing.T) {
	m := testModel(t)
	ctrl := &fakeController{}
	m.SetController(ctrl)

	_, cmd := update(t, m, keyRune('r'))
	if cmd == nil {
		t.Fatal("r should produce a command")
	}
	cmd()
	if ctrl.reloads != 1 {
		t.Errorf("reloads = %d, want 1", ctrl.reloads)
	}

	_, cmd = update(t, m, keyRune('S'))
	if cmd == nil {
		t.Fatal("S should produce a command")
	}
	cmd()
	if ctrl.snapshots != 1 {
		t.Errorf("snapshots = %d, want 1", ctrl.snapshots)
	}
}

func TestModel_NoControllerIsSafe(t *testing.T) {
	m := testModel(t)

	if _, cmd := update(t, m, keyRune('r')); cmd != nil {
		t.Error("r without a controller should be a no-op")
	}
	if _, cmd := update(t, m, keyRune('S')); cmd != nil {
		t.Error("S without a controller should be a no-op")
	}
}

func TestModel_ExportWritesCSV(t *testing.T) {
	store := dataset.NewStore()
	store.Replace(ordersFrame(t))
	qc, err := cache.New(1, 64*1024)
	if err != nil {
		t.Fatalf("cache.New() error = %v", err)
	}

	dir := t.TempDir()
	m := New(Options{Store: store, QueryCache: qc, WorkspaceDir: dir})

	_, cmd := update(t, m, keyRune('x'))
	if cmd == nil {
		t.Fatal("x should produce a command")
	}

	msg := cmd()
	done, ok := msg.(ExportDoneMsg)
	if !ok {
		t.Fatalf("cmd() = %T (%v), want ExportDoneMsg", msg, msg)
	}
	if done.Rows != 3 {
		t.Errorf("Rows = %d, want 3", done.Rows)
	}

	data, err := os.ReadFile(done.Path)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", done.Path, err)
	}
	if !strings.HasPrefix(string(data), "id,region,amount,created_at") {
		t.Errorf("export header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
	if filepath.Dir(done.Path) != filepath.Join(dir, ".gridwatch", "exports") {
		t.Errorf("export dir = %q", filepath.Dir(done.Path))
	}

	// A second export of the unchanged frame hits the cache.
	_, cmd = update(t, m, keyRune('x'))
	if msg := cmd(); msg.(ExportDoneMsg).Rows != 3 {
		t.Errorf("cached export rows = %d, want 3", msg.(ExportDoneMsg).Rows)
	}
	if qc.Stats().Hits == 0 {
		t.Error("second export should hit the payload cache")
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('?'))
	if !m.helpOverlay.IsVisible() {
		t.Fatal("help overlay not shown")
	}

	// Any key closes it, and nothing else reacts to the key.
	m, _ = update(t, m, keyRune('q'))
	if m.helpOverlay.IsVisible() {
		t.Error("help overlay still visible")
	}
	if m.quitting {
		t.Error("q while help is open must not quit")
	}
}

func TestModel_StatsPanel(t *testing.T) {
	m := testModel(t)

	m, _ = update(t, m, keyRune('c'))
	if !m.statsPanel.IsVisible() {
		t.Fatal("stats panel not shown")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.statsPanel.IsVisible() {
		t.Error("stats panel still visible after esc")
	}
}

func TestModel_View(t *testing.T) {
	m := testModel(t)

	if got := m.View(); !strings.Contains(got, "starting gridwatch") {
		t.Errorf("View() before sizing = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	got := m.View()
	if !strings.Contains(got, "gridwatch") {
		t.Error("View() missing the header")
	}
	if !strings.Contains(got, "orders") {
		t.Error("View() missing the frame list entry")
	}
	if !strings.Contains(got, "Frames") {
		t.Error("View() missing the sidebar title")
	}
}

func TestModel_ReloadFailedMarksFrame(t *testing.T) {
	m := testModel(t)

	// Failure paths key the frame exactly as the loader names it, so a
	// mixed-case file still marks the lowercased frame.
	m, _ = update(t, m, ReloadFailedMsg{Path: "/data/Orders.CSV", Error: "bad header"})

	if m.failed["orders"] == "" {
		t.Fatal("orders frame should be marked failed")
	}

	m, _ = update(t, m, FrameLoadedMsg{Frame: "orders", Rows: 3})
	if m.failed["orders"] != "" {
		t.Error("successful load should clear the failure mark")
	}
}
