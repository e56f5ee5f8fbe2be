// Package tui implements the interactive dashboard.
//
// The Model composes the frame sidebar, the data table, and a set of
// modal overlays. Background loaders talk to it through messages
// delivered by the EventBridge, so Update never blocks on I/O.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gridwatch/internal/cache"
	"gridwatch/internal/calendar"
	"gridwatch/internal/dataset"
	"gridwatch/internal/export"
	"gridwatch/internal/source"
	"gridwatch/internal/tui/components"
	"gridwatch/internal/view"
)

// Focus identifies the active pane.
type Focus int

const (
	// FocusFrames puts navigation keys on the frame sidebar.
	FocusFrames Focus = iota
	// FocusTable puts navigation keys on the data table.
	FocusTable
)

// RefreshController triggers reload and snapshot passes on demand.
// *refresh.Scheduler satisfies it.
type RefreshController interface {
	ReloadNow(ctx context.Context) error
	SnapshotNow(ctx context.Context) error
}

// Options configures the dashboard model.
type Options struct {
	// Store holds the loaded frames. Required.
	Store *dataset.Store
	// Views persists saved views. Nil disables the view keys.
	Views *view.Store
	// QueryCache caches rendered exports. Nil disables caching.
	QueryCache cache.Cache
	// Workspace is the display name shown in the header.
	Workspace string
	// WorkspaceDir is the directory exports are written under.
	WorkspaceDir string
	// DateFormat renders time cells and defaults to "2006-01-02 15:04".
	DateFormat string
	// StaleAfter marks frames stale this long after their load.
	// Zero disables staleness marks.
	StaleAfter time.Duration
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	store        *dataset.Store
	views        *view.Store
	queryCache   cache.Cache
	controller   RefreshController
	workspaceDir string
	dateFormat   string
	staleAfter   time.Duration

	header      *components.Header
	frameList   *components.FrameList
	dataTable   *components.DataTable
	statusBar   *components.StatusBar
	shortcuts   *components.ShortcutBar
	filterInput *components.FilterInput
	calPicker   *components.CalendarPicker
	statsPanel  *components.StatsPanel
	viewPicker  *components.ViewPicker
	helpOverlay *components.HelpOverlay
	confirm     *components.ConfirmDialog
	spin        *components.Spinner

	focus       Focus
	activeFrame string
	query       dataset.Query
	preset      calendar.Preset
	result      *dataset.Result
	failed      map[string]string

	reloading   bool
	watchActive bool
	width       int
	height      int
	quitting    bool
}

// New builds the dashboard model over the given stores.
func New(opts Options) *Model {
	if opts.Store == nil {
		opts.Store = dataset.NewStore()
	}
	if opts.QueryCache == nil {
		opts.QueryCache = cache.Null{}
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "2006-01-02 15:04"
	}

	m := &Model{
		store:        opts.Store,
		views:        opts.Views,
		queryCache:   opts.QueryCache,
		workspaceDir: opts.WorkspaceDir,
		dateFormat:   opts.DateFormat,
		staleAfter:   opts.StaleAfter,

		header:      components.NewHeader(opts.Workspace),
		frameList:   components.NewFrameList(),
		dataTable:   components.NewDataTable(opts.DateFormat),
		statusBar:   components.NewStatusBar(),
		shortcuts:   components.NewShortcutBar(defaultShortcuts()),
		filterInput: components.NewFilterInput(),
		calPicker:   components.NewCalendarPicker(),
		statsPanel:  components.NewStatsPanel(),
		viewPicker:  components.NewViewPicker(),
		helpOverlay: components.NewHelpOverlay(),
		confirm:     components.NewConfirmDialog(),
		spin:        components.NewSpinner("reloading sources"),

		preset: calendar.PresetAll,
		failed: map[string]string{},
	}

	m.frameList.Focus()
	m.refreshFrames()
	return m
}

func defaultShortcuts() []components.ShortcutDef {
	return []components.ShortcutDef{
		{Key: "tab", Desc: "pane"},
		{Key: "/", Desc: "filter"},
		{Key: "s", Desc: "sort"},
		{Key: "d", Desc: "dates"},
		{Key: "p", Desc: "preset"},
		{Key: "v", Desc: "save view"},
		{Key: "V", Desc: "views"},
		{Key: "r", Desc: "reload"},
		{Key: "x", Desc: "export"},
		{Key: "?", Desc: "help"},
		{Key: "q", Desc: "quit"},
	}
}

// SetController wires the manual reload and snapshot keys.
func (m *Model) SetController(c RefreshController) {
	m.controller = c
}

// ActiveFrame returns the frame the table is showing.
func (m *Model) ActiveFrame() string {
	return m.activeFrame
}

// Query returns the active query.
func (m *Model) Query() dataset.Query {
	return m.query
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// Init starts the clock.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case TickMsg:
		m.statusBar.ClearExpired(msg.Time)
		m.statusBar.SetCacheStats(m.queryCache.Stats())
		m.refreshFrames()
		return m, tickCmd()

	case ReloadStartedMsg:
		m.reloading = true
		m.statusBar.SetReloading(true)
		return m, m.spin.Start()

	case FrameLoadedMsg:
		delete(m.failed, msg.Frame)
		m.refreshFrames()
		if msg.Frame == m.activeFrame {
			m.runQuery()
		}
		return m, nil

	case ReloadFailedMsg:
		frame := source.FrameName(msg.Path)
		m.failed[frame] = msg.Error
		m.refreshFrames()
		m.showMessage(fmt.Sprintf("load failed: %s: %s", filepath.Base(msg.Path), msg.Error),
			components.MessageError)
		return m, nil

	case FrameDroppedMsg:
		delete(m.failed, msg.Frame)
		m.refreshFrames()
		m.showMessage("frame "+msg.Frame+" dropped (source removed)", components.MessageWarning)
		return m, nil

	case FramesUpdatedMsg:
		m.reloading = false
		m.spin.Stop()
		m.statusBar.SetReloading(false)
		m.statusBar.SetLastReload(time.Now())
		m.refreshFrames()
		m.runQuery()
		return m, nil

	case WatchStatusMsg:
		m.watchActive = msg.Active
		m.statusBar.SetWatching(msg.Active)
		return m, nil

	case SnapshotSavedMsg:
		m.showMessage(fmt.Sprintf("snapshot saved: %s (%d rows)", msg.Frame, msg.Rows),
			components.MessageSuccess)
		return m, nil

	case ExportDoneMsg:
		m.showMessage(fmt.Sprintf("exported %d rows to %s", msg.Rows, msg.Path),
			components.MessageSuccess)
		return m, nil

	case ErrorMsg:
		m.showMessage(msg.Error, components.MessageError)
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case components.ConfirmYesMsg:
		return m.handleConfirm(msg)

	case components.ConfirmNoMsg:
		return m, nil

	case components.FilterSubmitMsg:
		m.applyFilter(msg.Value)
		return m, nil

	case components.FilterCancelMsg:
		return m, nil

	case components.RangePickedMsg:
		m.query.Range = msg.Range
		if msg.Range.IsZero() {
			m.preset = calendar.PresetAll
		} else {
			m.preset = ""
		}
		m.runQuery()
		m.dataTable.Reset()
		return m, nil

	case components.ViewSelectedMsg:
		m.applyView(msg.View)
		return m, nil

	case components.ViewDeleteRequestMsg:
		v, ok := viewByID(m.views, msg.ID)
		if !ok {
			return m, nil
		}
		m.confirm.Show("Delete view?",
			fmt.Sprintf("%s (%s) will be removed permanently.", v.Name, v.ID),
			components.ActionDeleteView, msg.ID, true)
		return m, nil

	case tea.KeyMsg:
		// Overlays swallow keys while visible.
		if m.confirm.IsVisible() {
			return m, m.confirm.Update(msg)
		}
		if m.helpOverlay.IsVisible() {
			return m, m.helpOverlay.Update(msg)
		}
		if m.filterInput.IsVisible() {
			return m, m.filterInput.Update(msg)
		}
		if m.calPicker.IsVisible() {
			return m, m.calPicker.Update(msg)
		}
		if m.viewPicker.IsVisible() {
			return m, m.viewPicker.Update(msg)
		}
		if m.statsPanel.IsVisible() {
			return m, m.statsPanel.Update(msg)
		}
		return m.handleKeyPress(msg)

	default:
		if m.spin.Active() {
			return m, m.spin.Update(msg)
		}
	}
	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.watchActive {
			m.confirm.Show("Quit gridwatch?",
				"The file watcher is still running.",
				components.ActionQuit, "", false)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.toggleFocus()
		return m, nil

	case "?":
		m.helpOverlay.Show()
		return m, nil

	case "/":
		return m, m.filterInput.Show(m.filterText())

	case "d":
		m.calPicker.Show(m.query.Range)
		return m, nil

	case "p":
		m.cyclePreset()
		return m, nil

	case "s":
		m.cycleSort()
		return m, nil

	case "c":
		m.toggleStats()
		return m, nil

	case "v":
		m.saveView()
		return m, nil

	case "V":
		if m.views == nil {
			m.showMessage("saved views are not available", components.MessageWarning)
			return m, nil
		}
		m.viewPicker.Show(m.views.All())
		return m, nil

	case "x":
		return m, m.exportCmd()

	case "r":
		return m, m.reloadCmd()

	case "S":
		return m, m.snapshotCmd()

	case "D":
		frame := m.frameList.SelectedName()
		if frame == "" {
			return m, nil
		}
		m.confirm.Show("Drop frame "+frame+"?",
			"The frame leaves memory until its source reloads.",
			components.ActionDrop, frame, true)
		return m, nil

	case "j", "down":
		if m.focus == FocusFrames {
			m.frameList.MoveDown()
			m.setActiveFrame(m.frameList.SelectedName())
			return m, nil
		}
		return m, m.dataTable.Update(msg)

	case "k", "up":
		if m.focus == FocusFrames {
			m.frameList.MoveUp()
			m.setActiveFrame(m.frameList.SelectedName())
			return m, nil
		}
		return m, m.dataTable.Update(msg)

	default:
		if m.focus == FocusTable {
			return m, m.dataTable.Update(msg)
		}
	}
	return m, nil
}

func (m *Model) handleConfirm(msg components.ConfirmYesMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case components.ActionQuit:
		m.quitting = true
		return m, tea.Quit

	case components.ActionDrop:
		if m.store.Drop(msg.Target) {
			delete(m.failed, msg.Target)
			m.refreshFrames()
			m.runQuery()
			m.showMessage("dropped frame "+msg.Target, components.MessageWarning)
		}
		return m, nil

	case components.ActionDeleteView:
		if m.views == nil {
			return m, nil
		}
		if err := m.views.Delete(msg.Target); err != nil {
			m.showMessage(err.Error(), components.MessageError)
			return m, nil
		}
		if err := m.views.Save(); err != nil {
			m.showMessage("failed to save views: "+err.Error(), components.MessageError)
		}
		m.viewPicker.SetViews(m.views.All())
		m.showMessage("deleted view "+msg.Target, components.MessageWarning)
		return m, nil
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == FocusFrames {
		m.focus = FocusTable
		m.frameList.Blur()
		m.dataTable.Focus()
	} else {
		m.focus = FocusFrames
		m.dataTable.Blur()
		m.frameList.Focus()
	}
}

// cycleSort walks no sort, then each column ascending then
// descending, then back to no sort.
func (m *Model) cycleSort() {
	frame, ok := m.store.Frame(m.activeFrame)
	if !ok {
		return
	}
	schema := frame.Schema()
	if schema.Len() == 0 {
		return
	}

	switch {
	case m.query.SortBy == "":
		m.query.SortBy = schema.Column(0).Name
		m.query.Desc = false
	case !m.query.Desc:
		m.query.Desc = true
	default:
		idx, _ := schema.Lookup(m.query.SortBy)
		if idx+1 >= schema.Len() {
			m.query.SortBy = ""
		} else {
			m.query.SortBy = schema.Column(idx + 1).Name
		}
		m.query.Desc = false
	}
	m.runQuery()
	m.dataTable.Reset()
}

func (m *Model) cyclePreset() {
	if m.preset == "" {
		m.preset = calendar.PresetAll
	} else {
		m.preset = m.preset.Next()
	}
	m.query.Range = m.preset.Resolve(time.Now())
	m.runQuery()
	m.dataTable.Reset()
}

func (m *Model) toggleStats() {
	if m.statsPanel.IsVisible() {
		m.statsPanel.Hide()
		return
	}
	frame, ok := m.store.Frame(m.activeFrame)
	if !ok {
		m.showMessage("no frame selected", components.MessageWarning)
		return
	}
	summary, err := frame.Summarize(context.Background())
	if err != nil {
		m.showMessage("stats failed: "+err.Error(), components.MessageError)
		return
	}
	m.statsPanel.Show(summary)
}

// applyFilter parses "column:text" when the prefix names a column of
// the active frame, otherwise the whole text matches all cells.
func (m *Model) applyFilter(value string) {
	value = strings.TrimSpace(value)
	column, text := "", value

	if i := strings.Index(value, ":"); i > 0 {
		candidate := strings.TrimSpace(value[:i])
		if frame, ok := m.store.Frame(m.activeFrame); ok {
			if _, found := frame.Schema().Lookup(candidate); found {
				column = candidate
				text = strings.TrimSpace(value[i+1:])
			}
		}
	}

	m.query.Column = column
	m.query.Filter = text
	m.runQuery()
	m.dataTable.Reset()
}

// filterText renders the query filter back into editable form.
func (m *Model) filterText() string {
	if m.query.Column != "" {
		return m.query.Column + ":" + m.query.Filter
	}
	return m.query.Filter
}

func (m *Model) rangeLabel() string {
	if m.preset != "" {
		return m.preset.Label()
	}
	if !m.query.Range.IsZero() {
		return m.query.Range.String()
	}
	return "All time"
}

func (m *Model) saveView() {
	if m.views == nil {
		m.showMessage("saved views are not available", components.MessageWarning)
		return
	}
	if m.activeFrame == "" {
		m.showMessage("no frame selected", components.MessageWarning)
		return
	}

	v := view.New(m.viewName(), m.activeFrame, m.query)
	id, err := m.views.Add(v)
	if err != nil {
		m.showMessage("failed to save view: "+err.Error(), components.MessageError)
		return
	}
	if err := m.views.Save(); err != nil {
		m.showMessage("failed to save views: "+err.Error(), components.MessageError)
		return
	}
	m.showMessage("saved view "+id, components.MessageSuccess)
}

// viewName builds a readable name from the query.
func (m *Model) viewName() string {
	name := m.activeFrame
	if m.query.Filter != "" {
		name += " · " + m.query.Filter
	}
	if label := m.rangeLabel(); label != "All time" {
		name += " · " + label
	}
	if m.query.SortBy != "" {
		name += " · by " + m.query.SortBy
	}
	if name == m.activeFrame {
		name += " · all rows"
	}
	return name
}

func (m *Model) applyView(v *view.View) {
	if v == nil {
		return
	}
	if _, ok := m.store.Frame(v.Frame); !ok {
		m.showMessage("frame "+v.Frame+" is not loaded", components.MessageWarning)
		return
	}

	m.activeFrame = v.Frame
	m.frameList.Select(v.Frame)
	m.query = v.Query
	if m.query.Range.IsZero() {
		m.preset = calendar.PresetAll
	} else {
		m.preset = ""
	}
	m.runQuery()
	m.dataTable.Reset()
	m.showMessage("applied view "+v.ID, components.MessageSuccess)
}

// exportCmd renders the current rows to CSV under
// <workspace>/.gridwatch/exports. Repeated exports of an unchanged
// frame hit the payload cache.
func (m *Model) exportCmd() tea.Cmd {
	frame, ok := m.store.Frame(m.activeFrame)
	if !ok {
		m.showMessage("no frame selected", components.MessageWarning)
		return nil
	}

	q := m.query
	qc := m.queryCache
	dir := filepath.Join(m.workspaceDir, ".gridwatch", "exports")

	return func() tea.Msg {
		exporter, err := export.For(export.FormatCSV)
		if err != nil {
			return ErrorMsg{Error: err.Error()}
		}

		key := cache.Fingerprint(frame.Name(), frame.Version(), "csv:"+q.Canonical())
		payload, hit := qc.Get(key)
		if !hit {
			res, err := frame.Select(context.Background(), q)
			if err != nil {
				return ErrorMsg{Error: "export failed: " + err.Error()}
			}
			buf, err := exporter.Render(res)
			if err != nil {
				return ErrorMsg{Error: "export failed: " + err.Error()}
			}
			payload = buf.Bytes()
			qc.Add(key, payload)
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ErrorMsg{Error: "export failed: " + err.Error()}
		}
		name := fmt.Sprintf("%s-%s%s",
			frame.Name(), time.Now().Format("20060102-150405"), exporter.Extension())
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return ErrorMsg{Error: "export failed: " + err.Error()}
		}

		// The header line does not count as a row.
		rows := bytes.Count(payload, []byte("\n")) - 1
		if rows < 0 {
			rows = 0
		}
		return ExportDoneMsg{Path: path, Rows: rows}
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	if m.controller == nil {
		m.showMessage("refresh loop is not running", components.MessageWarning)
		return nil
	}
	c := m.controller
	return func() tea.Msg {
		if err := c.ReloadNow(context.Background()); err != nil {
			return ErrorMsg{Error: "reload failed: " + err.Error()}
		}
		return nil
	}
}

func (m *Model) snapshotCmd() tea.Cmd {
	if m.controller == nil {
		m.showMessage("refresh loop is not running", components.MessageWarning)
		return nil
	}
	c := m.controller
	return func() tea.Msg {
		if err := c.SnapshotNow(context.Background()); err != nil {
			return ErrorMsg{Error: "snapshot failed: " + err.Error()}
		}
		return nil
	}
}

func (m *Model) setActiveFrame(name string) {
	if name == m.activeFrame {
		return
	}
	m.activeFrame = name
	m.runQuery()
	m.dataTable.Reset()
}

// refreshFrames rebuilds the sidebar from the store and repairs the
// active frame when it disappeared.
func (m *Model) refreshFrames() {
	names := m.store.Names()
	items := make([]components.FrameItem, 0, len(names))
	for _, name := range names {
		f, ok := m.store.Frame(name)
		if !ok {
			continue
		}
		stale := m.staleAfter > 0 && time.Since(f.LoadedAt()) > m.staleAfter
		items = append(items, components.FrameItem{
			Name:   name,
			Rows:   f.Len(),
			Bytes:  f.Bytes(),
			Stale:  stale,
			Failed: m.failed[name] != "",
		})
	}
	m.frameList.SetFrames(items)
	m.header.SetTotals(m.store.Len(), m.store.TotalRows(), m.store.TotalBytes())

	if _, ok := m.store.Frame(m.activeFrame); !ok {
		m.activeFrame = m.frameList.SelectedName()
		m.frameList.Select(m.activeFrame)
		m.runQuery()
	}
}

func (m *Model) runQuery() {
	frame, ok := m.store.Frame(m.activeFrame)
	if !ok {
		m.result = nil
		m.dataTable.SetResult(nil, "", false)
		m.statusBar.SetQueryState(m.rangeLabel(), m.filterText(), 0, 0)
		return
	}

	res, err := frame.Select(context.Background(), m.query)
	if err != nil {
		m.showMessage("query failed: "+err.Error(), components.MessageError)
		return
	}
	m.result = res
	m.dataTable.SetResult(res, m.query.SortBy, m.query.Desc)
	m.statusBar.SetQueryState(m.rangeLabel(), m.filterText(), len(res.Rows), res.TotalMatched)
}

func (m *Model) showMessage(text string, level components.MessageLevel) {
	m.statusBar.ShowMessage(text, level, 5*time.Second)
}

func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.shortcuts.SetWidth(m.width)
	m.filterInput.SetWidth(m.width)

	sidebar := 30
	if m.width < 90 {
		sidebar = m.width / 3
	}
	// Header, utility line, shortcut bar, and status bar each take one row.
	body := m.height - 4
	if body < 6 {
		body = 6
	}
	m.frameList.SetSize(sidebar, body)
	m.dataTable.SetSize(m.width-sidebar, body)
	m.statsPanel.SetHeight(body - 8)
}

func (m *Model) activeOverlay() string {
	switch {
	case m.confirm.IsVisible():
		return m.confirm.View()
	case m.helpOverlay.IsVisible():
		return m.helpOverlay.View()
	case m.calPicker.IsVisible():
		return m.calPicker.View()
	case m.viewPicker.IsVisible():
		return m.viewPicker.View()
	case m.statsPanel.IsVisible():
		return m.statsPanel.View()
	}
	return ""
}

// View renders the dashboard.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "starting gridwatch..."
	}

	if overlay := m.activeOverlay(); overlay != "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.frameList.View(), m.dataTable.View())

	utility := ""
	switch {
	case m.filterInput.IsVisible():
		utility = m.filterInput.View()
	case m.spin.Active():
		utility = m.spin.View()
	}

	return m.header.View() + "\n" +
		body + "\n" +
		utility + "\n" +
		m.shortcuts.View() + "\n" +
		m.statusBar.View()
}

func viewByID(store *view.Store, id string) (*view.View, bool) {
	if store == nil {
		return nil, false
	}
	return store.Get(id)
}
