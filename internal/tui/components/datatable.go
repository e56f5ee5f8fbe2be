package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"gridwatch/internal/dataset"
	"gridwatch/internal/tui/styles"
)

// DataTable renders the selected page of a frame as a scrolling table.
type DataTable struct {
	table      table.Model
	dateFormat string
	frame      string
	matched    int
	sortBy     string
	desc       bool
	width      int
	height     int
	focused    bool
}

// NewDataTable creates an empty table using the given date format for
// time cells.
func NewDataTable(dateFormat string) *DataTable {
	t := table.New(table.WithHeight(10))

	s := table.DefaultStyles()
	s.Header = styles.TableHeaderStyle
	s.Selected = styles.TableSelectedStyle
	s.Cell = styles.TableCellStyle
	t.SetStyles(s)

	return &DataTable{table: t, dateFormat: dateFormat, width: 80, height: 14}
}

// columnWidth picks a display width per column kind.
func (d *DataTable) columnWidth(col dataset.Column) int {
	w := 0
	switch col.Kind {
	case dataset.KindInt:
		w = 10
	case dataset.KindFloat:
		w = 12
	case dataset.KindBool:
		w = 6
	case dataset.KindTime:
		w = len(d.dateFormat) + 2
	default:
		w = 18
	}
	// Sort markers widen the title by two cells.
	if min := len(col.Name) + 2; w < min {
		w = min
	}
	return w
}

func (d *DataTable) renderCell(v dataset.Value) string {
	if v.IsNull() {
		return ""
	}
	if v.Kind() == dataset.KindTime {
		return v.Time().Format(d.dateFormat)
	}
	return v.String()
}

// SetResult replaces the displayed rows. The sort column gets a
// direction marker in its header.
func (d *DataTable) SetResult(res *dataset.Result, sortBy string, desc bool) {
	d.sortBy = sortBy
	d.desc = desc

	if res == nil {
		d.frame = ""
		d.matched = 0
		d.table.SetRows(nil)
		d.table.SetColumns(nil)
		return
	}

	d.frame = res.Frame
	d.matched = res.TotalMatched

	cols := make([]table.Column, 0, res.Schema.Len())
	for _, col := range res.Schema.Columns() {
		title := col.Name
		if col.Name == sortBy {
			if desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols = append(cols, table.Column{Title: title, Width: d.columnWidth(col)})
	}

	rows := make([]table.Row, 0, len(res.Rows))
	for _, row := range res.Rows {
		cells := make(table.Row, res.Schema.Len())
		for i := 0; i < res.Schema.Len(); i++ {
			cells[i] = d.renderCell(row.Cell(i))
		}
		rows = append(rows, cells)
	}

	// Clearing rows before swapping columns keeps the cursor from
	// pointing past a shorter result.
	d.table.SetRows(nil)
	d.table.SetColumns(cols)
	d.table.SetRows(rows)
}

// Reset scrolls back to the first row.
func (d *DataTable) Reset() {
	d.table.GotoTop()
}

// SetSize sets the render size.
func (d *DataTable) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.table.SetWidth(width - 4)
	inner := height - 5
	if inner < 3 {
		inner = 3
	}
	d.table.SetHeight(inner)
}

// Focus marks the table as the active pane.
func (d *DataTable) Focus() {
	d.focused = true
	d.table.Focus()
}

// Blur marks the table as inactive.
func (d *DataTable) Blur() {
	d.focused = false
	d.table.Blur()
}

// Focused reports whether the table is the active pane.
func (d *DataTable) Focused() bool { return d.focused }

// Cursor returns the selected row index.
func (d *DataTable) Cursor() int { return d.table.Cursor() }

// RowCount returns the number of displayed rows.
func (d *DataTable) RowCount() int { return len(d.table.Rows()) }

// Update forwards navigation keys to the underlying table.
func (d *DataTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.table, cmd = d.table.Update(msg)
	return cmd
}

func (d *DataTable) footer() string {
	if d.frame == "" {
		return styles.MutedTextStyle.Render("select a frame")
	}

	out := fmt.Sprintf("row %d of %d", d.table.Cursor()+1, len(d.table.Rows()))
	if d.matched > len(d.table.Rows()) {
		out += fmt.Sprintf(" (%d matched)", d.matched)
	}
	if d.sortBy != "" {
		dir := "▲"
		if d.desc {
			dir = "▼"
		}
		out += " · sorted by " + d.sortBy + " " + dir
	}
	return styles.MutedTextStyle.Render(out)
}

// View renders the table box with its footer line.
func (d *DataTable) View() string {
	content := d.table.View() + "\n" + d.footer()

	box := styles.BoxStyle
	if d.focused {
		box = styles.FocusedBoxStyle
	}
	return box.Width(d.width - 2).Render(content)
}
