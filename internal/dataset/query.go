package dataset

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gridwatch/internal/calendar"
)

// Query selects, orders, and pages rows of a frame.
type Query struct {
	// Filter is a case-insensitive substring match. Empty matches all.
	Filter string `json:"filter,omitempty"`
	// Column restricts Filter to a single column. Empty searches all cells.
	Column string `json:"column,omitempty"`
	// Range restricts rows by their Stamp.
	Range calendar.Range `json:"range,omitempty"`
	// SortBy orders rows by a column instead of key order.
	SortBy string `json:"sort_by,omitempty"`
	// Desc reverses the sort order.
	Desc bool `json:"desc,omitempty"`
	// Offset skips rows after sorting.
	Offset int `json:"offset,omitempty"`
	// Limit caps returned rows; 0 means no limit.
	Limit int `json:"limit,omitempty"`
}

// IsZero reports whether the query selects everything in key order.
func (q Query) IsZero() bool {
	return q.Filter == "" && q.Column == "" && q.Range.IsZero() &&
		q.SortBy == "" && !q.Desc && q.Offset == 0 && q.Limit == 0
}

// Canonical renders the query as a stable string for cache keys.
func (q Query) Canonical() string {
	fmtTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("f=%s|c=%s|from=%s|to=%s|s=%s|d=%t|o=%d|l=%d",
		strings.ToLower(q.Filter), strings.ToLower(q.Column),
		fmtTime(q.Range.From), fmtTime(q.Range.To),
		strings.ToLower(q.SortBy), q.Desc, q.Offset, q.Limit)
}

// Result is the outcome of a Select.
type Result struct {
	// Frame is the queried frame name.
	Frame string
	// Schema is the frame schema the rows follow.
	Schema Schema
	// Rows is the selected page in final order. Rows are shared with
	// the frame and must not be mutated.
	Rows []*Row
	// TotalMatched counts all rows matching before paging.
	TotalMatched int
	// Version is the frame version the result was computed at.
	Version uint64
}

// Select runs the query against the frame. Results are deterministic
// for a given frame version and query.
func (f *Frame) Select(ctx context.Context, q Query) (*Result, error) {
	filterCol := -1
	if q.Column != "" {
		i, err := f.columnIndex(q.Column)
		if err != nil {
			return nil, err
		}
		filterCol = i
	}

	sortCol := -1
	if q.SortBy != "" {
		i, err := f.columnIndex(q.SortBy)
		if err != nil {
			return nil, err
		}
		sortCol = i
	}

	needle := strings.ToLower(q.Filter)

	var matched []*Row
	err := f.Scan(ctx, func(row *Row) bool {
		if !q.Range.IsZero() {
			// Rows without a stamp never match a date restriction.
			if row.Stamp.IsZero() || !q.Range.Contains(row.Stamp) {
				return true
			}
		}
		if needle != "" && !rowMatches(row, needle, filterCol) {
			return true
		}
		matched = append(matched, row)
		return true
	})
	if err != nil {
		return nil, err
	}

	if sortCol >= 0 {
		sortRows(matched, sortCol, q.Desc)
	} else if q.Desc {
		reverseRows(matched)
	}

	total := len(matched)
	page := pageRows(matched, q.Offset, q.Limit)

	return &Result{
		Frame:        f.name,
		Schema:       f.schema,
		Rows:         page,
		TotalMatched: total,
		Version:      f.version,
	}, nil
}

// rowMatches checks the substring filter against one column or all.
func rowMatches(row *Row, needle string, col int) bool {
	if col >= 0 {
		return strings.Contains(strings.ToLower(row.Cell(col).String()), needle)
	}
	for _, cell := range row.Cells {
		if strings.Contains(strings.ToLower(cell.String()), needle) {
			return true
		}
	}
	return false
}

// sortRows orders rows by the given column, nulls last regardless of
// direction. The sort is stable with respect to key order.
func sortRows(rows []*Row, col int, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Cell(col), rows[j].Cell(col)
		// Nulls stay last in both directions.
		if a.IsNull() != b.IsNull() {
			return b.IsNull()
		}
		cmp := a.Compare(b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func reverseRows(rows []*Row) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// pageRows applies offset and limit. Limit 0 means no limit.
func pageRows(rows []*Row, offset, limit int) []*Row {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
