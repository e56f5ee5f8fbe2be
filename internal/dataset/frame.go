package dataset

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"
)

// Sentinel errors for the engine layer.
var (
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrUnknownColumn = errors.New("unknown column")
)

const castPanic = "how could a row index item not be of type *Row"

// versionCounter makes frame versions unique across all frames and all
// reloads, so (name, version) can key caches safely.
var versionCounter atomic.Uint64

// Row is one row of a frame.
type Row struct {
	// Key is the primary key the frame orders rows by.
	Key string
	// Stamp is the row timestamp drawn from the frame's time column,
	// zero when the frame has none.
	Stamp time.Time
	// Cells holds one value per schema column.
	Cells []Value
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	cells := make([]Value, len(r.Cells))
	copy(cells, r.Cells)
	return &Row{Key: r.Key, Stamp: r.Stamp, Cells: cells}
}

// Cell returns the value at column i, or a null when out of range.
func (r *Row) Cell(i int) Value {
	if i < 0 || i >= len(r.Cells) {
		return Null(KindString)
	}
	return r.Cells[i]
}

func byRowKeys(a, b interface{}) bool {
	r1, ok1 := a.(*Row)
	r2, ok2 := b.(*Row)
	if !ok1 || !ok2 {
		panic(castPanic)
	}
	return r1.Key < r2.Key
}

// Frame is one named in-memory table. Rows are held in a B-tree ordered
// by Key. Frames are mutated only while being built; once published to
// a Store they are treated as immutable and replaced wholesale.
type Frame struct {
	name    string
	schema  Schema
	rows    *btree.BTree
	version uint64
	bytes   int64
	loaded  time.Time
}

// NewFrame creates an empty frame with the given schema.
func NewFrame(name string, schema Schema) *Frame {
	return &Frame{
		name:    name,
		schema:  schema,
		rows:    btree.NewNonConcurrent(byRowKeys),
		version: versionCounter.Add(1),
		loaded:  time.Now(),
	}
}

// Name returns the frame name.
func (f *Frame) Name() string { return f.name }

// Schema returns the frame schema.
func (f *Frame) Schema() Schema { return f.schema }

// Version identifies the frame content. It changes on every mutation
// and is never reused by another frame.
func (f *Frame) Version() uint64 { return f.version }

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows.Len() }

// Bytes returns the source byte size recorded at load time.
func (f *Frame) Bytes() int64 { return f.bytes }

// SetBytes records the source byte size.
func (f *Frame) SetBytes(n int64) { f.bytes = n }

// LoadedAt returns when the frame was built.
func (f *Frame) LoadedAt() time.Time { return f.loaded }

// Append inserts a row. Keys must be unique within the frame.
func (f *Frame) Append(row *Row) error {
	existing := f.rows.Set(row)
	if existing != nil {
		// Put the previous row back so a failed append is a no-op.
		_ = f.rows.Set(existing)
		return errors.Wrapf(ErrDuplicateKey, "key %s in frame %s", row.Key, f.name)
	}
	f.version = versionCounter.Add(1)
	return nil
}

// Row returns the row with the given key.
func (f *Frame) Row(key string) (*Row, bool) {
	found := f.rows.Get(&Row{Key: key})
	if found == nil {
		return nil, false
	}
	row, ok := found.(*Row)
	if !ok {
		panic(castPanic)
	}
	return row, true
}

// RowIterator receives rows during a scan; returning false stops the
// scan early.
type RowIterator func(row *Row) bool

// filteringIterator adapts a RowIterator to the B-tree callback,
// aborting when ctx is done.
func filteringIterator(ctx context.Context, ir RowIterator) func(item interface{}) bool {
	return func(item interface{}) bool {
		if ctx.Err() != nil {
			return false
		}
		row, ok := item.(*Row)
		if !ok {
			panic(castPanic)
		}
		return ir(row)
	}
}

// Scan iterates all rows in key order. It returns ctx.Err() when the
// context ends mid-scan.
func (f *Frame) Scan(ctx context.Context, ir RowIterator) error {
	f.rows.Ascend(nil, filteringIterator(ctx, ir))
	return ctx.Err()
}

// ScanRange iterates rows with from <= Key < to in key order. An empty
// bound leaves that side open.
func (f *Frame) ScanRange(ctx context.Context, from, to string, ir RowIterator) error {
	iter := filteringIterator(ctx, ir)
	switch {
	case from == "" && to == "":
		f.rows.Ascend(nil, iter)
	case to == "":
		f.rows.Ascend(&Row{Key: from}, iter)
	default:
		ascendRange(f.rows, &Row{Key: from}, &Row{Key: to}, iter)
	}
	return ctx.Err()
}

// ScanDescend iterates all rows in reverse key order.
func (f *Frame) ScanDescend(ctx context.Context, ir RowIterator) error {
	f.rows.Descend(nil, filteringIterator(ctx, ir))
	return ctx.Err()
}

func lt(tr *btree.BTree, a, b interface{}) bool { return tr.Less(a, b) }

func ascendRange(
	tr *btree.BTree,
	greaterOrEqual interface{},
	lessThan interface{},
	iter func(item interface{}) bool,
) {
	tr.Ascend(greaterOrEqual, func(item interface{}) bool {
		return lt(tr, item, lessThan) && iter(item)
	})
}

// columnIndex resolves a column reference for queries.
func (f *Frame) columnIndex(name string) (int, error) {
	i, ok := f.schema.Lookup(name)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownColumn, "column %q in frame %s", name, f.name)
	}
	return i, nil
}

// BuildRow assembles a Row from raw cells using the frame schema,
// deriving Key and Stamp. ordinal is used when the schema has no key
// column.
func (f *Frame) BuildRow(raw []string, ordinal int) *Row {
	cells := make([]Value, f.schema.Len())
	for i := 0; i < f.schema.Len(); i++ {
		var cell string
		if i < len(raw) {
			cell = raw[i]
		}
		cells[i] = Parse(cell, f.schema.Column(i).Kind)
	}

	row := &Row{Cells: cells}

	if keyCol := f.schema.KeyColumn(); keyCol >= 0 && !cells[keyCol].IsNull() {
		row.Key = cells[keyCol].String()
	} else {
		row.Key = fmt.Sprintf("%08d", ordinal)
	}

	if timeCol := f.schema.TimeColumn(); timeCol >= 0 && !cells[timeCol].IsNull() {
		row.Stamp = cells[timeCol].Time()
	}

	return row
}
