package dataset

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Append(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)
	require.Equal(t, 5, f.Len())

	row, ok := f.Row("ORD-003")
	require.True(t, ok)
	assert.Equal(t, "east", row.Cell(1).String())
	assert.True(t, row.Cell(2).IsNull())

	_, ok = f.Row("ORD-999")
	assert.False(t, ok)
}

func TestFrame_Append_duplicateKey(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)
	before := f.Version()

	err := f.Append(&Row{Key: "ORD-002", Cells: []Value{
		String("ORD-002"), String("south"), Float(1), Null(KindTime),
	}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Contains(t, err.Error(), "ORD-002")

	// The failed append is a no-op.
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, before, f.Version())
	row, ok := f.Row("ORD-002")
	require.True(t, ok)
	assert.Equal(t, "west", row.Cell(1).String())
}

func TestFrame_versionsAreUnique(t *testing.T) {
	t.Parallel()

	a := NewFrame("a", seedSchema())
	b := NewFrame("b", seedSchema())
	assert.NotEqual(t, a.Version(), b.Version())

	before := a.Version()
	require.NoError(t, a.Append(&Row{Key: "k", Cells: []Value{
		String("k"), String("x"), Float(1), Null(KindTime),
	}}))
	assert.Greater(t, a.Version(), before)
}

func TestFrame_Scan_keyOrder(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	var keys []string
	err := f.Scan(context.Background(), func(row *Row) bool {
		keys = append(keys, row.Key)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-001", "ORD-002", "ORD-003", "ORD-004", "ORD-005"}, keys)
}

func TestFrame_Scan_earlyStop(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	var keys []string
	err := f.Scan(context.Background(), func(row *Row) bool {
		keys = append(keys, row.Key)
		return len(keys) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-001", "ORD-002"}, keys)
}

func TestFrame_Scan_cancelledContext(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen int
	err := f.Scan(ctx, func(row *Row) bool {
		seen++
		return true
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, seen)
}

func TestFrame_ScanRange(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	collect := func(from, to string) []string {
		var keys []string
		err := f.ScanRange(context.Background(), from, to, func(row *Row) bool {
			keys = append(keys, row.Key)
			return true
		})
		require.NoError(t, err)
		return keys
	}

	t.Run("closed range excludes upper bound", func(t *testing.T) {
		assert.Equal(t, []string{"ORD-002", "ORD-003"}, collect("ORD-002", "ORD-004"))
	})

	t.Run("open upper bound", func(t *testing.T) {
		assert.Equal(t, []string{"ORD-004", "ORD-005"}, collect("ORD-004", ""))
	})

	t.Run("both bounds open", func(t *testing.T) {
		assert.Len(t, collect("", ""), 5)
	})

	t.Run("empty range", func(t *testing.T) {
		assert.Empty(t, collect("ORD-009", ""))
	})
}

func TestFrame_ScanDescend(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	var keys []string
	err := f.ScanDescend(context.Background(), func(row *Row) bool {
		keys = append(keys, row.Key)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-005", "ORD-004", "ORD-003", "ORD-002", "ORD-001"}, keys)
}

func TestFrame_BuildRow(t *testing.T) {
	t.Parallel()

	f := NewFrame("orders", seedSchema())

	t.Run("key and stamp from columns", func(t *testing.T) {
		row := f.BuildRow([]string{"ORD-009", "east", "12.5", "2025-03-09"}, 42)
		assert.Equal(t, "ORD-009", row.Key)
		assert.Equal(t, 2025, row.Stamp.Year())
		assert.Equal(t, 12.5, row.Cell(2).Float64())
	})

	t.Run("ordinal key when id cell is empty", func(t *testing.T) {
		row := f.BuildRow([]string{"", "east", "1", "2025-03-09"}, 7)
		assert.Equal(t, "00000007", row.Key)
	})

	t.Run("short record pads with nulls", func(t *testing.T) {
		row := f.BuildRow([]string{"ORD-010"}, 0)
		require.Len(t, row.Cells, 4)
		assert.True(t, row.Cell(1).IsNull())
		assert.True(t, row.Stamp.IsZero())
	})

	t.Run("no key column synthesizes ordinal", func(t *testing.T) {
		plain := NewFrame("metrics", NewSchema([]Column{
			{Name: "name", Kind: KindString},
			{Name: "value", Kind: KindFloat},
		}))
		row := plain.BuildRow([]string{"cpu", "0.75"}, 3)
		assert.Equal(t, "00000003", row.Key)
		assert.True(t, row.Stamp.IsZero())
	})
}

func TestRow_Clone(t *testing.T) {
	t.Parallel()

	orig := &Row{Key: "k", Stamp: seedStamp(1), Cells: []Value{String("a"), Int(1)}}
	clone := orig.Clone()

	clone.Cells[0] = String("changed")
	assert.Equal(t, "a", orig.Cell(0).String())
	assert.Equal(t, orig.Key, clone.Key)
	assert.Equal(t, orig.Stamp, clone.Stamp)
}

func TestRow_Cell_outOfRange(t *testing.T) {
	t.Parallel()

	row := &Row{Key: "k", Cells: []Value{Int(1)}}
	assert.True(t, row.Cell(5).IsNull())
	assert.True(t, row.Cell(-1).IsNull())
}
