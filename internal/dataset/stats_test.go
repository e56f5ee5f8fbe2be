package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Summarize(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	sum, err := f.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "orders", sum.Frame)
	assert.Equal(t, 5, sum.Rows)
	assert.Equal(t, f.Version(), sum.Version)
	assert.False(t, sum.TakenAt.IsZero())
	require.Len(t, sum.Columns, 4)

	t.Run("string column", func(t *testing.T) {
		region := sum.Columns[1]
		assert.Equal(t, "region", region.Name)
		assert.Equal(t, KindString, region.Kind)
		assert.Equal(t, 5, region.Count)
		assert.Equal(t, 0, region.Nulls)
		assert.Equal(t, 3, region.Distinct)
		assert.Equal(t, "east", region.Min)
		assert.Equal(t, "west", region.Max)
		assert.Zero(t, region.Mean)
	})

	t.Run("numeric column", func(t *testing.T) {
		amount := sum.Columns[2]
		assert.Equal(t, "amount", amount.Name)
		assert.Equal(t, 4, amount.Count)
		assert.Equal(t, 1, amount.Nulls)
		assert.Equal(t, 3, amount.Distinct)
		assert.Equal(t, "20", amount.Min)
		assert.Equal(t, "100.5", amount.Max)

		// Values 20, 20, 55.25, 100.5.
		assert.InDelta(t, 48.9375, amount.Mean, 0.0001)
		assert.InDelta(t, 38.1807, amount.StdDev, 0.001)
		assert.Equal(t, 20.0, amount.P50)
		assert.Equal(t, 100.5, amount.P90)
		assert.Equal(t, 100.5, amount.P99)
	})

	t.Run("time column", func(t *testing.T) {
		created := sum.Columns[3]
		assert.Equal(t, 4, created.Count)
		assert.Equal(t, 1, created.Nulls)
		assert.Equal(t, "2025-03-01T10:00:00Z", created.Min)
		assert.Equal(t, "2025-03-05T10:00:00Z", created.Max)
		assert.Zero(t, created.Mean)
	})
}

func TestFrame_Summarize_emptyFrame(t *testing.T) {
	t.Parallel()

	f := NewFrame("empty", seedSchema())

	sum, err := f.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Rows)
	require.Len(t, sum.Columns, 4)
	for _, cs := range sum.Columns {
		assert.Zero(t, cs.Count)
		assert.Zero(t, cs.Nulls)
		assert.Zero(t, cs.Distinct)
		assert.Empty(t, cs.Min)
		assert.Empty(t, cs.Max)
	}
}

func TestFrame_Summarize_singleValue(t *testing.T) {
	t.Parallel()

	f := NewFrame("single", NewSchema([]Column{
		{Name: "id", Kind: KindString},
		{Name: "v", Kind: KindInt},
	}))
	require.NoError(t, f.Append(&Row{Key: "a", Cells: []Value{String("a"), Int(9)}}))

	sum, err := f.Summarize(context.Background())
	require.NoError(t, err)

	v := sum.Columns[1]
	assert.Equal(t, 1, v.Count)
	assert.Equal(t, 9.0, v.Mean)
	assert.Equal(t, 9.0, v.P50)
	// One sample has no spread.
	assert.Zero(t, v.StdDev)
}

func TestFrame_Summarize_cancelledContext(t *testing.T) {
	t.Parallel()

	f := seedOrders(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Summarize(ctx)
	require.Error(t, err)
}
