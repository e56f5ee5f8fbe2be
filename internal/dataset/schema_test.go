package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchema(t *testing.T) {
	t.Parallel()

	header := []string{"id", "region", "amount", "count", "active", "created_at", "note"}
	records := [][]string{
		{"ORD-1", "east", "10.5", "3", "true", "2025-03-01", ""},
		{"ORD-2", "west", "11", "4", "false", "2025-03-02", "rush"},
	}

	schema := InferSchema(header, records)
	require.Equal(t, 7, schema.Len())

	want := []Kind{
		KindString, // id
		KindString, // region
		KindFloat,  // amount: float then int widens to float
		KindInt,    // count
		KindBool,   // active
		KindTime,   // created_at
		KindString, // note: empty cell skipped, then text
	}
	for i, kind := range want {
		assert.Equal(t, kind, schema.Column(i).Kind, schema.Column(i).Name)
	}
}

func TestInferSchema_conflictCollapsesToString(t *testing.T) {
	t.Parallel()

	schema := InferSchema([]string{"v"}, [][]string{{"5"}, {"abc"}})
	assert.Equal(t, KindString, schema.Column(0).Kind)
}

func TestInferSchema_allEmptyColumnDefaultsToString(t *testing.T) {
	t.Parallel()

	schema := InferSchema([]string{"v"}, [][]string{{""}, {""}})
	assert.Equal(t, KindString, schema.Column(0).Kind)
}

func TestInferSchema_raggedRecordsIgnoreMissingCells(t *testing.T) {
	t.Parallel()

	schema := InferSchema([]string{"a", "b"}, [][]string{{"1"}, {"2", "3.5"}})
	assert.Equal(t, KindInt, schema.Column(0).Kind)
	assert.Equal(t, KindFloat, schema.Column(1).Kind)
}

func TestInferSchema_trimsHeaderNames(t *testing.T) {
	t.Parallel()

	schema := InferSchema([]string{" id ", "name"}, nil)
	assert.Equal(t, "id", schema.Column(0).Name)

	i, ok := schema.Lookup("ID")
	require.True(t, ok)
	assert.Equal(t, 0, i)
}

func TestSchema_Lookup(t *testing.T) {
	t.Parallel()

	schema := seedSchema()

	i, ok := schema.Lookup("Region")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = schema.Lookup("nope")
	assert.False(t, ok)
}

func TestSchema_KeyColumn(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		header []string
		want   int
	}{
		{"id column", []string{"id", "name"}, 0},
		{"key column", []string{"name", "key"}, 1},
		{"suffix match", []string{"name", "order_id"}, 1},
		{"uppercase", []string{"ID", "name"}, 0},
		{"none", []string{"name", "value"}, -1},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cols := make([]Column, len(tc.header))
			for i, name := range tc.header {
				cols[i] = Column{Name: name, Kind: KindString}
			}
			assert.Equal(t, tc.want, NewSchema(cols).KeyColumn())
		})
	}
}

func TestSchema_TimeColumn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, seedSchema().TimeColumn())

	noTime := NewSchema([]Column{{Name: "a", Kind: KindInt}})
	assert.Equal(t, -1, noTime.TimeColumn())
}

func TestSchema_Names(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"id", "region", "amount", "created_at"},
		seedSchema().Names())
}
