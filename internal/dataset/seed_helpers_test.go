package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedStamp(day int) time.Time {
	return time.Date(2025, time.March, day, 10, 0, 0, 0, time.UTC)
}

func seedSchema() Schema {
	return NewSchema([]Column{
		{Name: "id", Kind: KindString},
		{Name: "region", Kind: KindString},
		{Name: "amount", Kind: KindFloat},
		{Name: "created_at", Kind: KindTime},
	})
}

// seedOrders builds a small orders frame:
//
//	ORD-001 east  100.5  Mar 1
//	ORD-002 west   20    Mar 2
//	ORD-003 east   null  Mar 3
//	ORD-004 north  55.25 no stamp
//	ORD-005 west   20    Mar 5
func seedOrders(t *testing.T) *Frame {
	t.Helper()

	f := NewFrame("orders", seedSchema())

	rows := []*Row{
		{Key: "ORD-001", Stamp: seedStamp(1), Cells: []Value{
			String("ORD-001"), String("east"), Float(100.5), Time(seedStamp(1)),
		}},
		{Key: "ORD-002", Stamp: seedStamp(2), Cells: []Value{
			String("ORD-002"), String("west"), Float(20), Time(seedStamp(2)),
		}},
		{Key: "ORD-003", Stamp: seedStamp(3), Cells: []Value{
			String("ORD-003"), String("east"), Null(KindFloat), Time(seedStamp(3)),
		}},
		{Key: "ORD-004", Cells: []Value{
			String("ORD-004"), String("north"), Float(55.25), Null(KindTime),
		}},
		{Key: "ORD-005", Stamp: seedStamp(5), Cells: []Value{
			String("ORD-005"), String("west"), Float(20), Time(seedStamp(5)),
		}},
	}
	for _, row := range rows {
		require.NoError(t, f.Append(row))
	}

	return f
}

func resultKeys(res *Result) []string {
	keys := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		keys[i] = row.Key
	}
	return keys
}
