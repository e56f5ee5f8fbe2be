package dataset

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ColumnSummary holds per-column statistics.
type ColumnSummary struct {
	// Name and Kind identify the column.
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	// Count is the number of non-null cells; Nulls the rest.
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	// Distinct counts distinct rendered values.
	Distinct int `json:"distinct"`
	// Min and Max are the extreme values, rendered.
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
	// Numeric moments and quantiles, present when Kind is numeric and
	// the column has values.
	Mean   float64 `json:"mean,omitempty"`
	StdDev float64 `json:"stddev,omitempty"`
	P50    float64 `json:"p50,omitempty"`
	P90    float64 `json:"p90,omitempty"`
	P99    float64 `json:"p99,omitempty"`
}

// Summary holds statistics for every column of a frame.
type Summary struct {
	Frame   string          `json:"frame"`
	Rows    int             `json:"rows"`
	Version uint64          `json:"version"`
	TakenAt time.Time       `json:"taken_at"`
	Columns []ColumnSummary `json:"columns"`
}

// columnAccum accumulates one column during the summary scan.
type columnAccum struct {
	count    int
	nulls    int
	distinct map[string]struct{}
	min, max Value
	nums     []float64
}

// Summarize computes per-column statistics over all rows.
func (f *Frame) Summarize(ctx context.Context) (*Summary, error) {
	accums := make([]columnAccum, f.schema.Len())
	for i := range accums {
		accums[i].distinct = make(map[string]struct{})
	}

	err := f.Scan(ctx, func(row *Row) bool {
		for i := 0; i < f.schema.Len(); i++ {
			cell := row.Cell(i)
			acc := &accums[i]

			if cell.IsNull() {
				acc.nulls++
				continue
			}
			acc.count++
			acc.distinct[cell.String()] = struct{}{}

			if acc.count == 1 {
				acc.min, acc.max = cell, cell
			} else {
				if cell.Compare(acc.min) < 0 {
					acc.min = cell
				}
				if cell.Compare(acc.max) > 0 {
					acc.max = cell
				}
			}

			if f.schema.Column(i).Kind.Numeric() {
				acc.nums = append(acc.nums, cell.Float64())
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Frame:   f.name,
		Rows:    f.Len(),
		Version: f.version,
		TakenAt: time.Now(),
		Columns: make([]ColumnSummary, f.schema.Len()),
	}

	for i := 0; i < f.schema.Len(); i++ {
		col := f.schema.Column(i)
		acc := &accums[i]

		cs := ColumnSummary{
			Name:     col.Name,
			Kind:     col.Kind,
			Count:    acc.count,
			Nulls:    acc.nulls,
			Distinct: len(acc.distinct),
		}
		if acc.count > 0 {
			cs.Min = acc.min.String()
			cs.Max = acc.max.String()
		}
		if len(acc.nums) > 0 {
			sort.Float64s(acc.nums)
			cs.Mean = stat.Mean(acc.nums, nil)
			cs.P50 = stat.Quantile(0.5, stat.Empirical, acc.nums, nil)
			cs.P90 = stat.Quantile(0.9, stat.Empirical, acc.nums, nil)
			cs.P99 = stat.Quantile(0.99, stat.Empirical, acc.nums, nil)
			// StdDev needs two samples; with one it divides by zero.
			if len(acc.nums) > 1 {
				cs.StdDev = stat.StdDev(acc.nums, nil)
			}
		}
		summary.Columns[i] = cs
	}

	return summary, nil
}
