package view

import (
	"testing"
	"time"

	"gridwatch/internal/calendar"
	"gridwatch/internal/dataset"
)

func TestNew(t *testing.T) {
	q := dataset.Query{Filter: "east", SortBy: "amount", Desc: true, Limit: 50}
	v := New("East orders", "orders", q)

	if v.ID != "" {
		t.Errorf("ID = %q, want empty until stored", v.ID)
	}
	if v.Name != "East orders" {
		t.Errorf("Name = %q, want %q", v.Name, "East orders")
	}
	if v.Frame != "orders" {
		t.Errorf("Frame = %q, want %q", v.Frame, "orders")
	}
	if v.Query.Filter != "east" {
		t.Errorf("Query.Filter = %q, want %q", v.Query.Filter, "east")
	}
	if v.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if v.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestView_Validate(t *testing.T) {
	tests := []struct {
		name    string
		view    *View
		wantErr bool
	}{
		{
			name: "valid view",
			view: New("All orders", "orders", dataset.Query{}),
		},
		{
			name:    "missing name",
			view:    New("", "orders", dataset.Query{}),
			wantErr: true,
		},
		{
			name:    "missing frame",
			view:    New("All orders", "", dataset.Query{}),
			wantErr: true,
		},
		{
			name:    "negative limit",
			view:    New("All orders", "orders", dataset.Query{Limit: -1}),
			wantErr: true,
		},
		{
			name:    "negative offset",
			view:    New("All orders", "orders", dataset.Query{Offset: -5}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestView_Touch(t *testing.T) {
	v := New("All orders", "orders", dataset.Query{})
	before := v.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	v.Touch()

	if !v.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt = %v, want after %v", v.UpdatedAt, before)
	}
}

func TestView_Clone(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	v := New("March east", "orders", dataset.Query{
		Filter: "east",
		Range:  calendar.NewRange(from, to),
		SortBy: "amount",
		Desc:   true,
		Limit:  100,
	})
	v.ID = "VIEW-001"

	clone := v.Clone()

	if clone == v {
		t.Fatal("clone should be a different instance")
	}
	if clone.ID != v.ID || clone.Name != v.Name || clone.Frame != v.Frame {
		t.Error("clone should copy identity fields")
	}
	if clone.Query.Filter != "east" || !clone.Query.Desc {
		t.Error("clone should copy the query")
	}
	if !clone.Query.Range.From.Equal(from) || !clone.Query.Range.To.Equal(to) {
		t.Error("clone should copy the range")
	}

	clone.Name = "changed"
	clone.Query.Filter = "west"
	if v.Name != "March east" || v.Query.Filter != "east" {
		t.Error("mutating the clone should not affect the original")
	}
}
