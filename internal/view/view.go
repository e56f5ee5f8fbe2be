// Package view provides saved query presets for gridwatch. A view
// pins a frame plus the filter, range, sort, and paging that were
// active when it was saved, so a table state can be reapplied later.
package view

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"gridwatch/internal/dataset"
)

// View is one saved preset.
type View struct {
	// ID is the unique identifier for the view (e.g., "VIEW-001").
	ID string `json:"id"`
	// Name is the display name shown in pickers.
	Name string `json:"name"`
	// Frame is the frame the query applies to.
	Frame string `json:"frame"`
	// Query is the saved table state.
	Query dataset.Query `json:"query"`
	// CreatedAt is when the view was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the view was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a view with current timestamps. The ID is left empty;
// Store.Add assigns one.
func New(name, frame string, q dataset.Query) *View {
	now := time.Now()
	return &View{
		Name:      name,
		Frame:     frame,
		Query:     q,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the view has the fields every consumer relies on.
func (v *View) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("view name is required")
	}
	if v.Frame == "" {
		return fmt.Errorf("view frame is required")
	}
	if v.Query.Limit < 0 {
		return fmt.Errorf("view limit must not be negative")
	}
	if v.Query.Offset < 0 {
		return fmt.Errorf("view offset must not be negative")
	}
	return nil
}

// Touch bumps the update timestamp.
func (v *View) Touch() {
	v.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the view.
func (v *View) Clone() *View {
	var cp View
	if err := copier.Copy(&cp, v); err != nil {
		panic("could not copy view: " + err.Error())
	}
	return &cp
}
