package dataset

import (
	"strings"
)

// Column is one named, typed column.
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema is the ordered column list of a frame.
type Schema struct {
	cols  []Column
	index map[string]int
}

// NewSchema builds a schema from an ordered column list.
func NewSchema(cols []Column) Schema {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[strings.ToLower(c.Name)] = i
	}
	return Schema{cols: cols, index: index}
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.cols) }

// Columns returns the ordered column list.
func (s Schema) Columns() []Column { return s.cols }

// Column returns the column at position i.
func (s Schema) Column(i int) Column { return s.cols[i] }

// Lookup finds a column by case-insensitive name.
func (s Schema) Lookup(name string) (int, bool) {
	i, ok := s.index[strings.ToLower(name)]
	return i, ok
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// KeyColumn returns the index of the column rows are keyed by: the
// first column named like an identifier. Returns -1 when keys must be
// synthesized.
func (s Schema) KeyColumn() int {
	for i, c := range s.cols {
		name := strings.ToLower(c.Name)
		if name == "id" || name == "key" || strings.HasSuffix(name, "_id") {
			return i
		}
	}
	return -1
}

// TimeColumn returns the index of the first time-kinded column, the
// column row stamps are drawn from. Returns -1 when the frame has none.
func (s Schema) TimeColumn() int {
	for i, c := range s.cols {
		if c.Kind == KindTime {
			return i
		}
	}
	return -1
}

// InferSchema derives column kinds from a header and a sample of raw
// records. A column's kind is the narrowest that fits every non-empty
// sampled cell; all-empty columns default to string.
func InferSchema(header []string, records [][]string) Schema {
	cols := make([]Column, len(header))
	seen := make([]bool, len(header))

	for i, name := range header {
		cols[i] = Column{Name: strings.TrimSpace(name), Kind: KindString}
	}

	for _, record := range records {
		for i := 0; i < len(header) && i < len(record); i++ {
			kind, ok := classify(record[i])
			if !ok {
				continue
			}
			if !seen[i] {
				cols[i].Kind = kind
				seen[i] = true
				continue
			}
			cols[i].Kind = widen(cols[i].Kind, kind)
		}
	}

	return NewSchema(cols)
}
