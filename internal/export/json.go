package export

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"gridwatch/internal/dataset"
)

// JSONExporter renders results as an indented document: column list,
// match count, and one object per row with typed values.
type JSONExporter struct{}

// jsonDocument is the rendered envelope. Row objects key cells by
// column name; the columns array preserves display order.
type jsonDocument struct {
	Frame        string           `json:"frame"`
	Version      uint64           `json:"version"`
	TotalMatched int              `json:"total_matched"`
	Columns      []dataset.Column `json:"columns"`
	Rows         []map[string]any `json:"rows"`
}

func (JSONExporter) Format() Format { return FormatJSON }

func (JSONExporter) ContentType() string { return "application/json" }

func (JSONExporter) Extension() string { return ".json" }

func (JSONExporter) Render(res *dataset.Result) (*bytes.Buffer, error) {
	doc := jsonDocument{
		Frame:        res.Frame,
		Version:      res.Version,
		TotalMatched: res.TotalMatched,
		Columns:      res.Schema.Columns(),
		Rows:         make([]map[string]any, 0, len(res.Rows)),
	}

	names := res.Schema.Names()
	for _, row := range res.Rows {
		obj := make(map[string]any, len(names))
		for i, name := range names {
			obj[name] = cellValue(row.Cell(i))
		}
		doc.Rows = append(doc.Rows, obj)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding json")
	}
	return bytes.NewBuffer(append(data, '\n')), nil
}

// cellValue maps a cell to its JSON representation, keeping numbers
// numeric and nulls null.
func cellValue(v dataset.Value) any {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case dataset.KindInt:
		return v.Int64()
	case dataset.KindFloat:
		return v.Float64()
	case dataset.KindBool:
		return v.Bool()
	case dataset.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return v.String()
	}
}
