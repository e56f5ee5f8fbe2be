package export

import (
	"bytes"
	"encoding/csv"

	"github.com/pkg/errors"

	"gridwatch/internal/dataset"
)

// CSVExporter renders results as CSV with a header row. Cells render
// the way the dashboard shows them: RFC 3339 times, shortest-form
// floats, empty strings for nulls.
type CSVExporter struct{}

func (CSVExporter) Format() Format { return FormatCSV }

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (CSVExporter) Extension() string { return ".csv" }

func (CSVExporter) Render(res *dataset.Result) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write(res.Schema.Names()); err != nil {
		return nil, errors.Wrap(err, "writing csv header")
	}

	rec := make([]string, res.Schema.Len())
	for _, row := range res.Rows {
		for i := range rec {
			rec[i] = row.Cell(i).String()
		}
		if err := w.Write(rec); err != nil {
			return nil, errors.Wrapf(err, "writing row %s", row.Key)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing csv")
	}
	return buf, nil
}
