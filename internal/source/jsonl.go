package source

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
)

// JSONLDecoder decodes JSON-lines files: one flat object per line.
// Columns are the union of field names in first-seen order. Nested
// objects and arrays are kept as their raw JSON text.
type JSONLDecoder struct{}

// Name returns the decoder identifier.
func (JSONLDecoder) Name() string { return "jsonl" }

// Extensions returns the extensions this decoder claims.
func (JSONLDecoder) Extensions() []string { return []string{".jsonl", ".ndjson"} }

// Decode reads the file into a frame.
func (JSONLDecoder) Decode(path string, opts Options) (*dataset.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, griderrors.SourceReadError(path, err)
	}

	var (
		fields []string
		index  = make(map[string]int)
		lines  []map[string]string
	)

	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, griderrors.SourceParseError(path, i+1, errors.New("invalid json"))
		}
		parsed := gjson.ParseBytes(line)
		if !parsed.IsObject() {
			return nil, griderrors.SourceParseError(path, i+1, errors.New("line is not a json object"))
		}

		cells := make(map[string]string)
		parsed.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if _, ok := index[name]; !ok {
				index[name] = len(fields)
				fields = append(fields, name)
			}
			cells[name] = rawCell(value)
			return true
		})
		lines = append(lines, cells)
	}

	records := make([][]string, len(lines))
	for i, cells := range lines {
		record := make([]string, len(fields))
		for name, cell := range cells {
			record[index[name]] = cell
		}
		records[i] = record
	}

	sample := records
	if len(sample) > opts.sampleRows() {
		sample = sample[:opts.sampleRows()]
	}

	name := FrameName(path)
	frame := dataset.NewFrame(name, dataset.InferSchema(fields, sample))
	frame.SetBytes(int64(len(data)))

	for i, record := range records {
		row := frame.BuildRow(record, i)
		if err := frame.Append(row); err != nil {
			return nil, griderrors.DuplicateKey(name, row.Key)
		}
	}

	return frame, nil
}

// rawCell renders a gjson value as the raw cell text fed to schema
// inference and parsing.
func rawCell(value gjson.Result) string {
	switch {
	case value.Type == gjson.Null:
		return ""
	case value.IsObject() || value.IsArray():
		return value.Raw
	default:
		return value.String()
	}
}
