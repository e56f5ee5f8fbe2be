package source

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
)

// CSVDecoder decodes comma (or tab) separated files with a header row.
type CSVDecoder struct{}

// Name returns the decoder identifier.
func (CSVDecoder) Name() string { return "csv" }

// Extensions returns the extensions this decoder claims.
func (CSVDecoder) Extensions() []string { return []string{".csv", ".tsv"} }

// Decode reads the file into a frame. The first record is the header;
// column kinds are inferred from a bounded sample of the records.
func (d CSVDecoder) Decode(path string, opts Options) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, griderrors.SourceReadError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, griderrors.SourceReadError(path, err)
	}

	reader := csv.NewReader(f)
	reader.Comma = d.delimiter(path, opts)
	// Leave FieldsPerRecord at zero so ragged records fail with the
	// offending line number.

	records, err := reader.ReadAll()
	if err != nil {
		return nil, griderrors.SourceParseError(path, parseErrorLine(err), err)
	}
	if len(records) == 0 {
		return nil, griderrors.SourceParseError(path, 0, errors.New("missing header row"))
	}

	header, rows := records[0], records[1:]

	sample := rows
	if len(sample) > opts.sampleRows() {
		sample = sample[:opts.sampleRows()]
	}

	name := FrameName(path)
	frame := dataset.NewFrame(name, dataset.InferSchema(header, sample))
	frame.SetBytes(info.Size())

	for i, record := range rows {
		row := frame.BuildRow(record, i)
		if err := frame.Append(row); err != nil {
			return nil, griderrors.DuplicateKey(name, row.Key)
		}
	}

	return frame, nil
}

// delimiter picks the field separator: explicit option first, tab for
// .tsv files, comma otherwise.
func (CSVDecoder) delimiter(path string, opts Options) rune {
	if opts.Delimiter != 0 {
		return opts.Delimiter
	}
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseErrorLine extracts the 1-based line number from a csv parse
// error, or 0 when the error carries none.
func parseErrorLine(err error) int {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line
	}
	return 0
}
