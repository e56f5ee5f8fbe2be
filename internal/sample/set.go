package sample

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"gridwatch/internal/dataset"
)

// Set is one generated table before it becomes a frame or a file.
type Set struct {
	Name    string
	Header  []string
	Records [][]string
}

// Frame builds the set into an in-memory frame, inferring column
// kinds the same way the file loaders do.
func (s *Set) Frame() (*dataset.Frame, error) {
	schema := dataset.InferSchema(s.Header, s.Records)
	f := dataset.NewFrame(s.Name, schema)
	var size int64
	for i, rec := range s.Records {
		row := f.BuildRow(rec, i)
		if err := f.Append(row); err != nil {
			return nil, err
		}
		for _, cell := range rec {
			size += int64(len(cell))
		}
	}
	f.SetBytes(size)
	return f, nil
}

// WriteCSV materializes the set as <dir>/<name>.csv and returns the
// path. Existing files are overwritten so regenerating a demo
// workspace is idempotent.
func (s *Set) WriteCSV(dir string) (string, error) {
	path := filepath.Join(dir, s.Name+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	w := csv.NewWriter(file)
	if err := w.Write(s.Header); err != nil {
		file.Close()
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := w.WriteAll(s.Records); err != nil {
		file.Close()
		return "", errors.Wrapf(err, "writing %s", path)
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrapf(err, "closing %s", path)
	}
	return path, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

// formatAmount trims float noise to two decimals so generated files
// look like money, not doubles.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
