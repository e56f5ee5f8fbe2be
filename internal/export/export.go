// Package export renders query results into memory buffers that
// callers stream to files, stdout, or HTTP responses.
package export

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
)

// Format identifies an output encoding.
type Format string

const (
	// FormatCSV renders comma-separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSON renders a document with columns, rows, and counts.
	FormatJSON Format = "json"
)

// Formats lists the supported encodings.
func Formats() []Format {
	return []Format{FormatCSV, FormatJSON}
}

// ParseFormat maps a user-supplied name to a Format. A leading dot is
// tolerated so file extensions parse too.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", unknownFormat(s)
	}
}

// Exporter renders one result into a buffer.
type Exporter interface {
	// Format identifies the encoding.
	Format() Format
	// ContentType is the HTTP content type of rendered output.
	ContentType() string
	// Extension is the file extension including the dot.
	Extension() string
	// Render encodes the result.
	Render(res *dataset.Result) (*bytes.Buffer, error)
}

// For returns the exporter for a format.
func For(f Format) (Exporter, error) {
	switch f {
	case FormatCSV:
		return CSVExporter{}, nil
	case FormatJSON:
		return JSONExporter{}, nil
	default:
		return nil, unknownFormat(string(f))
	}
}

// WriteFile writes a rendered buffer to path.
func WriteFile(path string, buf *bytes.Buffer) error {
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return griderrors.ExportWriteError(path, err)
	}
	return nil
}

func unknownFormat(s string) error {
	return griderrors.WithSuggestion(griderrors.ErrExport,
		fmt.Sprintf("unknown export format: %s", s),
		"Supported formats: csv, json.")
}
