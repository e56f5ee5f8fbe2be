// Package source ingests data files into frames: format decoders, the
// decoder registry, the concurrent loader, and the filesystem watcher
// behind live reload.
package source

import (
	"path/filepath"
	"strings"

	"gridwatch/internal/dataset"
)

// DefaultSampleRows bounds how many records schema inference examines.
const DefaultSampleRows = 200

// Options configure decoding.
type Options struct {
	// Delimiter is the CSV field separator. Zero means comma, or tab
	// for .tsv files.
	Delimiter rune
	// SampleRows caps the records examined for schema inference.
	// Zero means DefaultSampleRows.
	SampleRows int
}

func (o Options) sampleRows() int {
	if o.SampleRows > 0 {
		return o.SampleRows
	}
	return DefaultSampleRows
}

// Decoder turns one data file into a frame.
type Decoder interface {
	// Name returns the unique identifier for this decoder (e.g., "csv").
	Name() string
	// Extensions returns the file extensions this decoder claims,
	// lowercase with leading dot.
	Extensions() []string
	// Decode reads the file at path into a frame.
	Decode(path string, opts Options) (*dataset.Frame, error)
}

// FrameName derives the frame name for a data file: the base name
// without extension, lowercased.
func FrameName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}
