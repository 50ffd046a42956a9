// Package ingest loads uploaded files into table view models.
//
// CSV and TSV text is parsed with cleaning for BOMs and invalid UTF-8.
// Parquet files are read through Arrow.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/parquet"

	"github.com/JonMunkholm/tableview/internal/arrowsource"
	"github.com/JonMunkholm/tableview/internal/core"
)

// Format identifies an upload file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
)

// Options controls how a file is loaded.
type Options struct {
	// Key names the key columns of the resulting model.
	Key []string

	// Comma overrides the CSV field delimiter.
	Comma rune

	// MaxBytes limits the bytes read. Zero means no limit.
	MaxBytes int64
}

// DetectFormat picks a format from a file name extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	}
	return "", fmt.Errorf("%q: %w", name, core.ErrUnsupportedFormat)
}

// Load reads a file named name from r, choosing the parser by extension.
func Load(ctx context.Context, name string, r io.Reader, opts Options) (*core.BasicModel, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatTSV:
		opts.Comma = '\t'
		return ReadCSV(r, opts)
	case FormatParquet:
		ras, ok := r.(parquet.ReaderAtSeeker)
		if !ok {
			data, err := io.ReadAll(Limit(r, opts.MaxBytes))
			if err != nil {
				return nil, fmt.Errorf("read parquet: %w", err)
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("read parquet: %w", core.ErrEmptyFile)
			}
			ras = bytes.NewReader(data)
		}
		return arrowsource.ReadParquet(ctx, ras, opts.Key...)
	default:
		return ReadCSV(r, opts)
	}
}
