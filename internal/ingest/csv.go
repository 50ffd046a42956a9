package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/tableview/internal/core"
)

// ReadCSV parses delimited text into a BasicModel. The first record is the
// header row. Blank lines are skipped. Rows whose width differs from the
// header are rejected with the line number.
func ReadCSV(r io.Reader, opts Options) (*core.BasicModel, error) {
	cr := csv.NewReader(Clean(Limit(r, opts.MaxBytes)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv: %w", core.ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = CleanHeader(h)
	}

	model, err := core.NewBasicModel(header, opts.Key...)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if isEmptyRecord(record) {
			continue
		}
		if err := model.InsertRow(record); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
	}

	return model, nil
}

// CleanHeader trims whitespace and spreadsheet formula wrapping (="x") from
// a header cell.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

func isEmptyRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
