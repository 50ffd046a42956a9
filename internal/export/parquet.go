package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/tableview/internal/core"
)

// WriteParquet writes the view as a Snappy-compressed Parquet file with one
// string column per visible column.
func WriteParquet(w io.Writer, m core.Model, res core.Results) error {
	fields := make([]arrow.Field, len(res.ColumnIndices))
	for i, j := range res.ColumnIndices {
		fields[i] = arrow.Field{Name: m.HeaderText(j), Type: arrow.BinaryTypes.String}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	rows := res.DataRows()
	for i, j := range res.ColumnIndices {
		sb := b.Field(i).(*array.StringBuilder)
		sb.Reserve(len(rows))
		for _, row := range rows {
			sb.Append(m.CellText(row, j))
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fw, err := pqarrow.NewFileWriter(schema, w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
