// Package arrowsource loads Apache Arrow tables and Parquet files as table
// view models.
//
// Columnar data is materialized into a core.BasicModel with every value
// formatted as text, so cell edits and key upserts behave exactly as for CSV
// uploads.
package arrowsource

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/tableview/internal/core"
)

// readChunk is the number of rows materialized per record batch.
const readChunk = 64 * 1024

// ReadParquet reads a Parquet file into a model.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker, keyHeaders ...string) (*core.BasicModel, error) {
	mem := memory.NewGoAllocator()

	pf, err := file.NewParquetReader(r, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: readChunk}, mem)
	if err != nil {
		return nil, fmt.Errorf("open arrow reader: %w", err)
	}

	table, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read parquet table: %w", err)
	}
	defer table.Release()

	return FromTable(table, keyHeaders...)
}

// FromTable copies an Arrow table into a model. keyHeaders names the key
// columns, as for core.NewBasicModel.
func FromTable(table arrow.Table, keyHeaders ...string) (*core.BasicModel, error) {
	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}

	model, err := core.NewBasicModel(headers, keyHeaders...)
	if err != nil {
		return nil, fmt.Errorf("arrow table: %w", err)
	}

	tr := array.NewTableReader(table, readChunk)
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		cols := rec.Columns()
		for i := 0; i < int(rec.NumRows()); i++ {
			row := make([]string, len(cols))
			for j, col := range cols {
				row[j] = FormatValue(col, i)
			}
			if err := model.InsertRow(row); err != nil {
				return nil, fmt.Errorf("arrow table: %w", err)
			}
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read arrow table: %w", err)
	}

	return model, nil
}

// FormatValue renders the value at pos as cell text. Nulls are empty.
func FormatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch a := col.(type) {
	case *array.String:
		return a.Value(pos)
	case *array.LargeString:
		return a.Value(pos)
	case *array.Binary:
		return string(a.Value(pos))
	case *array.Boolean:
		return strconv.FormatBool(a.Value(pos))
	case *array.Int8:
		return strconv.FormatInt(int64(a.Value(pos)), 10)
	case *array.Int16:
		return strconv.FormatInt(int64(a.Value(pos)), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(pos)), 10)
	case *array.Int64:
		return strconv.FormatInt(a.Value(pos), 10)
	case *array.Uint8:
		return strconv.FormatUint(uint64(a.Value(pos)), 10)
	case *array.Uint16:
		return strconv.FormatUint(uint64(a.Value(pos)), 10)
	case *array.Uint32:
		return strconv.FormatUint(uint64(a.Value(pos)), 10)
	case *array.Uint64:
		return strconv.FormatUint(a.Value(pos), 10)
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(pos)), 'f', -1, 32)
	case *array.Float64:
		return strconv.FormatFloat(a.Value(pos), 'f', -1, 64)
	case *array.Date32:
		return a.Value(pos).ToTime().Format("2006-01-02")
	case *array.Date64:
		return a.Value(pos).ToTime().Format("2006-01-02")
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(pos).ToTime(unit).Format("2006-01-02 15:04:05.999999999")
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return a.Value(pos).ToString(scale)
	default:
		return col.ValueStr(pos)
	}
}
