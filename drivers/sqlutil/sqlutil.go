// Package sqlutil adapts engines exposed through database/sql to the
// driver contract. It converts bound parameters to database/sql
// arguments, infers an arrow schema from result column metadata, and
// packs scanned rows into record batches of bounded size.
//
// Backends built on it supply a TypeMapper tuned to their engine's
// type names and a DSN; everything else is shared.
package sqlutil

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/values"
)

// Args converts bound parameters to database/sql arguments. Values the
// engine has no native binding for (128-bit integers, decimals, UUIDs,
// intervals) are bound through their canonical text form.
func Args(params values.Parameters) ([]any, error) {
	if params.IsEmpty() {
		return nil, nil
	}
	if names := params.Names(); len(names) > 0 {
		args := make([]any, 0, len(names))
		for _, name := range names {
			v, _ := params.Get(name)
			arg, err := sqlValue(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
			args = append(args, sql.Named(name, arg))
		}
		return args, nil
	}
	args := make([]any, params.Len())
	for i := range args {
		v, _ := params.At(i)
		arg, err := sqlValue(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		args[i] = arg
	}
	return args, nil
}

func sqlValue(v values.Value) (any, error) {
	switch v.Type() {
	case values.TypeNull:
		return nil, nil
	case values.TypeBool:
		return v.Bool()
	case values.TypeInt8, values.TypeInt16, values.TypeInt32, values.TypeInt64:
		return v.Int64()
	case values.TypeUInt8, values.TypeUInt16, values.TypeUInt32:
		u, err := v.Uint32()
		return int64(u), err
	case values.TypeUInt64:
		u, err := v.Uint64()
		if err != nil {
			return nil, err
		}
		if u > math.MaxInt64 {
			return v.String(), nil
		}
		return int64(u), nil
	case values.TypeFloat32:
		f, err := v.Float32()
		return float64(f), err
	case values.TypeFloat64:
		return v.Float64()
	case values.TypeString:
		return v.Text()
	case values.TypeBlob:
		return v.Bytes()
	case values.TypeDate32, values.TypeTimestamp:
		return v.Time()
	default:
		// Text fallback for types without a native binding.
		return v.String(), nil
	}
}

// ColumnType is the engine-independent description of a result column
// handed to a TypeMapper.
type ColumnType struct {
	Name         string
	DatabaseType string
	Nullable     bool
}

// TypeMapper maps an engine's column metadata to the arrow type its
// values are surfaced as. Returning nil falls back to utf8.
type TypeMapper interface {
	ArrowType(col ColumnType) arrow.DataType
}

// DefaultMapper covers the type names shared by most SQL engines.
type DefaultMapper struct{}

func (DefaultMapper) ArrowType(col ColumnType) arrow.DataType {
	name := strings.ToUpper(col.DatabaseType)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "BOOL", "BOOLEAN":
		return arrow.FixedWidthTypes.Boolean
	case "TINYINT", "INT1":
		return arrow.PrimitiveTypes.Int8
	case "SMALLINT", "INT2":
		return arrow.PrimitiveTypes.Int16
	case "INT", "INTEGER", "INT4", "MEDIUMINT":
		return arrow.PrimitiveTypes.Int32
	case "BIGINT", "INT8":
		return arrow.PrimitiveTypes.Int64
	case "UTINYINT":
		return arrow.PrimitiveTypes.Uint8
	case "USMALLINT":
		return arrow.PrimitiveTypes.Uint16
	case "UINTEGER":
		return arrow.PrimitiveTypes.Uint32
	case "UBIGINT":
		return arrow.PrimitiveTypes.Uint64
	case "REAL", "FLOAT", "FLOAT4":
		return arrow.PrimitiveTypes.Float32
	case "DOUBLE", "FLOAT8", "DOUBLE PRECISION":
		return arrow.PrimitiveTypes.Float64
	case "TEXT", "VARCHAR", "CHAR", "CLOB", "STRING", "NVARCHAR":
		return arrow.BinaryTypes.String
	case "BLOB", "BYTEA", "VARBINARY", "BINARY":
		return arrow.BinaryTypes.Binary
	case "DATE":
		return arrow.FixedWidthTypes.Date32
	case "TIME":
		return arrow.FixedWidthTypes.Time64us
	case "TIMESTAMP", "DATETIME", "TIMESTAMPTZ":
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	case "UUID":
		return arrow.BinaryTypes.String
	default:
		return nil
	}
}

// Schema infers the arrow schema of a result set from its column
// metadata.
func Schema(rows *sql.Rows, mapper TypeMapper) (*arrow.Schema, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		ct := ColumnType{
			Name:         col.Name(),
			DatabaseType: col.DatabaseTypeName(),
		}
		if nullable, ok := col.Nullable(); ok {
			ct.Nullable = nullable
		} else {
			ct.Nullable = true
		}
		dt := mapper.ArrowType(ct)
		if dt == nil {
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: ct.Name, Type: dt, Nullable: ct.Nullable}
	}
	return arrow.NewSchema(fields, nil), nil
}

// NewBatchReader wraps a result set as a batch reader producing record
// batches of at most maxRows rows. The reader takes ownership of rows.
func NewBatchReader(rows *sql.Rows, mapper TypeMapper, maxRows int) (driver.BatchReader, error) {
	schema, err := Schema(rows, mapper)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = 1024
	}
	return &batchReader{rows: rows, schema: schema, maxRows: maxRows}, nil
}

type batchReader struct {
	rows    *sql.Rows
	schema  *arrow.Schema
	maxRows int
	done    bool
}

func (r *batchReader) Schema() *arrow.Schema { return r.schema }

func (r *batchReader) Next() (arrow.Record, error) {
	if r.done {
		return nil, io.EOF
	}
	builder := array.NewRecordBuilder(memory.DefaultAllocator, r.schema)
	defer builder.Release()

	n := 0
	dest := make([]any, len(r.schema.Fields()))
	for i := range dest {
		dest[i] = new(any)
	}
	for n < r.maxRows {
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				return nil, err
			}
			if err := r.rows.Close(); err != nil {
				return nil, err
			}
			break
		}
		if err := r.rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, field := range r.schema.Fields() {
			cell := *(dest[i].(*any))
			if err := appendCell(builder.Field(i), field, cell); err != nil {
				return nil, fmt.Errorf("column %q: %w", field.Name, err)
			}
		}
		n++
	}
	if n == 0 {
		return nil, io.EOF
	}
	return builder.NewRecord(), nil
}

func (r *batchReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	return r.rows.Close()
}

// appendCell coerces one scanned cell into the column's builder.
// database/sql drivers surface a narrow set of Go types; anything that
// does not fit the declared column type is a mapper bug.
func appendCell(b array.Builder, field arrow.Field, cell any) error {
	if cell == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.BooleanBuilder:
		switch c := cell.(type) {
		case bool:
			b.Append(c)
		case int64:
			b.Append(c != 0)
		default:
			return cellError(field, cell)
		}
	case *array.Int8Builder:
		c, ok := asInt64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(int8(c))
	case *array.Int16Builder:
		c, ok := asInt64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(int16(c))
	case *array.Int32Builder:
		c, ok := asInt64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(int32(c))
	case *array.Int64Builder:
		c, ok := asInt64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(c)
	case *array.Uint8Builder:
		c, ok := asUint64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(uint8(c))
	case *array.Uint16Builder:
		c, ok := asUint64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(uint16(c))
	case *array.Uint32Builder:
		c, ok := asUint64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(uint32(c))
	case *array.Uint64Builder:
		c, ok := asUint64(cell)
		if !ok {
			return cellError(field, cell)
		}
		b.Append(c)
	case *array.Float32Builder:
		switch c := cell.(type) {
		case float64:
			b.Append(float32(c))
		case float32:
			b.Append(c)
		default:
			return cellError(field, cell)
		}
	case *array.Float64Builder:
		switch c := cell.(type) {
		case float64:
			b.Append(c)
		case float32:
			b.Append(float64(c))
		case int64:
			b.Append(float64(c))
		default:
			return cellError(field, cell)
		}
	case *array.StringBuilder:
		switch c := cell.(type) {
		case string:
			b.Append(c)
		case []byte:
			b.Append(string(c))
		case time.Time:
			b.Append(c.Format(time.RFC3339Nano))
		default:
			b.Append(fmt.Sprint(c))
		}
	case *array.BinaryBuilder:
		switch c := cell.(type) {
		case []byte:
			b.Append(c)
		case string:
			b.Append([]byte(c))
		default:
			return cellError(field, cell)
		}
	case *array.Date32Builder:
		switch c := cell.(type) {
		case time.Time:
			b.Append(arrow.Date32FromTime(c))
		case string:
			t, err := time.Parse("2006-01-02", c)
			if err != nil {
				return cellError(field, cell)
			}
			b.Append(arrow.Date32FromTime(t))
		default:
			return cellError(field, cell)
		}
	case *array.Time64Builder:
		switch c := cell.(type) {
		case time.Time:
			midnight := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, c.Location())
			b.Append(arrow.Time64(c.Sub(midnight) / time.Microsecond))
		case int64:
			b.Append(arrow.Time64(c))
		default:
			return cellError(field, cell)
		}
	case *array.TimestampBuilder:
		switch c := cell.(type) {
		case time.Time:
			b.Append(arrow.Timestamp(c.UnixMicro()))
		case int64:
			b.Append(arrow.Timestamp(c))
		default:
			return cellError(field, cell)
		}
	default:
		return cellError(field, cell)
	}
	return nil
}

func asInt64(cell any) (int64, bool) {
	switch c := cell.(type) {
	case int64:
		return c, true
	case int32:
		return int64(c), true
	case int:
		return int64(c), true
	case uint64:
		return int64(c), true
	case bool:
		if c {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func asUint64(cell any) (uint64, bool) {
	switch c := cell.(type) {
	case uint64:
		return c, true
	case int64:
		if c < 0 {
			return 0, false
		}
		return uint64(c), true
	default:
		return 0, false
	}
}

func cellError(field arrow.Field, cell any) error {
	return fmt.Errorf("cannot store %T into %s column", cell, field.Type)
}
