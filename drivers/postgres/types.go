package postgres

import (
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/squill-app/squill-drivers/driver"
)

// schemaFromFields maps the row description of a prepared statement to
// an arrow schema. PostgreSQL does not expose column nullability in the
// row description, so every column is nullable. Types without a lossless
// arrow mapping surface through their canonical text form.
func schemaFromFields(fields []pgconn.FieldDescription) (*arrow.Schema, error) {
	if len(fields) == 0 {
		return arrow.NewSchema(nil, nil), nil
	}
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		out[i] = arrow.Field{Name: f.Name, Type: arrowTypeOf(f.DataTypeOID), Nullable: true}
	}
	return arrow.NewSchema(out, nil), nil
}

func arrowTypeOf(oid uint32) arrow.DataType {
	switch oid {
	case pgtype.BoolOID:
		return arrow.FixedWidthTypes.Boolean
	case pgtype.Int2OID:
		return arrow.PrimitiveTypes.Int16
	case pgtype.Int4OID:
		return arrow.PrimitiveTypes.Int32
	case pgtype.Int8OID:
		return arrow.PrimitiveTypes.Int64
	case pgtype.Float4OID:
		return arrow.PrimitiveTypes.Float32
	case pgtype.Float8OID:
		return arrow.PrimitiveTypes.Float64
	case pgtype.ByteaOID:
		return arrow.BinaryTypes.Binary
	case pgtype.DateOID:
		return arrow.FixedWidthTypes.Date32
	case pgtype.TimeOID:
		return arrow.FixedWidthTypes.Time64us
	case pgtype.TimestampOID, pgtype.TimestamptzOID:
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	case pgtype.IntervalOID:
		return arrow.FixedWidthTypes.MonthDayNanoInterval
	default:
		// text, varchar, name, numeric, uuid, json and everything else.
		return arrow.BinaryTypes.String
	}
}

type batchReader struct {
	rows    pgx.Rows
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
	for n < r.maxRows {
		if !r.rows.Next() {
			r.done = true
			r.rows.Close()
			if err := r.rows.Err(); err != nil {
				return nil, &driver.Error{Driver: DriverName, Err: err}
			}
			break
		}
		vals, err := r.rows.Values()
		if err != nil {
			return nil, &driver.Error{Driver: DriverName, Err: err}
		}
		for i, field := range r.schema.Fields() {
			if err := appendPg(builder.Field(i), field, vals[i]); err != nil {
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
	if !r.done {
		r.done = true
		r.rows.Close()
	}
	return nil
}

// appendPg coerces one pgx row value into the column's builder.
func appendPg(b array.Builder, field arrow.Field, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.BooleanBuilder:
		c, ok := v.(bool)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Int16Builder:
		c, ok := v.(int16)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Int32Builder:
		c, ok := v.(int32)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Int64Builder:
		c, ok := v.(int64)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Float32Builder:
		c, ok := v.(float32)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Float64Builder:
		c, ok := v.(float64)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.BinaryBuilder:
		c, ok := v.([]byte)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(c)
	case *array.Date32Builder:
		c, ok := v.(time.Time)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(arrow.Date32FromTime(c))
	case *array.Time64Builder:
		switch c := v.(type) {
		case pgtype.Time:
			b.Append(arrow.Time64(c.Microseconds))
		case time.Time:
			midnight := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, c.Location())
			b.Append(arrow.Time64(c.Sub(midnight) / time.Microsecond))
		default:
			return pgCellError(field, v)
		}
	case *array.TimestampBuilder:
		c, ok := v.(time.Time)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(arrow.Timestamp(c.UnixMicro()))
	case *array.MonthDayNanoIntervalBuilder:
		c, ok := v.(pgtype.Interval)
		if !ok {
			return pgCellError(field, v)
		}
		b.Append(arrow.MonthDayNanoInterval{
			Months:      c.Months,
			Days:        c.Days,
			Nanoseconds: c.Microseconds * int64(time.Microsecond),
		})
	case *array.StringBuilder:
		switch c := v.(type) {
		case string:
			b.Append(c)
		case []byte:
			b.Append(string(c))
		case [16]byte:
			b.Append(uuid.UUID(c).String())
		case pgtype.Numeric:
			if c.NaN {
				b.Append("NaN")
				break
			}
			b.Append(decimal.NewFromBigInt(c.Int, c.Exp).String())
		default:
			b.Append(fmt.Sprint(c))
		}
	default:
		return pgCellError(field, v)
	}
	return nil
}

func pgCellError(field arrow.Field, v any) error {
	return fmt.Errorf("cannot store %T into %s column", v, field.Type)
}
