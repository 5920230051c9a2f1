package squill

import (
	"fmt"
	"math/big"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/shopspring/decimal"
	"github.com/squill-app/squill-drivers/values"
)

func decimalFromArrow(unscaled *big.Int, scale int32) decimal.Decimal {
	return decimal.NewFromBigInt(unscaled, -scale)
}

func timeUnitOf(unit arrow.TimeUnit) values.TimeUnit {
	switch unit {
	case arrow.Second:
		return values.Second
	case arrow.Millisecond:
		return values.Millisecond
	case arrow.Microsecond:
		return values.Microsecond
	default:
		return values.Nanosecond
	}
}

// decodeColumn extracts the cell at row index i of an arrow column as a
// Value. Unsupported arrow types are a conversion error, never a
// reinterpretation.
func decodeColumn(col arrow.Array, i int) (values.Value, error) {
	if i < 0 || i >= col.Len() {
		return values.Value{}, &OutOfBoundsError{Index: i}
	}
	if col.IsNull(i) {
		return values.Null(), nil
	}

	switch arr := col.(type) {
	case *array.Boolean:
		return values.Bool(arr.Value(i)), nil
	case *array.Int8:
		return values.Int8(arr.Value(i)), nil
	case *array.Int16:
		return values.Int16(arr.Value(i)), nil
	case *array.Int32:
		return values.Int32(arr.Value(i)), nil
	case *array.Int64:
		return values.Int64(arr.Value(i)), nil
	case *array.Uint8:
		return values.UInt8(arr.Value(i)), nil
	case *array.Uint16:
		return values.UInt16(arr.Value(i)), nil
	case *array.Uint32:
		return values.UInt32(arr.Value(i)), nil
	case *array.Uint64:
		return values.UInt64(arr.Value(i)), nil
	case *array.Float32:
		return values.Float32(arr.Value(i)), nil
	case *array.Float64:
		return values.Float64(arr.Value(i)), nil
	case *array.String:
		return values.String(arr.Value(i)), nil
	case *array.LargeString:
		return values.String(arr.Value(i)), nil
	case *array.Binary:
		return values.Blob(arr.Value(i)), nil
	case *array.LargeBinary:
		return values.Blob(arr.Value(i)), nil
	case *array.FixedSizeBinary:
		return values.Blob(arr.Value(i)), nil
	case *array.Date32:
		return values.Date32(int32(arr.Value(i))), nil
	case *array.Time64:
		unit := arr.DataType().(*arrow.Time64Type).Unit
		return values.Time64(timeUnitOf(unit), int64(arr.Value(i))), nil
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return values.Timestamp(timeUnitOf(unit), int64(arr.Value(i))), nil
	case *array.Decimal128:
		typ := arr.DataType().(*arrow.Decimal128Type)
		return values.Decimal(decimalFromArrow(arr.Value(i).BigInt(), typ.Scale)), nil
	case *array.MonthDayNanoInterval:
		v := arr.Value(i)
		return values.Interval(v.Months, v.Days, v.Nanoseconds), nil
	case *array.Null:
		return values.Null(), nil
	default:
		return values.Value{}, &values.TypeMismatchError{
			Expected: "supported arrow type",
			Actual:   col.DataType().String(),
		}
	}
}

// ColumnIndex addresses a column either by 0-based position (int) or by
// name (string). Position is the addressing key internally; names need
// not be unique and resolve to the first match.
type ColumnIndex interface{ int | string }

func resolveColumn(schema *arrow.Schema, index any) (int, error) {
	switch idx := index.(type) {
	case int:
		if idx < 0 || idx >= schema.NumFields() {
			return 0, &OutOfBoundsError{Index: idx}
		}
		return idx, nil
	case string:
		indices := schema.FieldIndices(idx)
		if len(indices) == 0 {
			return 0, &ColumnNotFoundError{Name: idx}
		}
		return indices[0], nil
	default:
		return 0, fmt.Errorf("squill: unsupported column index type %T", index)
	}
}
