package squill

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/squill-app/squill-drivers/values"
)

// Row is a lazily-decoding view over one row of a record batch. Nothing
// is materialized until a column is accessed; each access decodes a
// single cell from the underlying arrow column.
type Row struct {
	batch arrow.Record
	index int
}

// NewRow wraps row index of a record batch. It is used by the façades
// when iterating query results; applications rarely construct rows
// directly.
func NewRow(batch arrow.Record, index int) Row {
	return Row{batch: batch, index: index}
}

// Schema describes the row's columns.
func (r Row) Schema() *arrow.Schema { return r.batch.Schema() }

// NumColumns returns the number of columns in the row.
func (r Row) NumColumns() int { return int(r.batch.NumCols()) }

// IsNull reports whether the column at the given position or name is
// null. Unknown columns report as null; use Value to distinguish.
func (r Row) IsNull(index any) bool {
	i, err := resolveColumn(r.batch.Schema(), index)
	if err != nil {
		return true
	}
	return r.batch.Column(i).IsNull(r.index)
}

// Value extracts the column at the given position or name as a Value.
func (r Row) Value(index any) (values.Value, error) {
	i, err := resolveColumn(r.batch.Schema(), index)
	if err != nil {
		return values.Value{}, err
	}
	return decodeColumn(r.batch.Column(i), r.index)
}

// Get extracts a column of row r as the Go type T, addressed by 0-based
// position or by name. Extraction follows the value model's lossless
// conversion rules: exact matches and widening numeric conversions
// succeed, anything else fails with a TypeMismatchError.
func Get[T any, I ColumnIndex](r Row, index I) (T, error) {
	var zero T
	v, err := r.Value(any(index))
	if err != nil {
		return zero, err
	}
	return values.As[T](v)
}

// GetNullable is Get for nullable columns: a null cell yields nil
// instead of a conversion error.
func GetNullable[T any, I ColumnIndex](r Row, index I) (*T, error) {
	v, err := r.Value(any(index))
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}
	out, err := values.As[T](v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
