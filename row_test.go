package squill

import (
	"errors"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/squill-app/squill-drivers/values"
)

func testBatch(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	ids := builder.Field(0).(*array.Int32Builder)
	names := builder.Field(1).(*array.StringBuilder)
	scores := builder.Field(2).(*array.Float64Builder)
	ids.AppendValues([]int32{1, 2}, nil)
	names.Append("Alice")
	names.AppendNull()
	scores.Append(9.5)
	scores.AppendNull()

	batch := builder.NewRecord()
	t.Cleanup(batch.Release)
	return batch
}

func TestRowByPosition(t *testing.T) {
	row := NewRow(testBatch(t), 0)
	if row.NumColumns() != 3 {
		t.Fatalf("Expected 3 columns, got %d", row.NumColumns())
	}
	id, err := Get[int32](row, 0)
	if err != nil || id != 1 {
		t.Errorf("Expected id 1, got %d (%v)", id, err)
	}
	name, err := Get[string](row, 1)
	if err != nil || name != "Alice" {
		t.Errorf("Expected Alice, got %q (%v)", name, err)
	}
}

func TestRowByName(t *testing.T) {
	row := NewRow(testBatch(t), 0)
	score, err := Get[float64](row, "score")
	if err != nil || score != 9.5 {
		t.Errorf("Expected 9.5, got %v (%v)", score, err)
	}
	var notFound *ColumnNotFoundError
	if _, err := Get[int32](row, "missing"); !errors.As(err, &notFound) {
		t.Errorf("Expected ColumnNotFoundError, got %v", err)
	}
}

func TestRowNulls(t *testing.T) {
	row := NewRow(testBatch(t), 1)
	if !row.IsNull("name") {
		t.Error("Expected name to be null on row 1")
	}
	if row.IsNull("id") {
		t.Error("Expected id to be non-null on row 1")
	}
	v, err := row.Value("name")
	if err != nil {
		t.Fatalf("Failed to read null cell: %v", err)
	}
	if !v.IsNull() {
		t.Error("Expected null value")
	}

	name, err := GetNullable[string](row, "name")
	if err != nil {
		t.Fatalf("Failed to read nullable cell: %v", err)
	}
	if name != nil {
		t.Errorf("Expected nil, got %q", *name)
	}
	score, err := GetNullable[float64](NewRow(testBatch(t), 0), "score")
	if err != nil || score == nil || *score != 9.5 {
		t.Errorf("Expected 9.5, got %v (%v)", score, err)
	}
}

func TestRowOutOfBounds(t *testing.T) {
	row := NewRow(testBatch(t), 0)
	var oob *OutOfBoundsError
	if _, err := row.Value(7); !errors.As(err, &oob) {
		t.Errorf("Expected OutOfBoundsError, got %v", err)
	}
	if _, err := row.Value(-1); !errors.As(err, &oob) {
		t.Errorf("Expected OutOfBoundsError, got %v", err)
	}
}

func TestRowTypeMismatch(t *testing.T) {
	row := NewRow(testBatch(t), 0)
	var mismatch *values.TypeMismatchError
	if _, err := Get[int8](row, "id"); !errors.As(err, &mismatch) {
		t.Errorf("Expected TypeMismatchError narrowing int32, got %v", err)
	}
	if _, err := Get[string](row, "id"); !errors.As(err, &mismatch) {
		t.Errorf("Expected TypeMismatchError reading int as string, got %v", err)
	}
}
