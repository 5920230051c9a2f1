package sqlutil

import (
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/squill-app/squill-drivers/values"
)

func TestArgsPositional(t *testing.T) {
	params, err := values.FromArgs(int32(7), "hello", nil, []byte{1, 2}, true)
	if err != nil {
		t.Fatalf("Failed to build parameters: %v", err)
	}
	args, err := Args(params)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if len(args) != 5 {
		t.Fatalf("Expected 5 arguments, got %d", len(args))
	}
	if args[0] != int64(7) {
		t.Errorf("Expected int64(7), got %T %v", args[0], args[0])
	}
	if args[1] != "hello" {
		t.Errorf("Expected hello, got %v", args[1])
	}
	if args[2] != nil {
		t.Errorf("Expected nil, got %v", args[2])
	}
	if args[4] != true {
		t.Errorf("Expected true, got %v", args[4])
	}
}

func TestArgsNamed(t *testing.T) {
	binding, err := values.Named("name", "Alice")
	if err != nil {
		t.Fatalf("Failed to build binding: %v", err)
	}
	params, err := values.FromArgs(binding)
	if err != nil {
		t.Fatalf("Failed to build parameters: %v", err)
	}
	args, err := Args(params)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	named, ok := args[0].(sql.NamedArg)
	if !ok {
		t.Fatalf("Expected sql.NamedArg, got %T", args[0])
	}
	if named.Name != "name" || named.Value != "Alice" {
		t.Errorf("Unexpected binding %+v", named)
	}
}

func TestArgsTextFallback(t *testing.T) {
	id := uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8")
	params, err := values.FromArgs(id, 90*time.Minute)
	if err != nil {
		t.Fatalf("Failed to build parameters: %v", err)
	}
	args, err := Args(params)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if args[0] != id.String() {
		t.Errorf("Expected canonical uuid text, got %v", args[0])
	}
	if args[1] != "1 hour 30 minutes" {
		t.Errorf("Expected interval text, got %v", args[1])
	}
}

func TestDefaultMapper(t *testing.T) {
	cases := []struct {
		dbType string
		want   arrow.DataType
	}{
		{"INTEGER", arrow.PrimitiveTypes.Int32},
		{"BIGINT", arrow.PrimitiveTypes.Int64},
		{"VARCHAR(40)", arrow.BinaryTypes.String},
		{"DOUBLE", arrow.PrimitiveTypes.Float64},
		{"BOOLEAN", arrow.FixedWidthTypes.Boolean},
		{"BLOB", arrow.BinaryTypes.Binary},
		{"DATE", arrow.FixedWidthTypes.Date32},
		{"SOMETHING ELSE", nil},
	}
	for _, c := range cases {
		got := DefaultMapper{}.ArrowType(ColumnType{Name: "c", DatabaseType: c.dbType})
		if !sameType(got, c.want) {
			t.Errorf("Expected %v for %s, got %v", c.want, c.dbType, got)
		}
	}
}

func sameType(a, b arrow.DataType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return arrow.TypeEqual(a, b)
}

func TestBatchReaderChunks(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("CREATE TABLE nums (n BIGINT)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for i := 0; i < 25; i++ {
		if _, err := db.Exec("INSERT INTO nums (n) VALUES (?)", i); err != nil {
			t.Fatalf("Failed to insert: %v", err)
		}
	}

	rows, err := db.Query("SELECT n FROM nums ORDER BY n")
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	reader, err := NewBatchReader(rows, DefaultMapper{}, 10)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	if reader.Schema().NumFields() != 1 {
		t.Fatalf("Expected 1 field, got %d", reader.Schema().NumFields())
	}

	var sizes []int64
	next := int64(0)
	for {
		batch, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Failed to fetch batch: %v", err)
		}
		sizes = append(sizes, batch.NumRows())
		col := batch.Column(0).(*array.Int64)
		for i := 0; i < int(batch.NumRows()); i++ {
			if col.Value(i) != next {
				t.Fatalf("Expected %d, got %d", next, col.Value(i))
			}
			next++
		}
		batch.Release()
	}
	if next != 25 {
		t.Errorf("Expected 25 rows, got %d", next)
	}
	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Errorf("Expected batches of 10, 10, 5, got %v", sizes)
	}
}
