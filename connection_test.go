package squill_test

import (
	"errors"
	"strings"
	"testing"

	squill "github.com/squill-app/squill-drivers"
	"github.com/squill-app/squill-drivers/drivers/mock"
	"github.com/squill-app/squill-drivers/values"

	_ "github.com/squill-app/squill-drivers/drivers/mock"
)

func openMock(t *testing.T, uri string) *squill.Connection {
	t.Helper()
	conn, err := squill.Open(uri)
	if err != nil {
		t.Fatalf("Failed to open %q: %v", uri, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestOpenFailure(t *testing.T) {
	if _, err := squill.Open("mock://db?error"); err == nil {
		t.Error("Expected open to fail")
	}
	if _, err := squill.Open("not-a-uri"); err == nil {
		t.Error("Expected open to fail on invalid URI")
	}
}

func TestDriverName(t *testing.T) {
	conn := openMock(t, "mock://db")
	if conn.DriverName() != mock.DriverName {
		t.Errorf("Expected %q, got %q", mock.DriverName, conn.DriverName())
	}
}

func TestExecute(t *testing.T) {
	conn := openMock(t, "mock://db")
	affected, err := conn.Execute("INSERT 3", values.NoParams)
	if err != nil {
		t.Fatalf("Failed to execute: %v", err)
	}
	if affected != 3 {
		t.Errorf("Expected 3 affected rows, got %d", affected)
	}
}

func TestPrepareFailure(t *testing.T) {
	conn := openMock(t, "mock://db")
	_, err := conn.Prepare("XINSERT INTO users")
	if err == nil {
		t.Fatal("Expected prepare to fail")
	}
	// A failed statement must not poison the connection.
	if err := conn.Ping(); err != nil {
		t.Errorf("Expected connection to stay usable, got %v", err)
	}
}

func TestQuery(t *testing.T) {
	conn := openMock(t, "mock://db")
	rows, err := conn.Query("SELECT 5", values.NoParams)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		row := rows.Row()
		id, err := squill.Get[int32](row, 0)
		if err != nil {
			t.Fatalf("Failed to read id: %v", err)
		}
		if int(id) != count {
			t.Errorf("Expected id %d, got %d", count, id)
		}
		name, err := squill.Get[string](row, "username")
		if err != nil {
			t.Fatalf("Failed to read username: %v", err)
		}
		if !strings.HasPrefix(name, "user") {
			t.Errorf("Unexpected username %q", name)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 rows, got %d", count)
	}
}

func TestQueryBatchOrdering(t *testing.T) {
	conn := openMock(t, "mock://db?batch_rows=1000")
	rows, err := conn.Query("SELECT 2500", values.NoParams)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	defer rows.Close()

	next := int32(0)
	for rows.Next() {
		id, err := squill.Get[int32](rows.Row(), "id")
		if err != nil {
			t.Fatalf("Failed to read id: %v", err)
		}
		if id != next {
			t.Fatalf("Expected id %d, got %d", next, id)
		}
		next++
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if next != 2500 {
		t.Errorf("Expected 2500 rows across batches, got %d", next)
	}
}

func TestQueryRow(t *testing.T) {
	conn := openMock(t, "mock://db")
	row, err := conn.QueryRow("SELECT 1", values.NoParams)
	if err != nil {
		t.Fatalf("Failed to query row: %v", err)
	}
	if len(row) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(row))
	}
	if id, err := row[0].Int32(); err != nil || id != 0 {
		t.Errorf("Expected id 0, got %v (%v)", id, err)
	}
}

func TestQueryRowEmpty(t *testing.T) {
	conn := openMock(t, "mock://db")
	_, err := conn.QueryRow("SELECT 0", values.NoParams)
	if !errors.Is(err, squill.ErrNoRows) {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestPreparedStatementReuse(t *testing.T) {
	conn := openMock(t, "mock://db")
	stmt, err := conn.Prepare("SELECT 2")
	if err != nil {
		t.Fatalf("Failed to prepare: %v", err)
	}
	defer stmt.Close()

	for run := 0; run < 3; run++ {
		if err := stmt.Bind(values.NoParams); err != nil {
			t.Fatalf("Failed to bind: %v", err)
		}
		rows, err := stmt.Query()
		if err != nil {
			t.Fatalf("Failed to query: %v", err)
		}
		count := 0
		for rows.Next() {
			count++
		}
		if err := rows.Close(); err != nil {
			t.Fatalf("Failed to close rows: %v", err)
		}
		if count != 2 {
			t.Errorf("Run %d: expected 2 rows, got %d", run, count)
		}
	}
}

func TestFatalErrorClosesConnection(t *testing.T) {
	conn := openMock(t, "mock://db")
	if _, err := conn.Execute("FATAL", values.NoParams); err == nil {
		t.Fatal("Expected execute to fail")
	}
	before := mock.CallCount()
	if _, err := conn.Execute("INSERT 1", values.NoParams); !errors.Is(err, squill.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := conn.Ping(); !errors.Is(err, squill.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if mock.CallCount() != before {
		t.Error("Expected no driver calls after a fatal error")
	}
}

func TestFatalErrorReleasesBackendConnection(t *testing.T) {
	base := mock.OpenConnections()
	conn := openMock(t, "mock://db")
	if got := mock.OpenConnections(); got != base+1 {
		t.Fatalf("Expected %d open connections, got %d", base+1, got)
	}
	if _, err := conn.Execute("FATAL", values.NoParams); err == nil {
		t.Fatal("Expected execute to fail")
	}
	if got := mock.OpenConnections(); got != base {
		t.Errorf("Expected the backend connection to be released, %d still open", got-base)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("Expected close after a fatal error to succeed, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	conn, err := squill.Open("mock://db")
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("Expected second close to succeed, got %v", err)
	}
	if _, err := conn.Query("SELECT 1", values.NoParams); !errors.Is(err, squill.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}

func TestRowsFormat(t *testing.T) {
	conn := openMock(t, "mock://db")
	rows, err := conn.Query("SELECT 2", values.NoParams)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	defer rows.Close()

	var buf strings.Builder
	if err := rows.Format(&buf); err != nil {
		t.Fatalf("Failed to format: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id", "username", "user0", "user1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}
