// Package squill provides one connection, statement and query surface
// over heterogeneous database engines.
//
// A backend (DuckDB, SQLite, PostgreSQL, ...) plugs in by implementing
// the driver contract and registering a URI scheme; results always come
// back as Apache Arrow record batches regardless of the engine, so
// downstream code never special-cases result formats.
//
// # Quick Start
//
// Open an in-memory database and run a query:
//
//	import (
//	    "github.com/squill-app/squill-drivers"
//	    _ "github.com/squill-app/squill-drivers/drivers/sqlite"
//	)
//
//	conn, _ := squill.Open("mem://")
//	conn.Execute("CREATE TABLE users (id INT, name TEXT)", values.NoParams)
//	params, _ := values.FromArgs(1, "Alice")
//	conn.Execute("INSERT INTO users VALUES (?, ?)", params)
//
//	rows, _ := conn.Query("SELECT id, name FROM users", values.NoParams)
//	for rows.Next() {
//	    id, _ := squill.Get[int64](rows.Row(), 0)
//	    name, _ := squill.Get[string](rows.Row(), "name")
//	    _ = id
//	    _ = name
//	}
//	rows.Close()
//	conn.Close()
//
// # Blocking and async surfaces
//
// This package is the blocking façade: every call may block the calling
// goroutine for the duration of the native engine call. The async
// package wraps the same drivers behind a dedicated worker per
// connection so cooperative callers never stall on a native call; both
// surfaces expose the identical value, schema and batch model.
//
// # Supported backends
//
//   - drivers/sqlite: sqlite:// and mem:// (pure Go, modernc.org/sqlite)
//   - drivers/duckdb: duckdb://
//   - drivers/postgres: postgres:// (jackc/pgx)
//   - drivers/mock: mock:// (scriptable in-memory backend for tests)
package squill
