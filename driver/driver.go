// Package driver defines the contract a database backend must satisfy
// to plug into the access layer, and the process-wide registry mapping
// URI schemes to backends.
//
// A backend implements Driver, Conn, Stmt and BatchReader, then calls
// Register from its package init. Applications select a backend by
// importing its package for side effects and opening a URI whose scheme
// the backend registered:
//
//	import _ "github.com/squill-app/squill-drivers/drivers/sqlite"
//
//	conn, err := squill.Open("sqlite:///tmp/app.db")
//
// Every method in this package may block: backends wrap native engine
// calls that perform I/O or CPU work synchronously on the calling
// goroutine. A Conn is used by one logical caller at a time; the
// façades above this package enforce that.
package driver

import (
	"net/url"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/squill-app/squill-drivers/config"
	"github.com/squill-app/squill-drivers/values"
)

// Driver is the entry point a backend registers for its URI schemes.
type Driver interface {
	// Schemes returns the URI schemes served by this backend.
	Schemes() []string

	// Open establishes a connection to the data source identified by
	// the URI. Everything past the scheme is backend-defined.
	Open(uri *url.URL, opts Options) (Conn, error)
}

// Conn is a single connection to a data source. It is exclusively owned
// by the façade that opened it and is never shared between callers.
type Conn interface {
	// DriverName identifies the backend, mostly for logging.
	DriverName() string

	// Prepare compiles a statement. Placeholder syntax is
	// backend-defined ("?" for SQLite and DuckDB, "$1" for Postgres).
	Prepare(query string) (Stmt, error)

	// Ping verifies the connection is alive.
	Ping() error

	// Close releases the connection and every backend resource
	// attached to it.
	Close() error
}

// Stmt is a prepared statement. It can be bound and executed repeatedly
// and must be closed to release backend resources deterministically.
type Stmt interface {
	// Bind attaches parameters to the statement, replacing any earlier
	// bindings. The bindings stay attached until the next Bind or
	// Close. A parameter-count mismatch is reported here or at
	// execution, depending on what the engine can check eagerly.
	Bind(params values.Parameters) error

	// Execute runs the statement and returns the number of affected
	// rows. Running a result-returning statement through Execute may
	// fail depending on the backend.
	Execute() (uint64, error)

	// Query runs the statement and returns a lazy, single-pass,
	// non-restartable sequence of record batches.
	Query() (BatchReader, error)

	// Close finalizes the statement.
	Close() error
}

// BatchReader streams the result of a query as arrow record batches in
// result row order. It is single-pass: once Next returns io.EOF the
// sequence is exhausted for good.
type BatchReader interface {
	// Schema describes the result shape shared by every batch.
	Schema() *arrow.Schema

	// Next returns the next batch or io.EOF once the sequence is
	// exhausted. The caller owns the returned record.
	Next() (arrow.Record, error)

	// Close releases the underlying cursor. Pending batches are
	// discarded.
	Close() error
}

// Options carries the per-connection knobs the façade resolved before
// handing the URI to the backend.
type Options struct {
	// MaxBatchRows bounds the number of rows per record batch produced
	// by a query. Backends stream multiple batches instead of
	// materializing the full result.
	MaxBatchRows int
}

// The URI query parameter overriding Options.MaxBatchRows.
const batchRowsParam = "batch_rows"

// OptionsFromURI resolves connection options from the URI query, falling
// back to the process configuration. The recognized parameters are
// removed from the URI so backends only see their own.
func OptionsFromURI(u *url.URL) Options {
	opts := Options{MaxBatchRows: config.Get().Batch.MaxRows}
	q := u.Query()
	if raw := q.Get(batchRowsParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.MaxBatchRows = n
		}
		q.Del(batchRowsParam)
		u.RawQuery = q.Encode()
	}
	return opts
}
