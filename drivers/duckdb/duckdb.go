// Package duckdb is the DuckDB backend, built on the official
// duckdb-go driver. It registers the scheme:
//
//	duckdb:///path/to/file.db   file-backed database
//	duckdb://                   private in-memory database
//
// Import it for side effects:
//
//	import _ "github.com/squill-app/squill-drivers/drivers/duckdb"
package duckdb

import (
	"database/sql"
	"net/url"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/drivers/sqlutil"
)

const DriverName = "duckdb"

func init() {
	driver.Register(&duckdbDriver{})
}

type duckdbDriver struct{}

func (d *duckdbDriver) Schemes() []string { return []string{"duckdb"} }

func (d *duckdbDriver) Open(uri *url.URL, opts driver.Options) (driver.Conn, error) {
	db, err := sql.Open("duckdb", dsnFromURI(uri))
	if err != nil {
		return nil, &driver.Error{Driver: DriverName, Err: err}
	}
	// DuckDB databases are single-process; one pooled connection keeps
	// session state such as temporary tables stable.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &driver.Error{Driver: DriverName, Err: err}
	}
	return &conn{db: db, opts: opts}, nil
}

func dsnFromURI(uri *url.URL) string {
	dsn := uri.Path
	if uri.Opaque != "" {
		dsn = uri.Opaque
	} else if uri.Host != "" {
		// duckdb://app.db parses the relative path into the host part.
		dsn = uri.Host + dsn
	}
	if q := uri.RawQuery; q != "" {
		dsn += "?" + q
	}
	return dsn
}

type conn struct {
	db   *sql.DB
	opts driver.Options
}

func (c *conn) DriverName() string { return DriverName }

func (c *conn) Ping() error {
	if err := c.db.Ping(); err != nil {
		return driver.ConnFatal(&driver.Error{Driver: DriverName, Err: err})
	}
	return nil
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	stmt, err := c.db.Prepare(query)
	if err != nil {
		return nil, &driver.Error{Driver: DriverName, Err: err}
	}
	return &sqlutil.Stmt{
		Inner:   stmt,
		Name:    DriverName,
		Mapper:  mapper{},
		MaxRows: c.opts.MaxBatchRows,
	}, nil
}

func (c *conn) Close() error {
	return c.db.Close()
}

// mapper extends the shared type mapping with DuckDB-specific names.
// HUGEINT and DECIMAL values come back through text so precision
// survives the database/sql boundary.
type mapper struct {
	sqlutil.DefaultMapper
}

func (m mapper) ArrowType(col sqlutil.ColumnType) arrow.DataType {
	name := strings.ToUpper(col.DatabaseType)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "HUGEINT", "UHUGEINT", "DECIMAL", "NUMERIC", "INTERVAL":
		return arrow.BinaryTypes.String
	}
	return m.DefaultMapper.ArrowType(col)
}
