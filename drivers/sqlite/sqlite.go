// Package sqlite is the SQLite backend, built on the cgo-free
// modernc.org/sqlite driver. It registers two schemes:
//
//	sqlite:///path/to/file.db   file-backed database
//	mem://                      private in-memory database
//
// Import it for side effects:
//
//	import _ "github.com/squill-app/squill-drivers/drivers/sqlite"
package sqlite

import (
	"database/sql"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/drivers/sqlutil"
)

const DriverName = "sqlite"

func init() {
	driver.Register(&sqliteDriver{})
}

type sqliteDriver struct{}

func (d *sqliteDriver) Schemes() []string { return []string{"sqlite", "mem"} }

func (d *sqliteDriver) Open(uri *url.URL, opts driver.Options) (driver.Conn, error) {
	dsn := dsnFromURI(uri)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &driver.Error{Driver: DriverName, Err: err}
	}
	// SQLite handles are single-writer; one pooled connection keeps
	// temporary tables and the in-memory database visible across
	// statements.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &driver.Error{Driver: DriverName, Err: err}
	}
	return &conn{db: db, opts: opts}, nil
}

func dsnFromURI(uri *url.URL) string {
	if uri.Scheme == "mem" {
		return ":memory:"
	}
	path := uri.Path
	if uri.Opaque != "" {
		path = uri.Opaque
	} else if uri.Host != "" {
		// sqlite://app.db parses the relative path into the host part.
		path = uri.Host + path
	}
	if q := uri.RawQuery; q != "" {
		return path + "?" + q
	}
	return path
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

// mapper refines the shared type mapping for SQLite's dynamic typing:
// declared NUMERIC affinity surfaces as float64, and expression columns
// with no declared type fall back to text.
type mapper struct {
	sqlutil.DefaultMapper
}

func (m mapper) ArrowType(col sqlutil.ColumnType) arrow.DataType {
	name := strings.ToUpper(col.DatabaseType)
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "NUMERIC", "DECIMAL":
		return arrow.PrimitiveTypes.Float64
	case "REAL", "FLOAT", "DOUBLE":
		// SQLite stores all floats as 8-byte IEEE values.
		return arrow.PrimitiveTypes.Float64
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT":
		// Integer affinity is 64-bit regardless of the declared width.
		return arrow.PrimitiveTypes.Int64
	case "":
		return arrow.BinaryTypes.String
	}
	return m.DefaultMapper.ArrowType(col)
}
