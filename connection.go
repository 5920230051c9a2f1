package squill

import (
	"fmt"

	"github.com/squill-app/squill-drivers/config"
	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/logger"
	"github.com/squill-app/squill-drivers/stmtcache"
	"github.com/squill-app/squill-drivers/values"
)

// Connection is the blocking façade over a driver connection. It is a
// thin sequential wrapper: one operation at a time, no background
// goroutine. Connections are not safe for concurrent use; use the
// async package when multiple goroutines share a connection.
type Connection struct {
	inner  driver.Conn
	cache  *stmtcache.Cache
	closed bool
}

// Open connects to the datasource identified by the URI and returns a
// blocking connection. The URI scheme selects the driver; the driver
// package must already hold a registration for it, usually through a
// blank import of the backend package.
func Open(uri string) (*Connection, error) {
	conn, err := driver.Open(uri)
	if err != nil {
		return nil, err
	}
	c := &Connection{inner: conn}
	if size := config.Get().Statement.CacheSize; size > 0 {
		cache, err := stmtcache.New(size)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		c.cache = cache
	}
	logger.Get().Debug("connection opened", "driver", conn.DriverName())
	return c, nil
}

// DriverName reports which driver serves this connection.
func (c *Connection) DriverName() string { return c.inner.DriverName() }

// Ping checks that the connection is still usable.
func (c *Connection) Ping() error {
	if c.closed {
		return ErrClosed
	}
	return c.fatalCheck(c.inner.Ping())
}

// Prepare compiles a statement for later execution. The returned
// statement is owned by the caller and must be closed. Prepared
// statements bypass the connection's statement cache.
func (c *Connection) Prepare(query string) (*Statement, error) {
	if c.closed {
		return nil, ErrClosed
	}
	stmt, err := c.inner.Prepare(query)
	if err != nil {
		return nil, c.fatalCheck(err)
	}
	return &Statement{conn: c, inner: stmt}, nil
}

// Execute runs a statement that returns no rows and reports the number
// of affected rows. Drivers that cannot count report zero.
func (c *Connection) Execute(query string, params values.Parameters) (uint64, error) {
	stmt, cached, err := c.prepareCached(query)
	if err != nil {
		return 0, err
	}
	if !cached {
		defer stmt.Close()
	}
	if err := stmt.Bind(params); err != nil {
		c.dropCached(query, cached)
		return 0, c.fatalCheck(err)
	}
	affected, err := stmt.Execute()
	if err != nil {
		c.dropCached(query, cached)
		return 0, c.fatalCheck(err)
	}
	return affected, nil
}

// Query runs a statement and returns an iterator over its rows. The
// returned rows must be closed before the connection is used again.
func (c *Connection) Query(query string, params values.Parameters) (*Rows, error) {
	stmt, err := c.Prepare(query)
	if err != nil {
		return nil, err
	}
	if err := stmt.Bind(params); err != nil {
		_ = stmt.Close()
		return nil, err
	}
	reader, err := stmt.inner.Query()
	if err != nil {
		_ = stmt.Close()
		return nil, c.fatalCheck(err)
	}
	return newRows(stmt, reader, true), nil
}

// QueryRow runs a query expected to produce a single row and returns
// it fully decoded. ErrNoRows is returned when the result is empty;
// extra rows beyond the first are discarded.
func (c *Connection) QueryRow(query string, params values.Parameters) ([]values.Value, error) {
	rows, err := c.Query(query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return firstRow(rows)
}

// Close releases cached statements and the driver connection. Close is
// idempotent.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.cache != nil {
		c.cache.Close()
	}
	return c.inner.Close()
}

// prepareCached resolves a statement for one-shot execution, serving
// it from the cache when enabled.
func (c *Connection) prepareCached(query string) (driver.Stmt, bool, error) {
	if c.closed {
		return nil, false, ErrClosed
	}
	if c.cache != nil {
		if stmt, ok := c.cache.Get(query); ok {
			return stmt, true, nil
		}
	}
	stmt, err := c.inner.Prepare(query)
	if err != nil {
		return nil, false, c.fatalCheck(err)
	}
	if c.cache != nil {
		c.cache.Put(query, stmt)
		return stmt, true, nil
	}
	return stmt, false, nil
}

func (c *Connection) dropCached(query string, cached bool) {
	if cached && c.cache != nil {
		c.cache.Remove(query)
	}
}

// fatalCheck marks the connection closed when a driver reports a
// connection-fatal error and releases the cache and the driver
// connection, like an explicit Close would. Later operations fail fast
// with ErrClosed.
func (c *Connection) fatalCheck(err error) error {
	if err != nil && driver.IsConnFatal(err) {
		c.closed = true
		logger.Get().Warn("connection lost", "driver", c.inner.DriverName(), "error", err)
		if c.cache != nil {
			c.cache.Close()
		}
		_ = c.inner.Close()
	}
	return err
}

// firstRow decodes the first row of an iterator, failing with
// ErrNoRows on an empty result.
func firstRow(rows *Rows) ([]values.Value, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoRows
	}
	row := rows.Row()
	out := make([]values.Value, row.NumColumns())
	for i := range out {
		v, err := row.Value(i)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
