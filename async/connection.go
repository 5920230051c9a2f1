package async

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow"

	squill "github.com/squill-app/squill-drivers"
	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/logger"
	"github.com/squill-app/squill-drivers/values"
)

type cmdKind int

const (
	cmdPing cmdKind = iota
	cmdExecute
	cmdQuery
	cmdPrepare
	cmdStmtExecute
	cmdStmtQuery
	cmdStmtClose
	cmdFetch
	cmdCursorClose
	cmdShutdown
)

type command struct {
	kind   cmdKind
	query  string
	params values.Parameters
	handle uint64
	reply  chan result
}

type result struct {
	affected uint64
	handle   uint64
	schema   *arrow.Schema
	batch    arrow.Record
	err      error
}

// Connection is a driver connection owned by a background worker.
// Unlike the blocking façade it is safe for concurrent use: any number
// of goroutines may submit operations, and the worker applies them one
// at a time in submission order.
type Connection struct {
	cmds       chan command
	done       chan struct{}
	closed     atomic.Bool
	driverName string
}

type openResult struct {
	name string
	err  error
}

// Open connects to the datasource identified by the URI. The driver
// connection is opened on the worker itself, so every driver call for
// this connection happens on a single goroutine for its whole life.
func Open(ctx context.Context, uri string) (*Connection, error) {
	c := &Connection{
		cmds: make(chan command),
		done: make(chan struct{}),
	}
	ready := make(chan openResult, 1)
	if err := spawn(func() { c.run(uri, ready) }); err != nil {
		return nil, err
	}
	select {
	case r := <-ready:
		if r.err != nil {
			return nil, r.err
		}
		c.driverName = r.name
		return c, nil
	case <-ctx.Done():
		// The worker will park on the command channel; shut it down.
		go func() {
			if r := <-ready; r.err == nil {
				c.closed.Store(true)
				c.cmds <- command{kind: cmdShutdown, reply: make(chan result, 1)}
			}
		}()
		return nil, ctx.Err()
	}
}

// DriverName reports which driver serves this connection.
func (c *Connection) DriverName() string { return c.driverName }

// Ping checks that the connection is still usable.
func (c *Connection) Ping(ctx context.Context) error {
	_, err := c.roundTrip(ctx, command{kind: cmdPing})
	return err
}

// Execute runs a statement that returns no rows and reports the number
// of affected rows.
func (c *Connection) Execute(ctx context.Context, query string, params values.Parameters) (uint64, error) {
	r, err := c.roundTrip(ctx, command{kind: cmdExecute, query: query, params: params})
	if err != nil {
		return 0, err
	}
	return r.affected, nil
}

// Query runs a statement and returns an iterator over its rows.
// Batches are fetched from the worker one at a time as the iterator
// advances.
func (c *Connection) Query(ctx context.Context, query string, params values.Parameters) (*Rows, error) {
	r, err := c.roundTrip(ctx, command{kind: cmdQuery, query: query, params: params})
	if err != nil {
		return nil, err
	}
	return &Rows{conn: c, cursor: r.handle, schema: r.schema, index: -1}, nil
}

// QueryRow runs a query expected to produce a single row and returns
// it fully decoded, or squill.ErrNoRows on an empty result.
func (c *Connection) QueryRow(ctx context.Context, query string, params values.Parameters) ([]values.Value, error) {
	rows, err := c.Query(ctx, query, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next(ctx) {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, squill.ErrNoRows
	}
	row := rows.Row()
	out := make([]values.Value, row.NumColumns())
	for i := range out {
		if out[i], err = row.Value(i); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Prepare compiles a statement on the worker and returns a handle to
// it. The statement is bound to this connection and must be closed by
// the caller.
func (c *Connection) Prepare(ctx context.Context, query string) (*Statement, error) {
	r, err := c.roundTrip(ctx, command{kind: cmdPrepare, query: query})
	if err != nil {
		return nil, err
	}
	return &Statement{conn: c, handle: r.handle}, nil
}

// Close shuts the worker down, releasing every statement and cursor it
// still holds along with the driver connection. Close is idempotent.
func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		<-c.done
		return nil
	}
	reply := make(chan result, 1)
	select {
	case c.cmds <- command{kind: cmdShutdown, reply: reply}:
	case <-c.done:
		return nil
	}
	<-c.done
	r := <-reply
	return r.err
}

// roundTrip hands a command to the worker and waits for its reply. The
// reply channel is buffered so an abandoned round trip never blocks
// the worker.
func (c *Connection) roundTrip(ctx context.Context, cmd command) (result, error) {
	if c.closed.Load() {
		return result{}, squill.ErrClosed
	}
	cmd.reply = make(chan result, 1)
	select {
	case c.cmds <- cmd:
	case <-c.done:
		return result{}, squill.ErrClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case r := <-cmd.reply:
		return r, r.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// run is the worker loop. It owns the driver connection and all
// statements and cursors derived from it, and is the only goroutine
// that ever touches them.
func (c *Connection) run(uri string, ready chan<- openResult) {
	defer close(c.done)

	conn, err := driver.Open(uri)
	if err != nil {
		ready <- openResult{err: err}
		return
	}
	ready <- openResult{name: conn.DriverName()}

	log := logger.Get().With("driver", conn.DriverName())

	var nextHandle uint64
	stmts := make(map[uint64]driver.Stmt)
	cursors := make(map[uint64]driver.BatchReader)

	cleanup := func() {
		for _, cur := range cursors {
			_ = cur.Close()
		}
		for _, stmt := range stmts {
			_ = stmt.Close()
		}
		_ = conn.Close()
	}

	for cmd := range c.cmds {
		var r result
		switch cmd.kind {
		case cmdPing:
			r.err = conn.Ping()

		case cmdExecute:
			r.affected, r.err = executeOnce(conn, cmd.query, cmd.params)

		case cmdQuery:
			var reader driver.BatchReader
			reader, r.schema, r.err = queryOnce(conn, cmd.query, cmd.params)
			if r.err == nil {
				nextHandle++
				cursors[nextHandle] = reader
				r.handle = nextHandle
			}

		case cmdPrepare:
			var stmt driver.Stmt
			stmt, r.err = conn.Prepare(cmd.query)
			if r.err == nil {
				nextHandle++
				stmts[nextHandle] = stmt
				r.handle = nextHandle
			}

		case cmdStmtExecute:
			stmt, ok := stmts[cmd.handle]
			if !ok {
				r.err = squill.ErrClosed
				break
			}
			if r.err = stmt.Bind(cmd.params); r.err == nil {
				r.affected, r.err = stmt.Execute()
			}

		case cmdStmtQuery:
			stmt, ok := stmts[cmd.handle]
			if !ok {
				r.err = squill.ErrClosed
				break
			}
			if r.err = stmt.Bind(cmd.params); r.err == nil {
				var reader driver.BatchReader
				if reader, r.err = stmt.Query(); r.err == nil {
					r.schema = reader.Schema()
					nextHandle++
					cursors[nextHandle] = reader
					r.handle = nextHandle
				}
			}

		case cmdStmtClose:
			if stmt, ok := stmts[cmd.handle]; ok {
				delete(stmts, cmd.handle)
				r.err = stmt.Close()
			}

		case cmdFetch:
			cur, ok := cursors[cmd.handle]
			if !ok {
				r.err = io.EOF
				break
			}
			r.batch, r.err = cur.Next()
			if r.err != nil {
				delete(cursors, cmd.handle)
				_ = cur.Close()
			}

		case cmdCursorClose:
			if cur, ok := cursors[cmd.handle]; ok {
				delete(cursors, cmd.handle)
				r.err = cur.Close()
			}

		case cmdShutdown:
			cleanup()
			cmd.reply <- result{}
			return
		}

		cmd.reply <- r

		if r.err != nil && driver.IsConnFatal(r.err) {
			log.Warn("connection lost, shutting worker down", "error", r.err)
			c.closed.Store(true)
			cleanup()
			return
		}
	}
}

func executeOnce(conn driver.Conn, query string, params values.Parameters) (uint64, error) {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	if err := stmt.Bind(params); err != nil {
		return 0, err
	}
	return stmt.Execute()
}

func queryOnce(conn driver.Conn, query string, params values.Parameters) (driver.BatchReader, *arrow.Schema, error) {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return nil, nil, err
	}
	if err := stmt.Bind(params); err != nil {
		_ = stmt.Close()
		return nil, nil, err
	}
	reader, err := stmt.Query()
	if err != nil {
		_ = stmt.Close()
		return nil, nil, err
	}
	return &ownedReader{BatchReader: reader, stmt: stmt}, reader.Schema(), nil
}

// ownedReader ties a one-shot statement's lifetime to its cursor.
type ownedReader struct {
	driver.BatchReader
	stmt driver.Stmt
}

func (o *ownedReader) Close() error {
	err := o.BatchReader.Close()
	if cerr := o.stmt.Close(); err == nil {
		err = cerr
	}
	return err
}
