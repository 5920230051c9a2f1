// Package mock is an in-memory backend for tests. Instead of parsing
// SQL it reacts to a handful of statement shapes:
//
//	SELECT <n>     returns n rows of (id int32, username utf8)
//	INSERT <n>     executes with n affected rows
//	XINSERT ...    fails at prepare time
//	FATAL          fails with a connection-fatal error
//	SLEEP <d>; <s> sleeps for duration d, then behaves as statement s
//
// Opening a URI with an "error" query parameter fails. The package
// records every prepared statement and counts driver calls so tests
// can assert on what actually reached the connection.
package mock

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/values"
)

const DriverName = "mock"

// ErrFatal is the connection-fatal failure produced by FATAL
// statements.
var ErrFatal = errors.New("mock: simulated connection failure")

var (
	calls   atomic.Uint64
	conns   atomic.Int64
	journal struct {
		sync.Mutex
		stmts []string
	}
)

// CallCount returns the number of driver calls served since the last
// Reset.
func CallCount() uint64 { return calls.Load() }

// OpenConnections returns the number of connections opened through the
// driver and not yet closed.
func OpenConnections() int64 { return conns.Load() }

// Journal returns the statements prepared since the last Reset, in
// order.
func Journal() []string {
	journal.Lock()
	defer journal.Unlock()
	return append([]string(nil), journal.stmts...)
}

// Reset clears the call counter and the statement journal.
func Reset() {
	calls.Store(0)
	journal.Lock()
	journal.stmts = nil
	journal.Unlock()
}

func init() {
	driver.Register(&mockDriver{})
}

type mockDriver struct{}

func (d *mockDriver) Schemes() []string { return []string{DriverName} }

func (d *mockDriver) Open(uri *url.URL, opts driver.Options) (driver.Conn, error) {
	calls.Add(1)
	if uri.Query().Has("error") {
		return nil, &driver.Error{Driver: DriverName, Err: errors.New("open refused")}
	}
	conns.Add(1)
	return &conn{maxRows: opts.MaxBatchRows}, nil
}

type conn struct {
	maxRows int
	closed  bool
}

func (c *conn) DriverName() string { return DriverName }

func (c *conn) Ping() error {
	calls.Add(1)
	if c.closed {
		return errors.New("mock: ping on closed connection")
	}
	return nil
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	calls.Add(1)
	journal.Lock()
	journal.stmts = append(journal.stmts, query)
	journal.Unlock()

	delay, rest, err := splitSleep(query)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(rest, "XINSERT") {
		return nil, &driver.Error{Driver: DriverName, Err: fmt.Errorf("syntax error near %q", "XINSERT")}
	}
	return &stmt{conn: c, query: rest, delay: delay}, nil
}

func (c *conn) Close() error {
	calls.Add(1)
	if !c.closed {
		c.closed = true
		conns.Add(-1)
	}
	return nil
}

// splitSleep strips an optional "SLEEP <duration>;" prefix.
func splitSleep(query string) (time.Duration, string, error) {
	rest := strings.TrimSpace(query)
	if !strings.HasPrefix(rest, "SLEEP ") {
		return 0, rest, nil
	}
	semi := strings.IndexByte(rest, ';')
	if semi < 0 {
		return 0, "", fmt.Errorf("mock: missing %q after SLEEP", ";")
	}
	d, err := time.ParseDuration(strings.TrimSpace(rest[len("SLEEP "):semi]))
	if err != nil {
		return 0, "", fmt.Errorf("mock: bad SLEEP duration: %w", err)
	}
	return d, strings.TrimSpace(rest[semi+1:]), nil
}

type stmt struct {
	conn  *conn
	query string
	delay time.Duration
}

func (s *stmt) Bind(params values.Parameters) error {
	calls.Add(1)
	return nil
}

func (s *stmt) Execute() (uint64, error) {
	calls.Add(1)
	time.Sleep(s.delay)
	switch {
	case s.query == "FATAL":
		return 0, driver.ConnFatal(&driver.Error{Driver: DriverName, Err: ErrFatal})
	case strings.HasPrefix(s.query, "INSERT"):
		n, err := trailingCount(s.query)
		if err != nil {
			return 0, err
		}
		return uint64(n), nil
	default:
		return 0, nil
	}
}

func (s *stmt) Query() (driver.BatchReader, error) {
	calls.Add(1)
	time.Sleep(s.delay)
	switch {
	case s.query == "FATAL":
		return nil, driver.ConnFatal(&driver.Error{Driver: DriverName, Err: ErrFatal})
	case strings.HasPrefix(s.query, "SELECT"):
		n, err := trailingCount(s.query)
		if err != nil {
			return nil, err
		}
		maxRows := s.conn.maxRows
		if maxRows <= 0 {
			maxRows = 1024
		}
		return &batchReader{remaining: n, maxRows: maxRows}, nil
	default:
		return nil, &driver.Error{Driver: DriverName, Err: fmt.Errorf("statement %q returns no rows", s.query)}
	}
}

func (s *stmt) Close() error {
	calls.Add(1)
	return nil
}

func trailingCount(query string) (int, error) {
	fields := strings.Fields(query)
	if len(fields) != 2 {
		return 0, &driver.Error{Driver: DriverName, Err: fmt.Errorf("cannot parse %q", query)}
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return 0, &driver.Error{Driver: DriverName, Err: fmt.Errorf("cannot parse %q", query)}
	}
	return n, nil
}

var resultSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int32},
	{Name: "username", Type: arrow.BinaryTypes.String},
}, nil)

type batchReader struct {
	next      int
	remaining int
	maxRows   int
}

func (r *batchReader) Schema() *arrow.Schema { return resultSchema }

func (r *batchReader) Next() (arrow.Record, error) {
	calls.Add(1)
	if r.remaining == 0 {
		return nil, io.EOF
	}
	n := r.remaining
	if n > r.maxRows {
		n = r.maxRows
	}
	builder := array.NewRecordBuilder(memory.DefaultAllocator, resultSchema)
	defer builder.Release()
	ids := builder.Field(0).(*array.Int32Builder)
	names := builder.Field(1).(*array.StringBuilder)
	for i := 0; i < n; i++ {
		ids.Append(int32(r.next))
		names.Append(fmt.Sprintf("user%d", r.next))
		r.next++
	}
	r.remaining -= n
	return builder.NewRecord(), nil
}

func (r *batchReader) Close() error {
	calls.Add(1)
	return nil
}
