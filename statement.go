package squill

import (
	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/values"
)

// Statement is a prepared statement on a blocking connection. It can
// be bound and executed repeatedly; parameters are replaced on each
// Bind, not accumulated.
type Statement struct {
	conn   *Connection
	inner  driver.Stmt
	closed bool
}

// Bind associates parameters with the statement, replacing any earlier
// binding. Binding a closed statement fails with ErrClosed.
func (s *Statement) Bind(params values.Parameters) error {
	if s.closed || s.conn.closed {
		return ErrClosed
	}
	return s.conn.fatalCheck(s.inner.Bind(params))
}

// Execute runs the statement with its bound parameters and reports the
// number of affected rows.
func (s *Statement) Execute() (uint64, error) {
	if s.closed || s.conn.closed {
		return 0, ErrClosed
	}
	affected, err := s.inner.Execute()
	if err != nil {
		return 0, s.conn.fatalCheck(err)
	}
	return affected, nil
}

// Query runs the statement with its bound parameters and returns an
// iterator over the result. The statement stays open and owned by the
// caller; closing the rows does not close it.
func (s *Statement) Query() (*Rows, error) {
	if s.closed || s.conn.closed {
		return nil, ErrClosed
	}
	reader, err := s.inner.Query()
	if err != nil {
		return nil, s.conn.fatalCheck(err)
	}
	return newRows(s, reader, false), nil
}

// QueryRow runs the statement and returns its single row fully
// decoded, or ErrNoRows on an empty result.
func (s *Statement) QueryRow() ([]values.Value, error) {
	rows, err := s.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return firstRow(rows)
}

// Close releases the driver statement. Close is idempotent.
func (s *Statement) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.inner.Close()
}
