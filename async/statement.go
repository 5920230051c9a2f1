package async

import (
	"context"
	"errors"
	"sync/atomic"

	squill "github.com/squill-app/squill-drivers"
	"github.com/squill-app/squill-drivers/values"
)

// Statement is a handle to a prepared statement living on a
// connection's worker. The driver statement itself never leaves the
// worker; the handle only names it.
type Statement struct {
	conn   *Connection
	handle uint64
	closed atomic.Bool
}

// Execute runs the statement with the given parameters and reports the
// number of affected rows.
func (s *Statement) Execute(ctx context.Context, params values.Parameters) (uint64, error) {
	if s.closed.Load() {
		return 0, squill.ErrClosed
	}
	r, err := s.conn.roundTrip(ctx, command{kind: cmdStmtExecute, handle: s.handle, params: params})
	if err != nil {
		return 0, err
	}
	return r.affected, nil
}

// Query runs the statement with the given parameters and returns an
// iterator over the result.
func (s *Statement) Query(ctx context.Context, params values.Parameters) (*Rows, error) {
	if s.closed.Load() {
		return nil, squill.ErrClosed
	}
	r, err := s.conn.roundTrip(ctx, command{kind: cmdStmtQuery, handle: s.handle, params: params})
	if err != nil {
		return nil, err
	}
	return &Rows{conn: s.conn, cursor: r.handle, schema: r.schema, index: -1}, nil
}

// QueryRow runs the statement and returns its single row fully
// decoded, or squill.ErrNoRows on an empty result.
func (s *Statement) QueryRow(ctx context.Context, params values.Parameters) ([]values.Value, error) {
	rows, err := s.Query(ctx, params)
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

// Close releases the worker-side statement. Close is idempotent; a
// statement left open is released when the connection closes.
func (s *Statement) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	_, err := s.conn.roundTrip(context.Background(), command{kind: cmdStmtClose, handle: s.handle})
	if errors.Is(err, squill.ErrClosed) {
		return nil
	}
	return err
}
