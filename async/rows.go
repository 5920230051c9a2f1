package async

import (
	"context"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"

	squill "github.com/squill-app/squill-drivers"
)

// Rows is a forward-only iterator over an async query result. Each
// exhausted batch triggers one fetch round trip to the connection's
// worker; rows within a batch are served without crossing goroutines.
//
// A Rows may be consumed by one goroutine at a time.
type Rows struct {
	conn   *Connection
	cursor uint64
	schema *arrow.Schema
	batch  arrow.Record
	index  int
	err    error
	done   bool
}

// Schema describes the result columns. It is available before the
// first call to Next.
func (r *Rows) Schema() *arrow.Schema { return r.schema }

// Next advances to the next row, fetching the next batch from the
// worker when the current one is exhausted. It returns false when the
// result is exhausted or an error occurred; check Err afterwards.
func (r *Rows) Next(ctx context.Context) bool {
	if r.done {
		return false
	}
	r.index++
	for r.batch == nil || r.index >= int(r.batch.NumRows()) {
		if r.batch != nil {
			r.batch.Release()
			r.batch = nil
		}
		res, err := r.conn.roundTrip(ctx, command{kind: cmdFetch, handle: r.cursor})
		if err != nil {
			r.done = true
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return false
		}
		r.batch = res.batch
		r.index = 0
	}
	return true
}

// Row returns a view over the current row. It is only valid after a
// call to Next that returned true, and only until the next call to
// Next or Close.
func (r *Rows) Row() squill.Row {
	return squill.NewRow(r.batch, r.index)
}

// Err returns the error that terminated iteration, if any.
func (r *Rows) Err() error { return r.err }

// Close releases the current batch and the worker-side cursor. Close
// is idempotent; a cursor left open is released when the connection
// closes.
func (r *Rows) Close() error {
	if r.batch != nil {
		r.batch.Release()
		r.batch = nil
	}
	if r.done {
		return nil
	}
	r.done = true
	_, err := r.conn.roundTrip(context.Background(), command{kind: cmdCursorClose, handle: r.cursor})
	if errors.Is(err, squill.ErrClosed) {
		return nil
	}
	return err
}
