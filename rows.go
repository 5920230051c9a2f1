package squill

import (
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/squill-app/squill-drivers/driver"
)

// Rows is a forward-only iterator over a query result. Batches are
// pulled from the driver on demand and rows are surfaced one at a time:
//
//	rows, err := conn.Query("SELECT id, username FROM users", squill.NoParams)
//	if err != nil { ... }
//	defer rows.Close()
//	for rows.Next() {
//	    id, err := squill.Get[int32](rows.Row(), 0)
//	    ...
//	}
//	if err := rows.Err(); err != nil { ... }
type Rows struct {
	stmt    *Statement
	reader  driver.BatchReader
	batch   arrow.Record
	index   int
	err     error
	done    bool
	closed  bool
	ownStmt bool
}

func newRows(stmt *Statement, reader driver.BatchReader, ownStmt bool) *Rows {
	return &Rows{stmt: stmt, reader: reader, index: -1, ownStmt: ownStmt}
}

// Schema describes the result columns. It is available before the
// first call to Next.
func (r *Rows) Schema() *arrow.Schema { return r.reader.Schema() }

// Next advances to the next row, fetching the next batch from the
// driver when the current one is exhausted. It returns false when the
// result is exhausted or an error occurred; check Err afterwards.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	r.index++
	for r.batch == nil || r.index >= int(r.batch.NumRows()) {
		if r.batch != nil {
			r.batch.Release()
			r.batch = nil
		}
		batch, err := r.reader.Next()
		if err != nil {
			r.done = true
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return false
		}
		r.batch = batch
		r.index = 0
	}
	return true
}

// Row returns a view over the current row. It is only valid after a
// call to Next that returned true, and only until the next call to
// Next or Close.
func (r *Rows) Row() Row {
	return NewRow(r.batch, r.index)
}

// Err returns the error that terminated iteration, if any.
func (r *Rows) Err() error { return r.err }

// Close releases the current batch and the underlying reader. When the
// iterator owns its statement, the statement is closed as well. Close
// is idempotent.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.batch != nil {
		r.batch.Release()
		r.batch = nil
	}
	r.done = true
	err := r.reader.Close()
	if r.ownStmt && r.stmt != nil {
		if cerr := r.stmt.Close(); err == nil {
			err = cerr
		}
		r.stmt = nil
	}
	return err
}
