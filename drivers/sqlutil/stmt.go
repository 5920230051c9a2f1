package sqlutil

import (
	"database/sql"

	"github.com/squill-app/squill-drivers/driver"
	"github.com/squill-app/squill-drivers/values"
)

// Stmt adapts a database/sql prepared statement to the driver
// contract. Backends fill it in from their Prepare.
type Stmt struct {
	Inner   *sql.Stmt
	Name    string
	Mapper  TypeMapper
	MaxRows int

	args []any
}

// Bind converts and stores the parameters for the next execution.
func (s *Stmt) Bind(params values.Parameters) error {
	args, err := Args(params)
	if err != nil {
		return &driver.Error{Driver: s.Name, Err: err}
	}
	s.args = args
	return nil
}

// Execute runs the statement and reports the number of affected rows.
func (s *Stmt) Execute() (uint64, error) {
	res, err := s.Inner.Exec(s.args...)
	if err != nil {
		return 0, &driver.Error{Driver: s.Name, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil || affected < 0 {
		return 0, nil
	}
	return uint64(affected), nil
}

// Query runs the statement and streams the result as record batches.
func (s *Stmt) Query() (driver.BatchReader, error) {
	rows, err := s.Inner.Query(s.args...)
	if err != nil {
		return nil, &driver.Error{Driver: s.Name, Err: err}
	}
	reader, err := NewBatchReader(rows, s.Mapper, s.MaxRows)
	if err != nil {
		return nil, &driver.Error{Driver: s.Name, Err: err}
	}
	return reader, nil
}

// Close finalizes the statement.
func (s *Stmt) Close() error {
	return s.Inner.Close()
}
