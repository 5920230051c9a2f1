package driver

import (
	"errors"
	"fmt"
)

// Error wraps a backend failure with the name of the driver that
// produced it. Backends return Error from prepare, bind, execute and
// fetch paths so the façades can classify and report uniformly.
type Error struct {
	Driver string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Driver, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// connFatalError marks an error as fatal to the whole connection, not
// just the statement that triggered it.
type connFatalError struct {
	err error
}

func (e *connFatalError) Error() string { return e.err.Error() }

func (e *connFatalError) Unwrap() error { return e.err }

// ConnFatal marks err as connection-fatal. The façades react by
// transitioning the connection to Closed: every later operation fails
// immediately without reaching the backend again. Errors without the
// marker are statement-fatal at worst and leave the connection usable.
func ConnFatal(err error) error {
	if err == nil {
		return nil
	}
	return &connFatalError{err: err}
}

// IsConnFatal reports whether err carries the connection-fatal marker.
func IsConnFatal(err error) bool {
	var fatal *connFatalError
	return errors.As(err, &fatal)
}
