package async

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/squill-app/squill-drivers/config"
)

// BridgeError reports a failure in the machinery between a caller and
// a connection worker, as opposed to an error from the database itself.
type BridgeError struct {
	Op  string
	Err error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("async: %s: %v", e.Op, e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }

var (
	poolOnce sync.Once
	pool     *ants.Pool
	poolErr  error
)

// workerPool lazily builds the shared pool that hosts connection
// workers. Its size caps the number of concurrently open async
// connections; the pool is nonblocking, so opening one connection too
// many fails immediately instead of queueing.
func workerPool() (*ants.Pool, error) {
	poolOnce.Do(func() {
		pool, poolErr = ants.NewPool(config.Get().Worker.PoolSize, ants.WithNonblocking(true))
	})
	return pool, poolErr
}

// spawn submits a long-lived worker task to the shared pool.
func spawn(task func()) error {
	p, err := workerPool()
	if err != nil {
		return &BridgeError{Op: "worker pool", Err: err}
	}
	if err := p.Submit(task); err != nil {
		return &BridgeError{Op: "worker unavailable", Err: err}
	}
	return nil
}
