// Package async provides a concurrency-safe façade over driver
// connections. Every connection is served by a dedicated worker task
// running on a shared, bounded goroutine pool; callers hand commands to
// the worker over a channel and wait on a per-request reply channel.
//
// The worker owns the driver connection exclusively, so backends with
// thread-affine handles work unchanged. Commands are applied strictly
// in the order they are submitted. Cancelling a context abandons the
// pending reply without disturbing the worker, so a slow statement
// never wedges the connection for later callers.
package async
