// Package lifecycle coordinates startup and shutdown of long-running subsystems.
//
// Hooks start running as soon as they are registered. Startup hooks report
// readiness by returning; shutdown hooks block on Context().Done() and then
// release their resources.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShutdownTimeout is returned when shutdown hooks outlive the shutdown deadline.
var ErrShutdownTimeout = errors.New("shutdown timeout")

// Coordinator tracks the startup and shutdown hooks of one process.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	starting sync.WaitGroup
	stopping sync.WaitGroup
	ready    atomic.Bool
}

// New creates a Coordinator whose context is cancelled by Shutdown.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

func (c *Coordinator) OnStartup(fn func()) {
	c.starting.Go(fn)
}

// OnShutdown registers a cleanup hook. The hook must block on
// <-c.Context().Done() before releasing anything.
func (c *Coordinator) OnShutdown(fn func()) {
	c.stopping.Go(fn)
}

// Ready reports whether every startup hook has completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until the startup hooks return, then marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.starting.Wait()
	c.ready.Store(true)
}

// Shutdown clears readiness, cancels the context, and waits up to timeout
// for the shutdown hooks. Calling it again only waits again.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.stopping.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w after %v", ErrShutdownTimeout, timeout)
	}
}
