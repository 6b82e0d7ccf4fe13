// Package lifecycle coordinates startup and shutdown hooks and aggregates
// named readiness checks for health endpoints.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// CheckFunc adapts a function to ReadinessChecker.
type CheckFunc func() bool

// Ready calls f.
func (f CheckFunc) Ready() bool { return f() }

// Report is a readiness snapshot. Ready is true only when startup has
// completed and every registered check passes.
type Report struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks,omitempty"`
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu      sync.RWMutex
	started bool
	checks  map[string]ReadinessChecker

	stopOnce sync.Once
	stopErr  error
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]ReadinessChecker),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// AddCheck registers a named readiness check. A later registration under
// the same name replaces the earlier one.
func (c *Coordinator) AddCheck(name string, check ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Ready reports whether startup has completed and every check passes.
func (c *Coordinator) Ready() bool {
	return c.Report().Ready
}

// Report evaluates every registered check.
func (c *Coordinator) Report() Report {
	c.mu.RLock()
	started := c.started
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	r := Report{Ready: started && c.ctx.Err() == nil}
	if len(checks) == 0 {
		return r
	}

	r.Checks = make(map[string]bool, len(checks))
	for name, check := range checks {
		ok := check.Ready()
		r.Checks[name] = ok
		r.Ready = r.Ready && ok
	}
	return r
}

// WaitForStartup blocks until all startup hooks have completed and marks
// the coordinator started.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout. Only the first call waits; later calls return
// its result.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.stopOnce.Do(func() {
		c.cancel()

		done := make(chan struct{})
		go func() {
			c.shutdownWg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			c.stopErr = fmt.Errorf("shutdown timeout after %v", timeout)
		}
	})
	return c.stopErr
}
