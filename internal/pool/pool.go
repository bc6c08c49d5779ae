// Package pool provides a bounded fork-join pool shared by the move
// generator and the game tree builder.
package pool

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultWorkers is used when New is given a non-positive size.
const DefaultWorkers = 4

// Pool bounds the number of tasks running on extra goroutines. Tokens are
// global to the pool, so nested groups share the same budget. A fork that
// cannot get a token runs inline on the caller; a join therefore never waits
// on work that has no goroutine to run it.
type Pool struct {
	workers int
	sem     *semaphore.Weighted // nil when workers == 1
}

// New creates a pool allowing up to workers concurrent tasks. With one worker
// every task runs inline, in fork order.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	p := &Pool{workers: workers}
	if workers > 1 {
		// The caller's goroutine is a worker too.
		p.sem = semaphore.NewWeighted(int64(workers - 1))
	}
	return p
}

// NewFromCPU creates a pool sized to GOMAXPROCS.
func NewFromCPU() *Pool {
	return New(runtime.GOMAXPROCS(0))
}

// Workers returns the configured concurrency.
func (p *Pool) Workers() int {
	return p.workers
}

// Group is one fork-join scope. Fork may be called from a single goroutine;
// Join waits for all forked tasks and returns the first error.
type Group struct {
	pool   *Pool
	eg     *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	inlineErr error
}

// Group opens a fork-join scope bound to ctx. The first failing task
// cancels the context seen by its siblings.
func (p *Pool) Group(ctx context.Context) *Group {
	cctx, cancel := context.WithCancel(ctx)
	eg, gctx := errgroup.WithContext(cctx)
	return &Group{pool: p, eg: eg, ctx: gctx, cancel: cancel}
}

// Context returns the context passed to forked tasks.
func (g *Group) Context() context.Context {
	return g.ctx
}

// Fork schedules fn. It runs on a new goroutine if a token is free,
// otherwise immediately on the caller.
func (g *Group) Fork(fn func(ctx context.Context) error) {
	sem := g.pool.sem
	if sem != nil && sem.TryAcquire(1) {
		g.eg.Go(func() error {
			defer sem.Release(1)
			return fn(g.ctx)
		})
		return
	}
	if err := fn(g.ctx); err != nil {
		g.mu.Lock()
		if g.inlineErr == nil {
			g.inlineErr = err
		}
		g.mu.Unlock()
		g.cancel()
	}
}

// Join waits for every forked task. It returns the first inline error if
// any, otherwise the first error from a pooled task.
func (g *Group) Join() error {
	err := g.eg.Wait()
	g.cancel()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inlineErr != nil {
		return g.inlineErr
	}
	return err
}

// Run forks n tasks fn(ctx, 0..n-1) and joins them.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g := p.Group(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Fork(func(ctx context.Context) error {
			return fn(ctx, i)
		})
	}
	return g.Join()
}
