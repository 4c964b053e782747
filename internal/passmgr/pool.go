package passmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"

	"kanso/internal/config"
	"kanso/internal/store"
)

// runPass dispatches one worker goroutine per pool slot, each pulling
// methods off a shared cursor, and reports the wall-clock time the pass
// took across all workers. Every method is owned by exactly one worker
// at a time, so a pass's CFG mutations (via Method.WithCFG) never race:
// concurrency happens across methods within a pass, never within one
// method's own CFG.
func (m *Manager) runPass(ctx context.Context, p Pass, s *store.Store, cfg *config.Config) (time.Duration, error) {
	methods := s.Methods()
	if len(methods) == 0 {
		start := time.Now()
		return time.Since(start), nil
	}

	pool := newMethodPool(methods)
	start := time.Now()

	errCh := make(chan error, m.workers)
	for w := 0; w < m.workers; w++ {
		go func() {
			errCh <- m.runWorker(ctx, p, pool, cfg)
		}()
	}

	var firstErr error
	for w := 0; w < m.workers; w++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return time.Since(start), firstErr
}

// runWorker drains methods from pool one at a time until it is empty or
// ctx is cancelled, calling p.RunMethod for each. Two workers never hold
// the same method at once (methodPool.next hands each one out exactly
// once), so a pass's Method.WithCFG calls never race with each other.
func (m *Manager) runWorker(ctx context.Context, p Pass, pool *methodPool, cfg *config.Config) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		method, ok := pool.next()
		if !ok {
			return nil
		}
		if err := p.RunMethod(ctx, method, cfg); err != nil {
			return fmt.Errorf("pass %s: method %s: %w", p.Name(), method.Name, err)
		}
	}
}

// methodPool is a shared, deadlock-instrumented cursor over a fixed
// method slice: a work-queue keyed on methods, minus actual stealing,
// since methods are handed out in order rather than re-balanced. That's
// enough to keep every worker busy without two workers ever touching
// the same method concurrently.
type methodPool struct {
	mu      deadlock.Mutex
	methods []*store.Method
	cursor  int
}

func newMethodPool(methods []*store.Method) *methodPool {
	return &methodPool{methods: methods}
}

func (p *methodPool) next() (*store.Method, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cursor >= len(p.methods) {
		return nil, false
	}
	m := p.methods[p.cursor]
	p.cursor++
	return m, true
}
