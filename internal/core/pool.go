package core

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LoaderPool is the single-slot cache described in the design: it owns at
// most one idle DependencyLoader at a time, checked out to callers as the
// parent of a fresh TaskLoader and returned (or closed) on TaskLoader.Close.
//
// Checkout and checkin are linearizable with respect to the slot: both hold
// mu for their entire slot-mutating section, which installs the new
// occupant and observes the closed flag atomically. There is no separate
// "recheck closed after install" step because nothing can close the pool
// between those two statements while mu is held.
type LoaderPool struct {
	cfg PoolConfig

	mu     sync.Mutex
	slot   *DependencyLoader
	closed bool

	nextID atomic.Uint64
}

// NewLoaderPool validates cfg and constructs an empty pool over it.
func NewLoaderPool(cfg PoolConfig) (*LoaderPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LoaderPool{cfg: cfg}, nil
}

// Checkout takes the slot's DependencyLoader if present, or creates a fresh
// one over the pool's dependency classpath and parent, configures it for
// this checkout via setup, and wraps it in a new TaskLoader over fullCP.
func (p *LoaderPool) Checkout(fullCP ClassPath, tempDir string) (*TaskLoader, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	dep := p.slot
	p.slot = nil
	p.mu.Unlock()

	if dep == nil {
		dep = newDependencyLoader(p.cfg, fmt.Sprintf("dependency-%d", p.nextID.Add(1)))
	}
	dep.setup(tempDir)

	t := newTaskLoader(fullCP, p.cfg.LoaderConfig, dep, p, fmt.Sprintf("task-%d", p.nextID.Add(1)))
	return t, nil
}

// checkin is called by a TaskLoader's Close. A dirty loader is always
// closed. A clean loader is closed if the pool itself is closed; otherwise
// it is installed into the slot, closing whatever it displaces — "last
// returned wins", since the displaced occupant is still perfectly usable
// and only one warm instance needs to remain.
func (p *LoaderPool) checkin(dep *DependencyLoader) {
	if dep.isDirty() {
		_ = dep.close()
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = dep.close()
		return
	}
	prev := p.slot
	p.slot = dep
	p.mu.Unlock()

	if prev != nil {
		_ = prev.close()
	}
}

// Close marks the pool closed and closes the current slot occupant, if any.
// Subsequent Checkout calls fail with ErrPoolClosed; subsequent checkins
// close their argument instead of populating the slot. Idempotent.
func (p *LoaderPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	prev := p.slot
	p.slot = nil
	p.mu.Unlock()

	if prev != nil {
		return prev.close()
	}
	return nil
}
