package core

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DependencyLoader is the cacheable middle layer. It holds the dependency
// classpath and differs from a plain delegating loader in two ways: it may
// consult a registered child via a reverse edge, and it exposes both a
// standard and an extended loadClass signature.
type DependencyLoader struct {
	*managedLoader

	id        string
	parent    ModuleSource
	classPath ClassPath
	lock      classLock

	mu     sync.Mutex
	loaded map[string]*LoadedClass

	descendant atomic.Pointer[TaskLoader]
	dirty      atomic.Bool
}

func newDependencyLoader(cfg PoolConfig, id string) *DependencyLoader {
	d := &DependencyLoader{
		id:        id,
		parent:    cfg.Parent,
		classPath: cfg.DependencyClassPath,
		loaded:    make(map[string]*LoadedClass),
	}
	d.managedLoader = newManagedLoader(cfg.DependencyClassPath, cfg.LoaderConfig, id, d.getLoaded)
	return d
}

func (d *DependencyLoader) getLoaded(name string) (*LoadedClass, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lc, ok := d.loaded[name]
	return lc, ok
}

func (d *DependencyLoader) setLoaded(name string, lc *LoadedClass) {
	d.mu.Lock()
	d.loaded[name] = lc
	d.mu.Unlock()
}

// LoadClass is the standard two-argument entry point; reverseLookup is
// implicitly true, matching the JVM loadClass(name, resolve) signature this
// mirrors.
func (d *DependencyLoader) LoadClass(name string, resolve bool) (*LoadedClass, error) {
	return d.loadClass(name, resolve, true)
}

// loadClass is the extended three-argument entry point. A child TaskLoader
// calls it with reverseLookup=false during its own bottom-up walk, so the
// parent does not call back down into the same child that is currently
// calling up into it — which would both recurse forever and spuriously
// dirty this loader.
//
// The entire method body runs under the per-name ClassLoadingLock, per the
// design note that all class lookups through DependencyLoader are wrapped
// in ClassLoadingLock.withLock(name).
func (d *DependencyLoader) loadClass(name string, resolve bool, reverseLookup bool) (*LoadedClass, error) {
	return d.lock.withLock(name, func() (*LoadedClass, error) {
		if lc, ok := d.getLoaded(name); ok {
			return lc, nil
		}

		lc, err := d.delegatedLookup(name)
		if err == nil {
			d.setLoaded(name, lc)
			return lc, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			return nil, err
		}
		if !reverseLookup {
			return nil, err
		}

		desc := d.descendant.Load()
		if desc == nil {
			return nil, err
		}
		lc, derr := desc.lookupClass(name)
		if derr != nil {
			return nil, derr
		}
		// A class captured through the reverse edge has an identity tied to
		// a transient TaskLoader; this loader must not be cached again.
		d.dirty.Store(true)
		d.setLoaded(name, lc)
		return lc, nil
	})
}

// delegatedLookup implements the standard parent-then-own-classpath order
// of a plain delegating loader, before any reverse-edge recovery.
func (d *DependencyLoader) delegatedLookup(name string) (*LoadedClass, error) {
	if d.parent != nil {
		lc, err := d.parent.Load(name)
		if err == nil {
			return lc, nil
		}
		if !errors.Is(err, ErrClassNotFound) {
			return nil, err
		}
	}
	return d.managedLoader.findClass(name)
}

// setup points the native stager at this checkout's temp directory. It is
// called once per checkout by LoaderPool. Resource lookups do not need a
// per-checkout view of the task's classpath: TaskLoader.FindResource already
// resolves directly against its own dynamic classpath, which is the same
// full classpath a parent-delegating lookup would otherwise fall through to.
func (d *DependencyLoader) setup(tempDir string) {
	d.stager.SetTempDir(tempDir)
}

// registerDescendant installs t as the sole reverse-edge child. It is only
// ever called from a TaskLoader's constructor and is overwritten on each
// checkout; by invariant the previous TaskLoader is already closed.
func (d *DependencyLoader) registerDescendant(t *TaskLoader) {
	d.descendant.Store(t)
}

func (d *DependencyLoader) isDirty() bool {
	return d.dirty.Load()
}

func (d *DependencyLoader) close() error {
	return d.managedLoader.close()
}
