package core

import (
	"errors"
	"sync"
)

// TaskLoader is the per-task bottom layer. It holds the task's dynamic
// classpath; its parent is a DependencyLoader, with which it registers
// itself as the reverse-edge descendant on construction.
type TaskLoader struct {
	*managedLoader

	id     string
	parent *DependencyLoader
	pool   *LoaderPool
	lock   classLock

	mu     sync.Mutex
	loaded map[string]*LoadedClass

	closeOnce sync.Once
	closeErr  error
}

func newTaskLoader(classPath ClassPath, cfg LoaderConfig, parent *DependencyLoader, pool *LoaderPool, id string) *TaskLoader {
	t := &TaskLoader{
		id:     id,
		parent: parent,
		pool:   pool,
		loaded: make(map[string]*LoadedClass),
	}
	t.managedLoader = newManagedLoader(classPath, cfg, id, t.getLoaded)
	parent.registerDescendant(t)
	return t
}

func (t *TaskLoader) getLoaded(name string) (*LoadedClass, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	lc, ok := t.loaded[name]
	return lc, ok
}

func (t *TaskLoader) setLoaded(name string, lc *LoadedClass) {
	t.mu.Lock()
	t.loaded[name] = lc
	t.mu.Unlock()
}

// LoadClass implements the lookup protocol: already-loaded classes return
// immediately; otherwise the parent is consulted with reverseLookup=false
// (so the parent's own reverse edge never calls back into this same lookup);
// if the parent raises not-found, this loader resolves the name against its
// own dynamic classpath.
func (t *TaskLoader) LoadClass(name string, resolve bool) (*LoadedClass, error) {
	if lc, ok := t.getLoaded(name); ok {
		return lc, nil
	}

	lc, err := t.parent.loadClass(name, false, false)
	if err == nil {
		t.setLoaded(name, lc)
		return lc, nil
	}
	if !errors.Is(err, ErrClassNotFound) {
		return nil, err
	}
	return t.findClassLocal(name)
}

// lookupClass is the public entry the parent's reverse edge invokes. It
// calls straight into this loader's own findClass, skipping the
// parent-delegation step that LoadClass performs.
func (t *TaskLoader) lookupClass(name string) (*LoadedClass, error) {
	return t.findClassLocal(name)
}

// findClassLocal is double-checked under the per-name lock: check loaded,
// lock, check loaded again, otherwise delegate to the base classpath find
// (which itself redirects to the ZombieFallback once this loader is closed).
func (t *TaskLoader) findClassLocal(name string) (*LoadedClass, error) {
	if lc, ok := t.getLoaded(name); ok {
		return lc, nil
	}
	return t.lock.withLock(name, func() (*LoadedClass, error) {
		if lc, ok := t.getLoaded(name); ok {
			return lc, nil
		}
		lc, err := t.managedLoader.findClass(name)
		if err != nil {
			return nil, err
		}
		t.setLoaded(name, lc)
		return lc, nil
	})
}

// FindResource resolves name against this loader's dynamic classpath, or
// the ZombieFallback once closed.
func (t *TaskLoader) FindResource(name string) (string, bool) {
	return t.managedLoader.findResource(name)
}

// FindNativeLibrary resolves a logical native library name against the
// configured native search path, staging a copy into this task's temp
// directory on first request and returning the cached path on repeat
// requests for the same name. Staging goes through the parent
// DependencyLoader's stager, which setup pointed at this checkout's temp
// directory.
func (t *TaskLoader) FindNativeLibrary(name string) (string, error) {
	return t.parent.stager.FindLibrary(name)
}

// Close returns the parent DependencyLoader to the pool and then closes
// this loader. The ordering matters: the parent is still live while the
// pool decides its fate, and only the pool's checkin may close it.
// Idempotent: a second Close is a no-op returning the first call's error.
func (t *TaskLoader) Close() error {
	t.closeOnce.Do(func() {
		t.pool.checkin(t.parent)
		t.closeErr = t.managedLoader.close()
	})
	return t.closeErr
}
