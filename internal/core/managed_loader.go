package core

import (
	"log/slog"
	"sync"

	"github.com/classlayer/classlayer/internal/nativestage"
	"github.com/classlayer/classlayer/internal/zombie"
)

// managedLoader is the base capability embedded by DependencyLoader and
// TaskLoader: a classpath-delegating lookup surface with a NativeStager and
// a ZombieFallback attached. Composition stands in for the single-inheritance
// base class described in the design: both concrete loader types embed
// *managedLoader and add their own lookup protocol on top of findClass/
// findResource.
type managedLoader struct {
	classPath      ClassPath
	allowZombies   bool
	log            *slog.Logger
	stager         *nativestage.Stager
	alreadyDefined func(name string) (*LoadedClass, bool)

	mu         sync.Mutex
	closed     bool
	warned     bool
	classFB    *zombie.Fallback
	resourceFB *zombie.Fallback
}

// newManagedLoader constructs a managedLoader over classPath. ownerID
// identifies the owning loader in stager diagnostics. alreadyDefined lets
// the embedding loader type answer "did I already define this class before
// I closed" queries from its own loaded-class cache; it may be nil for a
// loader type with no such cache.
func newManagedLoader(classPath ClassPath, cfg LoaderConfig, ownerID string, alreadyDefined func(string) (*LoadedClass, bool)) *managedLoader {
	log := cfg.logger()
	return &managedLoader{
		classPath:      classPath,
		allowZombies:   cfg.AllowZombies,
		log:            log,
		stager:         nativestage.NewStager(cfg.NativeSearchPath, nil, ownerID, log),
		alreadyDefined: alreadyDefined,
	}
}

func (m *managedLoader) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// findClass resolves name against this loader's own classpath, or against
// the ZombieFallback if the loader has been closed.
func (m *managedLoader) findClass(name string) (*LoadedClass, error) {
	if m.isClosed() {
		return m.zombieFindClass(name)
	}
	return NewFSModuleSource(m.classPath).Load(name)
}

// findResource resolves name against this loader's own classpath, or
// against the ZombieFallback if the loader has been closed.
func (m *managedLoader) findResource(name string) (string, bool) {
	if m.isClosed() {
		return m.zombieFindResource(name)
	}
	return findResource(m.classPath, name)
}

func (m *managedLoader) zombieFindClass(name string) (*LoadedClass, error) {
	m.warnOnce("class", name)
	v, err := m.getClassFallback().FindClass(name)
	if err != nil {
		return nil, err
	}
	return v.(*LoadedClass), nil
}

func (m *managedLoader) zombieFindResource(name string) (string, bool) {
	m.warnOnce("resource", name)
	v, err := m.getResourceFallback().FindClass(name)
	if err != nil {
		return "", false
	}
	return v.(string), true
}

func (m *managedLoader) getClassFallback() *zombie.Fallback {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.classFB == nil {
		m.classFB = zombie.New(
			m.classPath,
			func(name string) (any, error) {
				lc, err := NewFSModuleSource(m.classPath).Load(name)
				if err != nil {
					return nil, err
				}
				return lc, nil
			},
			func(name string) (any, bool) {
				if m.alreadyDefined == nil {
					return nil, false
				}
				lc, ok := m.alreadyDefined(name)
				if !ok {
					return nil, false
				}
				return lc, true
			},
			m.log,
		)
	}
	return m.classFB
}

func (m *managedLoader) getResourceFallback() *zombie.Fallback {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resourceFB == nil {
		m.resourceFB = zombie.New(
			m.classPath,
			func(name string) (any, error) {
				if p, ok := findResource(m.classPath, name); ok {
					return p, nil
				}
				return nil, ErrResourceNotFound
			},
			func(string) (any, bool) { return nil, false },
			m.log,
		)
	}
	return m.resourceFB
}

// warnOnce emits exactly one warning for the lifetime of this loader, on the
// first lookup that arrives after close (unless allowZombies is set).
func (m *managedLoader) warnOnce(kind, name string) {
	m.mu.Lock()
	warn := !m.warned && !m.allowZombies
	if warn {
		m.warned = true
	}
	m.mu.Unlock()
	if warn {
		m.log.Warn("zombie lookup after loader close", "kind", kind, "name", name)
	}
}

// close sets the closed flag and tears down the stager (which deletes every
// staged native library). It is idempotent. There is no base URL-loader
// resource to close beyond this: a Go plugin, once opened by the runtime,
// has no Close of its own.
func (m *managedLoader) close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	return m.stager.Close()
}
