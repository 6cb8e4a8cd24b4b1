package classlayer

import "github.com/classlayer/classlayer/internal/core"

// ClassPath is an ordered sequence of artifact paths; order is significant
// for name resolution, since the first entry containing a name wins.
type ClassPath = core.ClassPath

// Class is the runtime handle returned for a successfully resolved class
// name. Two resolutions of the same underlying file carry the same runtime
// identity, the Go analog of a JVM classloader's "defines a class at most
// once" guarantee — provided here by the Go runtime's own plugin cache.
type Class = core.LoadedClass

// ModuleSource resolves a class name to a Class. The parent loader passed
// to NewPool is a ModuleSource — typically the host runtime's own root
// loader, wrapping whatever identity-caching it already performs.
type ModuleSource = core.ModuleSource

// Pool is the holder that owns at most one idle dependency-layer loader per
// (dependency classpath, parent) identity. It performs checkout and checkin
// and enforces invalidation on a dirty return.
//
// Callers follow this lifecycle:
//
//	NewPool → Checkout/TaskLoader.Close (repeatable) → Pool.Close
type Pool interface {
	// Checkout reuses the pool's idle dependency loader if present, or
	// creates a fresh one, and returns a new TaskLoader layered over it
	// with classPath as its own dynamic classpath. tempDir is where native
	// libraries requested through this checkout are staged.
	//
	// Returns ErrPoolClosed if the pool has been closed.
	Checkout(classPath ClassPath, tempDir string) (TaskLoader, error)

	// Close closes the pool's idle loader, if any, and marks the pool
	// closed: subsequent Checkout calls fail, and any TaskLoader still
	// checked out closes its parent on Close instead of returning it.
	Close() error
}

// TaskLoader is the per-task bottom layer returned by Checkout. Closing it
// first returns its parent dependency loader to the pool, then closes the
// task loader itself.
type TaskLoader interface {
	// LoadClass resolves name: already-loaded classes return immediately;
	// otherwise the parent dependency loader is consulted, falling back to
	// this loader's own dynamic classpath if the parent raises not-found.
	LoadClass(name string, resolve bool) (*Class, error)

	// FindResource resolves a resource path against this loader's dynamic
	// classpath.
	FindResource(name string) (string, bool)

	// FindNativeLibrary resolves a logical native library name against the
	// configured native search path, staging a copy into this task's temp
	// directory on first request. Repeat requests for the same name return
	// the already-staged path without touching the filesystem again.
	FindNativeLibrary(name string) (string, error)

	// Close returns the parent dependency loader to the pool and closes
	// this loader. Idempotent.
	Close() error
}
