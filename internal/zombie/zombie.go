// Package zombie implements the fallback lookup path for a loader after it
// has been closed: background threads from a finished task may still issue
// class lookups, and returning a bare not-found (or worse, panicking) would
// produce an opaque failure far from its cause. A Fallback keeps serving
// those lookups from disk and reports the most likely explanation when it
// can't.
package zombie

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Fallback is a secondary lookup path retained by a closed loader. It is
// lazily constructed on the first post-close lookup and then reused for
// every subsequent one.
//
// Values loaded through Fallback are returned as any rather than a concrete
// core type, so this package has no dependency on the loader package that
// constructs it — the loader package adapts the untyped result back to its
// own class type.
type Fallback struct {
	classPath []string
	// findClass performs the real lookup (typically re-reading the same
	// classpath the closed loader used).
	findClass func(name string) (any, error)
	// alreadyDefined reports whether the closed loader itself already
	// defined name before it was closed — a closed loader still answers
	// this query even though it no longer serves fresh lookups.
	alreadyDefined func(name string) (any, bool)
	log            *slog.Logger

	mu sync.Mutex
}

// New constructs a Fallback over classPath. findClass and alreadyDefined
// must not be nil.
func New(classPath []string, findClass func(string) (any, error), alreadyDefined func(string) (any, bool), log *slog.Logger) *Fallback {
	return &Fallback{
		classPath:      classPath,
		findClass:      findClass,
		alreadyDefined: alreadyDefined,
		log:            log,
	}
}

// FindClass resolves name, preferring a class the owning loader already
// defined before it closed. On a not-found result it scans classPath for
// entries whose backing file is missing and, if any are, writes a
// diagnostic directly to stderr before returning the error — logging may
// itself have been shut down by the time a zombie lookup arrives.
func (f *Fallback) FindClass(name string) (any, error) {
	if v, ok := f.alreadyDefined(name); ok {
		return v, nil
	}

	v, err := f.findClass(name)
	if err != nil {
		f.reportMissingEntries(name)
		return nil, err
	}
	if f.log != nil {
		f.log.Debug("resolved class through zombie fallback", "name", name)
	}
	return v, nil
}

// reportMissingEntries scans classPath for entries whose backing file no
// longer exists and, if any are found, writes a diagnostic to stderr
// enumerating them. This bypasses the configured log sink deliberately:
// a zombie lookup can arrive after the host process has torn down logging.
func (f *Fallback) reportMissingEntries(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var missing []string
	for _, p := range f.classPath {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr,
		"classlayer: zombie lookup for %q failed; the following classpath entries no longer exist "+
			"and may have been removed by a shutdown hook: %v\n",
		name, missing)
}
