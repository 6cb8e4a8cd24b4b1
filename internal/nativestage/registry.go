package nativestage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// drainConcurrency bounds how many staged files are deleted in parallel
// during Drain, mirroring the bounded errgroup fan-out the teacher uses for
// concurrent CRD document application.
const drainConcurrency = 8

// Registry is the process-wide set of staged native-library files plus the
// one-shot shutdown hook that deletes them. It is a singleton resource:
// every loader in the process shares the same Registry so a library staged
// by one loader is tracked for cleanup regardless of which loader staged it.
type Registry struct {
	log      *slog.Logger
	manifest *Manifest

	mu         sync.Mutex
	files      map[string]struct{}
	byIdentity map[fileIdentity]string

	hookOnce sync.Once
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide Registry singleton, creating it on first
// use with slog.Default().
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(nil)
	})
	return defaultRegistry
}

// NewRegistry constructs a standalone Registry. Most callers want Default();
// a distinct Registry is useful in tests that need isolation from other
// tests' staged files.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:        log,
		files:      make(map[string]struct{}),
		byIdentity: make(map[fileIdentity]string),
	}
}

// SetManifest attaches a durable manifest that mirrors every Register and
// Delete call. Most callers never need this; it is for a host build tool
// that wants staged files to survive a crash that skips the shutdown hook,
// recoverable on the next startup via PruneOrphans.
func (r *Registry) SetManifest(m *Manifest) {
	r.mu.Lock()
	r.manifest = m
	r.mu.Unlock()
}

// Register records path as staged and installs the shutdown hook on first
// use. It does not itself create the file; callers stage the file and then
// register it. logicalName and ownerID are forwarded to the attached
// manifest, if any, purely for diagnostics.
func (r *Registry) Register(path, logicalName, ownerID string) {
	r.mu.Lock()
	r.files[path] = struct{}{}
	m := r.manifest
	r.mu.Unlock()
	r.installShutdownHookOnce()
	if m != nil {
		if err := m.Record(path, logicalName, ownerID, time.Now()); err != nil {
			r.log.Warn("record staged file in manifest", "path", path, "error", err)
		}
	}
}

// Delete removes path from the registry and deletes the underlying file,
// along with its containing directory if that directory becomes empty.
func (r *Registry) Delete(path string) error {
	r.mu.Lock()
	delete(r.files, path)
	m := r.manifest
	r.mu.Unlock()
	if m != nil {
		if err := m.Forget(path); err != nil {
			r.log.Warn("forget staged file in manifest", "path", path, "error", err)
		}
	}
	return removeFileAndEmptyDir(path)
}

// canonicalPath returns a staged path previously recorded for id, so a new
// logical name resolving to the same underlying file can be hardlinked
// instead of re-copied.
func (r *Registry) canonicalPath(id fileIdentity) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byIdentity[id]
	return p, ok
}

func (r *Registry) recordIdentity(id fileIdentity, path string) {
	r.mu.Lock()
	r.byIdentity[id] = path
	r.mu.Unlock()
}

// Drain deletes every currently staged file concurrently (bounded fan-out)
// and clears the registry. It is safe to call more than once; a second call
// has nothing to drain.
func (r *Registry) Drain(ctx context.Context) error {
	r.mu.Lock()
	paths := make([]string, 0, len(r.files))
	for p := range r.files {
		paths = append(paths, p)
	}
	r.files = make(map[string]struct{})
	r.byIdentity = make(map[fileIdentity]string)
	r.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(drainConcurrency)
	for _, p := range paths {
		g.Go(func() error {
			return removeFileAndEmptyDir(p)
		})
	}
	return g.Wait()
}

// installShutdownHookOnce arranges for Drain to run once on SIGINT/SIGTERM.
// Go has no JVM-style hook on normal process exit, so a caller that exits
// without a signal (return from main, explicit os.Exit elsewhere) must call
// Drain or the owning Shutdown wrapper itself; this hook only covers the
// signal-driven case.
func (r *Registry) installShutdownHookOnce() {
	r.hookOnce.Do(func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-c
			if err := r.Drain(context.Background()); err != nil {
				r.log.Warn("drain native library registry on shutdown", "error", err)
			}
			signal.Stop(c)
			if sig == syscall.SIGINT {
				os.Exit(130)
			}
			os.Exit(143)
		}()
	})
}

func removeFileAndEmptyDir(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
	return nil
}
