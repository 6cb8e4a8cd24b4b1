package classlayer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/classlayer/classlayer/internal/core"
	"github.com/classlayer/classlayer/internal/nativestage"
)

// Compile-time interface satisfaction checks.
var (
	_ Pool       = (*poolWrapper)(nil)
	_ TaskLoader = (*taskLoaderWrapper)(nil)
)

// poolWrapper wraps core.LoaderPool to implement the Pool interface.
//
// The core.LoaderPool is stored as a named (unexported) field rather than
// embedded to keep internal/core out of the public method set.
type poolWrapper struct {
	pool *core.LoaderPool
}

func (w *poolWrapper) Checkout(classPath ClassPath, tempDir string) (TaskLoader, error) {
	t, err := w.pool.Checkout(classPath, tempDir)
	if err != nil {
		return nil, err
	}
	return &taskLoaderWrapper{task: t}, nil
}

func (w *poolWrapper) Close() error {
	return w.pool.Close()
}

// taskLoaderWrapper wraps core.TaskLoader to implement the TaskLoader
// interface, for the same reason poolWrapper wraps core.LoaderPool.
type taskLoaderWrapper struct {
	task *core.TaskLoader
}

func (w *taskLoaderWrapper) LoadClass(name string, resolve bool) (*Class, error) {
	return w.task.LoadClass(name, resolve)
}

func (w *taskLoaderWrapper) FindResource(name string) (string, bool) {
	return w.task.FindResource(name)
}

func (w *taskLoaderWrapper) FindNativeLibrary(name string) (string, error) {
	return w.task.FindNativeLibrary(name)
}

func (w *taskLoaderWrapper) Close() error {
	return w.task.Close()
}

// resolveNativeSearchPath returns the configured search path, falling back
// to CLASSLAYER_LIBRARY_PATH split the platform way, or nil if neither is
// set.
func resolveNativeSearchPath(configured []string) []string {
	if configured != nil {
		return configured
	}
	v, ok := os.LookupEnv(NativeSearchPathEnv)
	if !ok || v == "" {
		return nil
	}
	return filepath.SplitList(v)
}

// NewPool constructs a Pool over dependencyClassPath, delegating any name
// it cannot resolve itself to parent.
//
// This performs no I/O; the pool's dependency loader is created lazily on
// the first Checkout.
//
// NewPool itself does not panic on option values: the With* constructors
// panic when called with an invalid value. See individual With* functions
// for constraints.
func NewPool(dependencyClassPath ClassPath, parent ModuleSource, opts ...PoolOption) (Pool, error) {
	var cfg poolConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	loaderCfg := core.LoaderConfig{
		Parent:           parent,
		AllowZombies:     cfg.allowZombies,
		NativeSearchPath: resolveNativeSearchPath(cfg.nativeSearchPath),
		Log:              cfg.log,
	}

	pool, err := core.NewLoaderPool(core.PoolConfig{
		LoaderConfig:        loaderCfg,
		DependencyClassPath: dependencyClassPath,
	})
	if err != nil {
		return nil, err
	}
	return &poolWrapper{pool: pool}, nil
}

// Shutdown deletes every native library staged by this process that is
// still tracked by the process-wide registry.
//
// Go has no JVM-style shutdown-hook guarantee on a normal process exit;
// this package installs a SIGINT/SIGTERM handler that calls Shutdown
// automatically, but a process exiting by another path (os.Exit elsewhere,
// a parent process killing it with SIGKILL, a panic recovered and
// swallowed upstream) will not trigger it. Callers that exit normally
// should call Shutdown themselves before returning from main.
func Shutdown(ctx context.Context) error {
	return nativestage.Default().Drain(ctx)
}

// EnableDurableStaging opens a manifest database under root and attaches it
// to the process-wide native-library registry, so every staged file is also
// recorded durably. Use this when the host build tool's own process can be
// killed without warning (CI runner timeout, OOM kill): without it, a crash
// that skips Shutdown leaks staged files with no record of their existence.
//
// The returned close func releases the manifest's database handle and
// cross-process lock; callers should defer it alongside Shutdown.
func EnableDurableStaging(root string) (close func() error, err error) {
	m, err := nativestage.OpenManifest(root)
	if err != nil {
		return nil, err
	}
	nativestage.Default().SetManifest(m)
	return m.Close, nil
}

// PruneStaleStaging removes every row from the manifest under root whose
// backing file no longer exists, along with any staging directory that
// removal leaves empty. Call it once at startup, before the first Checkout,
// to recover from a previous process that exited without running Shutdown.
func PruneStaleStaging(root string) (int, error) {
	return nativestage.PruneOrphans(root)
}
