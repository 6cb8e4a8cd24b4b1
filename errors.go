package classlayer

import "github.com/classlayer/classlayer/internal/core"

// Sentinel errors for error inspection with errors.Is.
//
// These use the sentinel.Error const pattern instead of errors.New vars.
// sentinel.Error is a string type implementing error, allowing errors to be
// declared as const. This prevents accidental reassignment and enables
// compile-time immutability, while remaining compatible with errors.Is
// through Go's default == comparison on comparable types.
const (
	// ErrClassNotFound is returned when a class name cannot be resolved
	// anywhere in a loader's visible classpath, including its parent chain.
	ErrClassNotFound = core.ErrClassNotFound

	// ErrResourceNotFound is returned when a resource path cannot be
	// resolved against a loader's classpath.
	ErrResourceNotFound = core.ErrResourceNotFound

	// ErrPoolClosed is returned by Checkout when the pool has been closed.
	ErrPoolClosed = core.ErrPoolClosed

	// ErrStagingFailure is returned when a native library's backing file
	// was found but could not be copied into the task's temp directory.
	ErrStagingFailure = core.ErrStagingFailure

	// ErrLibraryNotFound is returned when no entry on the native search
	// path contains the requested library's platform filename.
	ErrLibraryNotFound = core.ErrLibraryNotFound

	// ErrNoTempDir is returned when a native library is requested before
	// a temp directory has been assigned to the loader (setup not yet
	// called, i.e. before the first checkout of a reused loader).
	ErrNoTempDir = core.ErrNoTempDir
)
