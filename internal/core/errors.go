package core

import (
	"github.com/classlayer/classlayer/internal/nativestage"
	"github.com/classlayer/classlayer/internal/sentinel"
)

// Sentinel errors surfaced by the classloader core. See classlayer/errors.go
// for the public re-exports.
const (
	// ErrClassNotFound is returned when a class cannot be resolved on any
	// layer that was consulted. Recoverable only at the two protocol points
	// documented on DependencyLoader and TaskLoader; surfaced unchanged
	// everywhere else.
	ErrClassNotFound = sentinel.Error("classlayer: class not found")

	// ErrResourceNotFound is returned when a resource path cannot be
	// resolved on any consulted layer.
	ErrResourceNotFound = sentinel.Error("classlayer: resource not found")

	// ErrPoolClosed is returned by Checkout after the pool has been closed.
	// Callers should clear any cached handles and not retry against this pool.
	ErrPoolClosed = sentinel.Error("classlayer: pool is closed")
)

// Native-library staging errors are defined on nativestage and re-exported
// here under the same names, so callers of core need only import this
// package even though the underlying sentinel lives with the Stager.
const (
	ErrStagingFailure  = nativestage.ErrStagingFailure
	ErrLibraryNotFound = nativestage.ErrLibraryNotFound
	ErrNoTempDir       = nativestage.ErrNoTempDir
)
