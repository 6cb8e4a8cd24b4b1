package nativestage

import "github.com/classlayer/classlayer/internal/sentinel"

const (
	// ErrStagingFailure wraps a native-library copy failure. The logical
	// name is not recorded as mapped, so a subsequent request may retry.
	ErrStagingFailure = sentinel.Error("classlayer: native library staging failed")

	// ErrLibraryNotFound is returned when a logical name does not resolve
	// to any file on the search path.
	ErrLibraryNotFound = sentinel.Error("classlayer: native library not found")

	// ErrNoTempDir is returned when FindLibrary is called before a temp
	// directory has been configured.
	ErrNoTempDir = sentinel.Error("classlayer: no temp directory configured for staging")
)
