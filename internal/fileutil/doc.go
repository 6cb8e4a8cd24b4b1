// Package fileutil provides file operation utilities for directory and file management.
//
// EnsureDir creates directories recursively, and CopyFile copies files with
// support for explicit permissions, fsync, and atomic writes via temp-file-then-rename.
// CopyFile is used by the native-library stager to copy shared objects into a
// loader's temp directory.
package fileutil
