// Package nativestage stages native libraries referenced from loaded code:
// it resolves a logical name against a search path, copies the match into a
// loader's mutable temp directory, and tracks the copy in a process-wide
// Registry so it is cleaned up on shutdown.
package nativestage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/classlayer/classlayer/internal/fileutil"
)

// Stager is the capability mixed into every loader. findLibrary is
// serialized by mu because the host runtime may call it from multiple
// threads and the staged-file identity must be stable across callers.
type Stager struct {
	searchPath []string
	registry   *Registry
	ownerID    string
	log        *slog.Logger

	mu      sync.Mutex
	tempDir string
	mapped  map[string]string
	staged  map[fileIdentity]string
}

// NewStager constructs a Stager over searchPath. registry defaults to
// Default() if nil. ownerID identifies the owning loader in diagnostics.
func NewStager(searchPath []string, registry *Registry, ownerID string, log *slog.Logger) *Stager {
	if registry == nil {
		registry = Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Stager{
		searchPath: searchPath,
		registry:   registry,
		ownerID:    ownerID,
		log:        log,
		mapped:     make(map[string]string),
		staged:     make(map[fileIdentity]string),
	}
}

// FindLibrary resolves name against the loader's mapped table, staging it
// from the search path on first request. Repeated requests for the same
// name return the cached copy without touching the filesystem again.
func (s *Stager) FindLibrary(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.mapped[name]; ok {
		return p, nil
	}

	fileName := platformFileName(name)
	for _, dir := range s.searchPath {
		candidate := filepath.Join(dir, fileName)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		if s.tempDir == "" {
			return "", ErrNoTempDir
		}
		dst := filepath.Join(s.tempDir, fileName)

		if id, ok := identifyFile(candidate); ok {
			if canonical, ok := s.canonicalFor(id); ok && canonical != dst {
				if linkErr := os.Link(canonical, dst); linkErr == nil {
					s.mapped[name] = dst
					s.registry.Register(dst, name, s.ownerID)
					return dst, nil
				}
				// Cross-device or unsupported: fall through to a plain copy.
			}
			defer func() {
				s.staged[id] = dst
				s.registry.recordIdentity(id, dst)
			}()
		}

		if err := fileutil.CopyFile(candidate, dst, &fileutil.CopyFileOptions{Atomic: true}); err != nil {
			return "", fmt.Errorf("stage native library %q for %s: %w", name, s.ownerID, errors.Join(ErrStagingFailure, err))
		}
		s.mapped[name] = dst
		s.registry.Register(dst, name, s.ownerID)
		return dst, nil
	}

	return "", fmt.Errorf("%s: %w", name, ErrLibraryNotFound)
}

// canonicalFor checks this Stager's own current temp directory first, then
// the process-wide registry, for a file already staged with identity id.
func (s *Stager) canonicalFor(id fileIdentity) (string, bool) {
	if p, ok := s.staged[id]; ok {
		return p, true
	}
	return s.registry.canonicalPath(id)
}

// SetTempDir deletes every file currently recorded in mapped (via the
// Registry) and atomically replaces the loader's current temp directory.
// Subsequent FindLibrary calls re-stage against the new directory.
func (s *Stager) SetTempDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearMappedLocked()
	s.tempDir = dir
}

// Close resets the temp directory to the unreachable sentinel (empty
// string), which triggers the same deletion behavior as SetTempDir.
func (s *Stager) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearMappedLocked()
	s.tempDir = ""
	return nil
}

func (s *Stager) clearMappedLocked() {
	for name, p := range s.mapped {
		if err := s.registry.Delete(p); err != nil {
			s.log.Warn("delete staged native library", "name", name, "path", p, "error", err)
		}
	}
	s.mapped = make(map[string]string)
	s.staged = make(map[fileIdentity]string)
}
