package core

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"
)

// ClassPath is an ordered sequence of artifact paths; order is significant
// for name resolution, since the first classpath entry containing a name wins.
type ClassPath []string

// LoadedClass is the runtime handle returned for a successfully resolved
// class name. Plugin identity caching is provided by the Go runtime itself:
// a second plugin.Open of the same resolved file path returns the same
// *plugin.Plugin value, which is what gives two loads of the same class
// through the same underlying file the same runtime identity.
type LoadedClass struct {
	Name   string
	Path   string
	Plugin *plugin.Plugin
}

// ModuleSource resolves a class name to a LoadedClass. It is the Go-native
// analog of a URL-delegating classloader's findClass: given a name, either
// return the class or ErrClassNotFound.
type ModuleSource interface {
	Load(name string) (*LoadedClass, error)
}

// classNameToRelPath converts a dotted class name to a relative plugin file
// path, e.g. "dep.Foo" -> "dep/Foo.so".
func classNameToRelPath(name string) string {
	return strings.ReplaceAll(name, ".", string(filepath.Separator)) + ".so"
}

// fsModuleSource resolves class names against an ordered list of classpath
// directories, opening the first matching file as a Go plugin.
type fsModuleSource struct {
	classPath ClassPath
}

// NewFSModuleSource returns a ModuleSource backed by classPath, opening
// matches with the standard plugin package.
func NewFSModuleSource(classPath ClassPath) ModuleSource {
	return &fsModuleSource{classPath: classPath}
}

func (s *fsModuleSource) Load(name string) (*LoadedClass, error) {
	rel := classNameToRelPath(name)
	for _, dir := range s.classPath {
		candidate := filepath.Join(dir, rel)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		p, err := plugin.Open(candidate)
		if err != nil {
			return nil, fmt.Errorf("open plugin for %s at %s: %w", name, candidate, err)
		}
		return &LoadedClass{Name: name, Path: candidate, Plugin: p}, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrClassNotFound)
}

// findResource walks classPath for a file matching name and returns its
// path, the classpath entry joined with name (absolute only when the entry
// is). Unlike class resolution this does not involve plugin.Open:
// a resource is an arbitrary file, not necessarily a loadable module.
func findResource(classPath ClassPath, name string) (string, bool) {
	for _, dir := range classPath {
		candidate := filepath.Join(dir, filepath.FromSlash(name))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
