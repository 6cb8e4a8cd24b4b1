//go:build !unix

package nativestage

// fileIdentity falls back to the path string on platforms without a
// stable device/inode pair exposed the same way (e.g. Windows), so identity
// comparison degrades to "same search-path entry" rather than "same file
// on disk reached by different paths".
type fileIdentity struct {
	path string
}

func identifyFile(path string) (fileIdentity, bool) {
	return fileIdentity{path: path}, true
}
