//go:build unix

package nativestage

import "golang.org/x/sys/unix"

// fileIdentity is a device/inode pair identifying the same underlying file
// across however many paths resolve to it (hardlinks, bind mounts, symlinked
// search-path entries).
type fileIdentity struct {
	dev, ino uint64
}

// identifyFile stats path and returns its identity. ok is false if the file
// cannot be stat'd, in which case the caller falls back to a plain copy.
func identifyFile(path string) (fileIdentity, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, false
	}
	return fileIdentity{dev: uint64(st.Dev), ino: st.Ino}, true
}
