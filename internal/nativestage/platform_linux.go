//go:build linux

package nativestage

// platformFileName maps a native library logical name to the filename it
// would have on disk on this platform.
func platformFileName(name string) string {
	return "lib" + name + ".so"
}
