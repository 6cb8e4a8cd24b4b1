package classlayer

// Default configuration values for NewPool.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them.
const (
	// DefaultAllowZombies is whether a closed loader suppresses its
	// one-shot warning on post-close lookups. False: the warning fires.
	DefaultAllowZombies = false

	// NativeSearchPathEnv is the environment variable consulted for the
	// native library search path when WithNativeSearchPath is not used.
	// Entries are delimited the platform way (colon on unix, semicolon on
	// Windows), matching filepath.SplitList / os.PathListSeparator.
	NativeSearchPathEnv = "CLASSLAYER_LIBRARY_PATH"
)
