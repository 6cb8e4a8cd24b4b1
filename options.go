package classlayer

import (
	"fmt"
	"log/slog"
)

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("classlayer: %s must not be empty", name))
	}
}

// poolConfig holds the options collected from a NewPool call, before they
// are translated into an internal/core.PoolConfig.
type poolConfig struct {
	allowZombies     bool
	nativeSearchPath []string
	log              *slog.Logger
}

// PoolOption configures a Pool during construction via NewPool.
// Each With* function returns a PoolOption that sets a specific field.
//
// WithNativeSearchPath panics on an empty entry list; option values
// are typically compile-time constants or process configuration resolved
// once at startup, so an invalid value indicates a programmer error rather
// than a runtime condition.
type PoolOption func(*poolConfig)

// WithAllowZombies disables the one-shot warning normally logged the first
// time a closed loader answers a findClass or findResource lookup through
// its zombie fallback.
//
// Default: false (the warning fires).
func WithAllowZombies() PoolOption {
	return func(c *poolConfig) {
		c.allowZombies = true
	}
}

// WithNativeSearchPath sets the ordered list of directories searched for
// native libraries, overriding the CLASSLAYER_LIBRARY_PATH environment
// variable.
//
// Panics if paths is empty.
func WithNativeSearchPath(paths []string) PoolOption {
	if len(paths) == 0 {
		panic("classlayer: native search path must not be empty")
	}
	return func(c *poolConfig) {
		c.nativeSearchPath = paths
	}
}

// WithLogger sets the structured logger used for this pool and the loaders
// it creates, overriding the package default set by SetLogger.
//
// Panics if l is nil.
func WithLogger(l *slog.Logger) PoolOption {
	if l == nil {
		panic("classlayer: logger must not be nil")
	}
	return func(c *poolConfig) {
		c.log = l
	}
}
