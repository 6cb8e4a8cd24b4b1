package core

import (
	"errors"
	"log/slog"
)

// LoaderConfig holds the constructor inputs shared by every loader in the
// hierarchy: the parent loader reference, the zombie-warning toggle, and the
// log sink.
//
// Concurrency contract: all fields are immutable after construction.
type LoaderConfig struct {
	// Parent is the host-runtime loader above the dependency layer.
	Parent ModuleSource

	// AllowZombies suppresses the one-shot warning normally emitted on the
	// first lookup that arrives at a closed loader.
	AllowZombies bool

	// NativeSearchPath is the ordered list of directories searched for
	// native libraries, read once at construction (see §6 of the design:
	// CLASSLAYER_LIBRARY_PATH).
	NativeSearchPath []string

	// Log is the sink used for zombie-access warnings and stager diagnostics.
	// If nil, Logger() is used.
	Log *slog.Logger
}

// Validate reports every violation of LoaderConfig's invariants at once.
func (c LoaderConfig) Validate() error {
	var errs []error
	if c.Parent == nil {
		errs = append(errs, errors.New("parent module source must not be nil"))
	}
	return errors.Join(errs...)
}

func (c LoaderConfig) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return Logger()
}

// PoolConfig additionally carries the dependency classpath, which together
// with Parent identifies the DependencyLoader a pool creates. A pool is
// built over exactly one PoolConfig, so it reuses its idle DependencyLoader
// without comparing identities.
type PoolConfig struct {
	LoaderConfig
	DependencyClassPath ClassPath
}

// Validate reports every violation of PoolConfig's invariants at once.
func (c PoolConfig) Validate() error {
	var errs []error
	if err := c.LoaderConfig.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.DependencyClassPath) == 0 {
		errs = append(errs, errors.New("dependency classpath must not be empty"))
	}
	return errors.Join(errs...)
}
