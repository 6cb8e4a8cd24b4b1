package classlayer

import (
	"log/slog"

	"github.com/classlayer/classlayer/internal/core"
)

// SetLogger replaces the package-level logger used by classlayer.
// This allows applications to integrate classlayer logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; classlayer will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other classlayer operations.
//
// Example:
//
//	classlayer.SetLogger(myLogger.With("component", "classlayer"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
