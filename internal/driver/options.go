package driver

import (
	"cmtcode/internal/config"
	"cmtcode/internal/observ"
)

// Options configures a check run.
type Options struct {
	Settings config.Settings
	// MaxDiagnostics caps every per-file bag; 0 means unlimited.
	MaxDiagnostics int
	// Jobs bounds parallel workers in CheckDir; <= 0 uses GOMAXPROCS.
	Jobs int
	// Cache, when set, short-cuts files whose content and settings were
	// already checked.
	Cache    *DiskCache
	Timer    *observ.Timer
	Progress ProgressFunc
	// KeepVerdicts retains the classifier verdict of every comment, not only
	// of the flagged ones. `cmtcode comments` needs them.
	KeepVerdicts bool
}

// DefaultOptions uses the built-in settings.
func DefaultOptions() Options {
	return Options{Settings: config.Defaults()}
}
