package lifecycle

import (
	"time"

	"go.uber.org/zap"
)

// Config holds the tunables spec.md §6 lists on LifecycleManager::new.
type Config struct {
	// DefaultProcessSleepLimitOnRestricted is the clamp AllowSleepWithLimit
	// applies when a caller requests ProcessResult.AllowSleep(false)
	// through this manager. Defaults to 100ms, matching proc's own
	// default.
	DefaultProcessSleepLimitOnRestricted time.Duration

	// Logger receives structured logs from the manager and every host it
	// owns. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{DefaultProcessSleepLimitOnRestricted: 100 * time.Millisecond}
}

func (c Config) sleepLimit() time.Duration {
	if c.DefaultProcessSleepLimitOnRestricted <= 0 {
		return DefaultConfig().DefaultProcessSleepLimitOnRestricted
	}

	return c.DefaultProcessSleepLimitOnRestricted
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}

	return c.Logger
}
