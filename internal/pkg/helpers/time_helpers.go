package helpers

import (
	"time"

	"github.com/svpddu/studentrecords/internal/pkg/logger"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseYear reads a four digit year, returning ok=false for anything else
func ParseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	t, err := time.Parse("2006", s)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}
