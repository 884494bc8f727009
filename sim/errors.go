package sim

import (
	"errors"
	"fmt"
)

// ErrDegenerateRun marks a run whose measured window produced no completed products.
// Such runs are still returned as results, flagged InsufficientData; callers that
// need a hard failure can test for this error with RunRecord.Err.
var ErrDegenerateRun = errors.New("no products completed within the measured window")

// ConfigError reports an invalid or missing configuration field. It is raised
// before any simulated time advances.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
