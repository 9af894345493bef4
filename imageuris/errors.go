package imageuris

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigNotFound is matched by every lookup
	// failure against the configuration tables.
	ErrConfigNotFound = errors.New("image config not found")

	// ErrInvalidInstanceType is returned when an
	// instance type cannot be parsed.
	ErrInvalidInstanceType = errors.New("invalid instance type")
)

// ConfigError reports a parameter value absent from the
// configuration tables.
type ConfigError struct {
	// Field names the rejected parameter
	// (e.g. "region", "py_version").
	Field string
	// Value is the rejected value.
	Value string
	// Supported lists the accepted values, sorted.
	Supported []string
}

func (e *ConfigError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf(
			"unsupported %s: %q", e.Field, e.Value,
		)
	}

	return fmt.Sprintf(
		"unsupported %s: %q (supported: %s)",
		e.Field, e.Value, strings.Join(e.Supported, ", "),
	)
}

// Is reports whether target is ErrConfigNotFound.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigNotFound
}
