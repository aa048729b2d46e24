package core

import (
	"errors"
	"fmt"
)

var (
	ErrNonPositive  = errors.New("must be positive")
	ErrOutOfRange   = errors.New("out of range")
	ErrUnknownValue = errors.New("unknown value")
)

// ConfigError ties a validation failure to the setting that caused it.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
