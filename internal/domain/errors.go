package domain

import "fmt"

// The model distinguishes three failure classes. All of them are fatal and
// require a human to fix the input data; none are transient.

// ConfigError reports malformed or missing structural input: an unknown
// reference, a duplicate registration, a missing mandatory field.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Msg
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports a structurally well-formed model that violates a
// declared invariant. Subject names the offending entity; Expected and
// Actual carry enough context to fix the input.
type ValidationError struct {
	Subject  string
	Expected float64
	Actual   float64
	Msg      string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s (expected %.2f, actual %.2f)",
		e.Subject, e.Msg, e.Expected, e.Actual)
}

// DomainError reports a numerically invalid operation, such as a capital
// recovery factor requested with a non-positive rate. Values are never
// silently clamped.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string {
	return "domain error: " + e.Msg
}

// Domainf builds a DomainError from a format string.
func Domainf(format string, args ...any) error {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}
