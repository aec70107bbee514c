//nolint:ireturn
package envutil

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrBadEnvVar     = errors.New("error parsing environment variable")
	ErrEnvVarMissing = errors.New("missing environment variable")
)

// Reader is a value read from the environment, along with whether it was
// present and any error produced while parsing it.
type Reader[A any] struct {
	key     string
	present bool
	err     error

	value A
}

// Key returns the key of the environment variable.
func (e Reader[A]) Key() string {
	return e.key
}

// Value returns the value, or an error if it is missing or failed to parse.
func (e Reader[A]) Value() (A, error) {
	if e.err != nil {
		return e.value, fmt.Errorf("%w %s: %w", ErrBadEnvVar, e.key, e.err)
	}

	if !e.present {
		return e.value, fmt.Errorf("%w %s", ErrEnvVarMissing, e.key)
	}

	return e.value, nil
}

// ValueOrElse returns the value, or v if it is missing or failed to parse.
// Parse failures are logged so a typo in the environment doesn't go unnoticed.
func (e Reader[A]) ValueOrElse(v A) A {
	if e.present && e.err == nil {
		return e.value
	}

	if e.err != nil {
		slog.Warn("error reading environment variable, using fallback value",
			"key", e.key, "error", e.err, "fallback", v)
	}

	return v
}

// HasValue returns true if the variable was set and parsed cleanly.
func (e Reader[A]) HasValue() bool {
	return e.present && e.err == nil
}

// HasError returns true if parsing the variable failed.
func (e Reader[A]) HasError() bool {
	return e.err != nil
}

// String returns a string representation of the Reader.
func (e Reader[A]) String() string {
	if e.err != nil {
		return fmt.Sprintf("%s=<error: %v>", e.key, e.err)
	}

	if e.present {
		return fmt.Sprintf("%s=%v", e.key, e.value)
	}

	return e.key + "=<not set>"
}

// WithDefault returns a Reader holding v if the original has no value.
func (e Reader[A]) WithDefault(v A) Reader[A] {
	if e.present {
		return e
	}

	return Reader[A]{
		key:     e.key,
		present: true,
		value:   v,
	}
}

// Map transforms the value of a present, error-free Reader.
func Map[A any, B any](env Reader[A], f func(A) (B, error)) Reader[B] {
	if !env.present || env.err != nil {
		return Reader[B]{
			key:     env.key,
			present: env.present,
			err:     env.err,
		}
	}

	val, err := f(env.value)

	return Reader[B]{
		key:     env.key,
		present: true,
		err:     err,
		value:   val,
	}
}
