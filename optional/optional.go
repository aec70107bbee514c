// Package optional provides a small Optional type for values that may be absent.
// It is used for the unbounded ends of a range selector and for lookups that
// report "not found" without failing.
package optional

import (
	"fmt"
	"iter"
)

// Value represents a value that may or may not be present.
// The zero Value is empty.
type Value[T any] struct {
	value T
	isSet bool
}

// Some creates a Value containing the given value.
func Some[T any](value T) Value[T] {
	return Value[T]{value: value, isSet: true}
}

// None creates an empty Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// All yields the value if present, or nothing if empty.
func (o Value[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if o.isSet {
			yield(o.value)
		}
	}
}

// NonEmpty returns true if the Value contains a value.
func (o Value[T]) NonEmpty() bool {
	return o.isSet
}

// Empty returns true if the Value does not contain a value.
func (o Value[T]) Empty() bool {
	return !o.isSet
}

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.isSet
}

// GetOrElse returns the value if present, or defaultValue otherwise.
func (o Value[T]) GetOrElse(defaultValue T) T {
	if o.isSet {
		return o.value
	}

	return defaultValue
}

// GetOrElseFunc is GetOrElse with a lazily computed default.
func (o Value[T]) GetOrElseFunc(defaultFunc func() T) T {
	if o.isSet {
		return o.value
	}

	return defaultFunc()
}

// String returns "Some(value)" or "None".
func (o Value[T]) String() string {
	if o.isSet {
		return fmt.Sprintf("Some(%v)", o.value)
	}

	return "None"
}

// Map transforms the contained value, keeping emptiness.
func Map[T any, U any](o Value[T], f func(T) U) Value[U] {
	if o.isSet {
		return Some(f(o.value))
	}

	return None[U]()
}
