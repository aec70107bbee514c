// Package errors defines the failure taxonomy shared by the sorted containers,
// plus a small helper for accumulating several errors into one.
//
// Every typed error unwraps to one of the sentinels, so callers can branch with
// errors.Is and still recover the offending value with errors.As:
//
//	var mismatch *errors.TypeMismatchError
//	if errors.As(err, &mismatch) {
//	    fmt.Println("rejected", mismatch.Value, "at", mismatch.Position)
//	}
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSelector is returned when a range selector asks for a step.
	// Steps are rejected before any statement is issued.
	ErrInvalidSelector = errors.New("invalid selector")

	// ErrTypeMismatch is returned when a key or value can't be represented
	// by the storage engine's bind mechanism.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrKeyNotFound is returned by a mapping lookup when the key is absent
	// and no missing-key policy overrides it.
	ErrKeyNotFound = errors.New("key not found")

	// ErrWrongType is returned when a stored value isn't of the kind an
	// operation needs, such as a non-integer row count.
	ErrWrongType = errors.New("wrong type")
)

// InvalidSelectorError names the selector that was rejected and its position
// among the selectors of the same call.
type InvalidSelectorError struct {
	Index    int
	Selector fmt.Stringer
}

func (e *InvalidSelectorError) Error() string {
	return fmt.Sprintf("%s %s (position %d): selectors must not provide a step",
		ErrInvalidSelector, e.Selector, e.Index)
}

func (e *InvalidSelectorError) Unwrap() error {
	return ErrInvalidSelector
}

// TypeMismatchError carries the value the storage engine refused to bind and
// the zero-based parameter position it occupied in the statement.
type TypeMismatchError struct {
	Position int
	Value    any
	Reason   string
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("%s: invalid value %#v at parameter %d", ErrTypeMismatch, e.Value, e.Position)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}

	return msg
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// KeyNotFoundError is the default outcome of a mapping lookup for an absent key.
type KeyNotFoundError struct {
	Key any
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s: %v", ErrKeyNotFound, e.Key)
}

func (e *KeyNotFoundError) Unwrap() error {
	return ErrKeyNotFound
}

// Collection is a thread-unsafe utility for accumulating multiple errors.
// Use it when several cleanup steps must all run and their failures be
// reported together.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// GetError returns nil for an empty collection, the error itself when there
// is exactly one, and an errors.Join of all of them otherwise.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
