// Package using scopes a resource to a function call, in the manner of
// try-with-resources: the resource is opened, handed to the function, and
// closed afterwards whether or not the function failed.
//
// Example usage:
//
//	err := sortedset.Using(items, storage.WithPath(path)).Use(ctx, func(s *sortedset.SortedSet) error {
//	    return s.Add(ctx, 42)
//	})
//	// The set's storage is closed here, even if Add failed.
package using

import (
	"context"
	"errors"
	"io"

	lcerrors "github.com/amp-labs/litecollections/errors"
)

var (
	// ErrResourceNil is returned when Use is called on a nil resource.
	ErrResourceNil = errors.New("resource is nil")
	// ErrFuncNil is returned when Use is given a nil function.
	ErrFuncNil = errors.New("f is nil")
)

// Closer releases a resource.
type Closer func() error

// Resource opens a value on each Use and closes it when Use returns.
type Resource[V any] struct {
	open     func(ctx context.Context) (V, Closer, error)
	released bool
}

// NewResource creates a Resource from an open function returning the value
// and its closer.
func NewResource[V any](open func(ctx context.Context) (V, Closer, error)) *Resource[V] {
	return &Resource[V]{open: open}
}

// Closing creates a Resource for values that close themselves.
func Closing[V io.Closer](open func(ctx context.Context) (V, error)) *Resource[V] {
	return NewResource(func(ctx context.Context) (V, Closer, error) {
		val, err := open(ctx)
		if err != nil {
			return val, nil, err
		}

		return val, WrapCloser(val), nil
	})
}

// Use opens the resource, calls fn with it, then closes it. Errors from fn
// and from closing are both reported.
func (r *Resource[V]) Use(ctx context.Context, fn func(value V) error) (errOut error) {
	if r == nil {
		return ErrResourceNil
	}

	if fn == nil {
		return ErrFuncNil
	}

	r.released = false

	val, closer, err := r.open(ctx)
	if err != nil {
		return err
	}

	errs := lcerrors.Collection{}

	defer func() {
		if !r.released && closer != nil {
			errs.Add(closer())
		}

		errOut = errs.GetError()
	}()

	errs.Add(fn(val))

	return nil
}

// Release keeps the value open when the current Use returns. The caller
// becomes responsible for closing it.
func (r *Resource[V]) Release() {
	r.released = true
}

// WrapCloser converts an io.Closer into a Closer. A nil closer does nothing.
func WrapCloser(closer io.Closer) Closer {
	return func() error {
		if closer != nil {
			return closer.Close()
		}

		return nil
	}
}
