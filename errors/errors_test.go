package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rangeText string

func (r rangeText) String() string { return string(r) }

func TestInvalidSelectorError(t *testing.T) {
	t.Parallel()

	err := error(&InvalidSelectorError{Index: 1, Selector: rangeText("[1:5:2]")})

	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.Contains(t, err.Error(), "[1:5:2]")
	assert.Contains(t, err.Error(), "position 1")

	var target *InvalidSelectorError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 1, target.Index)
}

func TestTypeMismatchError(t *testing.T) {
	t.Parallel()

	t.Run("names value and position", func(t *testing.T) {
		t.Parallel()

		err := error(&TypeMismatchError{Position: 0, Value: []int{1}})

		require.ErrorIs(t, err, ErrTypeMismatch)
		assert.Equal(t, "type mismatch: invalid value []int{1} at parameter 0", err.Error())
	})

	t.Run("includes reason when present", func(t *testing.T) {
		t.Parallel()

		err := &TypeMismatchError{Position: 1, Value: nil, Reason: "null key"}
		assert.Contains(t, err.Error(), "(null key)")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		t.Parallel()

		wrapped := errors.Join(errors.New("outer"), &TypeMismatchError{Position: 2, Value: "x"}) //nolint:err113

		var target *TypeMismatchError
		require.ErrorAs(t, wrapped, &target)
		assert.Equal(t, 2, target.Position)
		assert.Equal(t, "x", target.Value)
	})
}

func TestKeyNotFoundError(t *testing.T) {
	t.Parallel()

	err := error(&KeyNotFoundError{Key: 10})

	require.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, "key not found: 10", err.Error())
}

func TestCollection(t *testing.T) {
	t.Parallel()

	t.Run("ignores nil errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(nil)

		assert.False(t, c.HasError())
		assert.NoError(t, c.GetError())
	})

	t.Run("returns single error as is", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("error 1") //nolint:err113
		c.Add(err1)

		assert.Same(t, err1, c.GetError()) //nolint:testifylint
	})

	t.Run("joins multiple errors", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		err1 := errors.New("error 1") //nolint:err113
		err2 := errors.New("error 2") //nolint:err113

		c.Add(err1)
		c.Add(nil)
		c.Add(err2)

		err := c.GetError()
		require.ErrorIs(t, err, err1)
		require.ErrorIs(t, err, err2)
	})

	t.Run("clear resets state", func(t *testing.T) {
		t.Parallel()

		c := &Collection{}
		c.Add(errors.New("error 1")) //nolint:err113
		c.Clear()

		assert.False(t, c.HasError())
		assert.Empty(t, c.errors)
	})
}
