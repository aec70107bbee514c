package optional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSomeAndNone(t *testing.T) {
	t.Parallel()

	t.Run("some holds a value", func(t *testing.T) {
		t.Parallel()

		o := Some(42)
		v, ok := o.Get()

		assert.True(t, ok)
		assert.Equal(t, 42, v)
		assert.True(t, o.NonEmpty())
		assert.False(t, o.Empty())
		assert.Equal(t, "Some(42)", o.String())
	})

	t.Run("none is empty", func(t *testing.T) {
		t.Parallel()

		o := None[string]()
		_, ok := o.Get()

		assert.False(t, ok)
		assert.True(t, o.Empty())
		assert.Equal(t, "None", o.String())
	})

	t.Run("zero value is none", func(t *testing.T) {
		t.Parallel()

		var o Value[any]
		assert.True(t, o.Empty())
	})

	t.Run("some of nil is still present", func(t *testing.T) {
		t.Parallel()

		o := Some[any](nil)
		assert.True(t, o.NonEmpty())
	})
}

func TestGetOrElse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, Some(1).GetOrElse(2))
	assert.Equal(t, 2, None[int]().GetOrElse(2))

	called := false
	assert.Equal(t, 1, Some(1).GetOrElseFunc(func() int {
		called = true

		return 2
	}))
	assert.False(t, called)
	assert.Equal(t, 3, None[int]().GetOrElseFunc(func() int { return 3 }))
}

func TestAll(t *testing.T) {
	t.Parallel()

	var got []int
	for v := range Some(7).All() {
		got = append(got, v)
	}

	for v := range None[int]().All() {
		got = append(got, v)
	}

	assert.Equal(t, []int{7}, got)
}

func TestMap(t *testing.T) {
	t.Parallel()

	double := func(i int) int { return i * 2 }

	assert.Equal(t, Some(4), Map(Some(2), double))
	assert.Equal(t, None[int](), Map(None[int](), double))
}
