package sortedset

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/amp-labs/litecollections/errors"
	"github.com/amp-labs/litecollections/selector"
	"github.com/amp-labs/litecollections/storage"
	"github.com/amp-labs/litecollections/value"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(t *testing.T, items ...any) *SortedSet {
	t.Helper()

	s, err := New(t.Context(), items, storage.WithLogger(slogt.New(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func assertItems(t *testing.T, s *SortedSet, want ...any) {
	t.Helper()

	ok, err := s.Equal(t.Context(), want...)
	require.NoError(t, err)
	assert.True(t, ok, "got %s, want %v", s, want)
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	s := newSet(t, 1, 2, 2)

	size, err := s.Size(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	ok, err := s.EqualSet(t.Context(), newSet(t, 1, 2))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	ok, err := newSet(t).EqualSet(ctx, newSet(t))
	require.NoError(t, err)
	assert.True(t, ok)

	assertItems(t, newSet(t))

	s := newSet(t, "foo", "bar")

	ok, err = s.EqualSet(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)

	assertItems(t, s, "bar", "foo")

	ok, err = s.Equal(ctx, "foo")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Equal(ctx, "foo", "baz")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Equal(ctx, []int{1})
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestAdd(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newSet(t, "foo", "bar")

	require.NoError(t, s.Add(ctx, "foo"))
	assertItems(t, s, "foo", "bar")

	require.NoError(t, s.Add(ctx, "baz"))
	assertItems(t, s, "bar", "foo", "baz")

	err := s.Add(ctx, []int{})
	require.ErrorIs(t, err, errors.ErrTypeMismatch)

	var mismatch *errors.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []int{}, mismatch.Value)

	require.ErrorIs(t, s.Add(ctx, nil), errors.ErrTypeMismatch)

	assertItems(t, s, "bar", "foo", "baz")
}

func TestNewRejectsUnbindableItems(t *testing.T) {
	t.Parallel()

	_, err := New(t.Context(), []any{1, map[string]int{}}, storage.WithLogger(slogt.New(t)))
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newSet(t, "foo", "bar")

	require.NoError(t, s.Discard(ctx, "baz"))
	assertItems(t, s, "foo", "bar")

	require.NoError(t, s.Discard(ctx, "foo"))
	assertItems(t, s, "bar")
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	s := newSet(t, "foo", "bar")
	require.NoError(t, s.Delete(ctx, "bar"))
	assertItems(t, s, "foo")

	s = newSet(t, 1, 2, 3, 4, 5)

	same, err := s.DeleteRanges(ctx, selector.Between(2, 4))
	require.NoError(t, err)
	assert.Same(t, s, same)
	assertItems(t, s, 1, 4, 5)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	s := newSet(t, 1, 2, 3, 4, 5)

	tests := []struct {
		name   string
		ranges []selector.Range
		want   []any
	}{
		{"between", []selector.Range{selector.Between(2, 4)}, []any{2, 3}},
		{"from", []selector.Range{selector.From(5)}, []any{5}},
		{"union", []selector.Range{selector.To(2), selector.From(5)}, []any{1, 5}},
		{"union reversed", []selector.Range{selector.Between(5, 10), selector.To(2)}, []any{1, 5}},
		{"all", []selector.Range{selector.All()}, []any{1, 2, 3, 4, 5}},
		{"all absorbs others", []selector.Range{selector.All(), selector.Between(1, 2)}, []any{1, 2, 3, 4, 5}},
		{"nothing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sub, err := s.Select(t.Context(), tt.ranges...)
			require.NoError(t, err)

			defer func() { _ = sub.Close() }()

			assert.True(t, sub.IsMemory())
			assertItems(t, sub, tt.want...)
		})
	}

	assertItems(t, s, 1, 2, 3, 4, 5)
}

func TestSelectRejectsStep(t *testing.T) {
	t.Parallel()

	s := newSet(t, 1, 2, 3, 4, 5)

	_, err := s.Select(t.Context(), selector.Between(1, 5).WithStep(2))
	require.ErrorIs(t, err, errors.ErrInvalidSelector)

	_, err = s.DeleteRanges(t.Context(), selector.Between(1, 5).WithStep(2))
	require.ErrorIs(t, err, errors.ErrInvalidSelector)
	assertItems(t, s, 1, 2, 3, 4, 5)
}

func TestSlice(t *testing.T) {
	t.Parallel()

	s := newSet(t, 3, "a", 1, []byte{0xff}, 2.5)

	items, err := s.Slice(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []value.Value{
		value.Int(1), value.Float(2.5), value.Int(3), value.Text("a"), value.Blob([]byte{0xff}),
	}, items)
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SortedSet([1, 2])", newSet(t, 2, 1).String())
	assert.Equal(t, `SortedSet([1.5, "a"])`, newSet(t, "a", 1.5).String())
	assert.Equal(t, "SortedSet([])", newSet(t).String())

	path := filepath.Join(t.TempDir(), "set.db")

	s, err := New(t.Context(), []any{1}, storage.WithPath(path))
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	assert.Equal(t, `SortedSet([1], "`+path+`")`, s.String())
}

func TestDatabaseFile(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "set.db")

	first, err := New(ctx, []any{44, 55, 66}, storage.WithPath(path))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, nil, storage.WithPath(path))
	require.NoError(t, err)

	defer func() { _ = second.Close() }()

	assertItems(t, second, 44, 55, 66)
}

func TestMemorySetsAreIndependent(t *testing.T) {
	t.Parallel()

	a := newSet(t, 1)
	b := newSet(t)

	assertItems(t, a, 1)
	assertItems(t, b)
}

func TestNumericEquality(t *testing.T) {
	t.Parallel()

	s := newSet(t, 1, 1.0)

	size, err := s.Size(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	ok, err := s.Contains(t.Context(), 1.0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "using.db")

	err := Using([]any{3, 1}, storage.WithPath(path)).Use(t.Context(), func(s *SortedSet) error {
		return s.Add(t.Context(), 2)
	})
	require.NoError(t, err)

	err = Using(nil, storage.WithPath(path)).Use(t.Context(), func(s *SortedSet) error {
		assertItems(t, s, 1, 2, 3)

		return s.Add(t.Context(), []int{})
	})
	require.ErrorIs(t, err, errors.ErrTypeMismatch)
}

func TestAddRejectsCoercibleTypes(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newSet(t, 1)
	n := 7

	for _, item := range []any{time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), &n} {
		err := s.Add(ctx, item)
		require.ErrorIs(t, err, errors.ErrTypeMismatch, "%T", item)

		_, err = s.Contains(ctx, item)
		require.ErrorIs(t, err, errors.ErrTypeMismatch, "%T", item)
	}

	assertItems(t, s, 1)
	assert.Equal(t, "SortedSet([1])", s.String())
}
