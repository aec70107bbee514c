// Package sortedset provides SortedSet, a set of scalar items kept in
// ascending order by an embedded SQLite table. A set lives in memory by
// default or in a database file selected with storage.WithPath, in which
// case its contents survive Close and are visible to the next set opened on
// the same file.
package sortedset

import (
	"context"
	"fmt"
	"iter"

	"github.com/amp-labs/litecollections/ordered"
	"github.com/amp-labs/litecollections/selector"
	"github.com/amp-labs/litecollections/storage"
	"github.com/amp-labs/litecollections/using"
	"github.com/amp-labs/litecollections/value"
)

// Schema is the table layout of a set.
var Schema = storage.Schema{Table: "data", Key: "key"} //nolint:gochecknoglobals

// SortedSet is an ordered set of distinct items. Items are ordered the way
// the engine orders them: null, then numbers, then text, then blobs.
type SortedSet struct {
	*ordered.Container

	opts []storage.Option
}

// New opens the storage selected by opts and adds every item to it. If any
// item is rejected the storage is closed and the error returned.
func New(ctx context.Context, items []any, opts ...storage.Option) (*SortedSet, error) {
	c, err := ordered.Open(ctx, Schema, opts...)
	if err != nil {
		return nil, err
	}

	set := &SortedSet{Container: c, opts: opts}

	for _, item := range items {
		if err := set.Add(ctx, item); err != nil {
			_ = set.Close()

			return nil, err
		}
	}

	return set, nil
}

// Using returns a resource that opens a set with New for the duration of
// one Use call and closes it afterwards.
func Using(items []any, opts ...storage.Option) *using.Resource[*SortedSet] {
	return using.Closing(func(ctx context.Context) (*SortedSet, error) {
		return New(ctx, items, opts...)
	})
}

// Add inserts item unless an equal item is already present.
func (s *SortedSet) Add(ctx context.Context, item any) error {
	if err := ordered.CheckKey(item, 0); err != nil {
		return err
	}

	_, err := s.Execute(ctx, "INSERT OR IGNORE INTO data (key) VALUES (?)", item)

	return err
}

// Discard removes item if present.
func (s *SortedSet) Discard(ctx context.Context, item any) error {
	return s.Delete(ctx, item)
}

// DeleteRanges removes every item in any of the ranges. It returns the
// receiver so calls can be chained; no copy is made.
func (s *SortedSet) DeleteRanges(ctx context.Context, ranges ...selector.Range) (*SortedSet, error) {
	if err := s.Container.DeleteRanges(ctx, ranges...); err != nil {
		return nil, err
	}

	return s, nil
}

// Select returns a new in-memory set holding the items that fall in any of
// the ranges. The receiver is not modified. The caller must Close the result.
func (s *SortedSet) Select(ctx context.Context, ranges ...selector.Range) (*SortedSet, error) {
	rows, err := s.Container.Select(ctx, []string{Schema.Key}, ranges...)
	if err != nil {
		return nil, err
	}

	keys := rows.Column(0)

	items := make([]any, len(keys))
	for i, k := range keys {
		items[i] = k
	}

	return New(ctx, items, s.memoryOptions()...)
}

func (s *SortedSet) memoryOptions() []storage.Option {
	opts := make([]storage.Option, 0, len(s.opts)+1)
	opts = append(opts, s.opts...)

	return append(opts, storage.WithPath(storage.Memory))
}

// All lazily yields every item in ascending order.
func (s *SortedSet) All(ctx context.Context) iter.Seq2[value.Value, error] {
	return s.Keys(ctx)
}

// Slice returns every item in ascending order.
func (s *SortedSet) Slice(ctx context.Context) ([]value.Value, error) {
	return ordered.Collect(s.Keys(ctx))
}

// Equal reports whether the set holds exactly the distinct items given, in
// any order.
func (s *SortedSet) Equal(ctx context.Context, items ...any) (bool, error) {
	want, err := value.SetOf(items...)
	if err != nil {
		return false, err
	}

	return s.equalTo(ctx, want)
}

// EqualSet reports whether both sets hold the same items.
func (s *SortedSet) EqualSet(ctx context.Context, other *SortedSet) (bool, error) {
	want := value.NewSet()

	for item, err := range other.All(ctx) {
		if err != nil {
			return false, err
		}

		if _, err := want.Add(item); err != nil {
			return false, err
		}
	}

	return s.equalTo(ctx, want)
}

func (s *SortedSet) equalTo(ctx context.Context, want *value.Set) (bool, error) {
	size, err := s.Size(ctx)
	if err != nil {
		return false, err
	}

	if size != want.Size() {
		return false, nil
	}

	got := value.NewSet()

	for item, err := range s.All(ctx) {
		if err != nil {
			return false, err
		}

		if _, err := got.Add(item); err != nil {
			return false, err
		}
	}

	return got.Equal(want)
}

// String renders the set as SortedSet([1, 2]), adding the quoted file path
// when the set isn't in memory.
func (s *SortedSet) String() string {
	items, err := s.Slice(context.Background())
	if err != nil {
		return fmt.Sprintf("SortedSet(<%v>)", err)
	}

	if s.IsMemory() {
		return fmt.Sprintf("SortedSet([%s])", value.Join(items))
	}

	return fmt.Sprintf("SortedSet([%s], %q)", value.Join(items), s.StorageName())
}
