package sorteddict

import (
	"context"
	"fmt"
	"iter"

	"github.com/amp-labs/litecollections/ordered"
	"github.com/amp-labs/litecollections/storage"
	"github.com/amp-labs/litecollections/value"
)

// KeysView is a live view of a mapping's keys.
type KeysView struct {
	d *SortedDict
}

// ValuesView is a live view of a mapping's values, in key order.
type ValuesView struct {
	d *SortedDict
}

// ItemsView is a live view of a mapping's entries, in key order.
type ItemsView struct {
	d *SortedDict
}

// Keys returns a live view of the keys.
func (d *SortedDict) Keys() KeysView {
	return KeysView{d: d}
}

// Values returns a live view of the values.
func (d *SortedDict) Values() ValuesView {
	return ValuesView{d: d}
}

// Items returns a live view of the entries.
func (d *SortedDict) Items() ItemsView {
	return ItemsView{d: d}
}

// All lazily yields every key in ascending order.
func (v KeysView) All(ctx context.Context) iter.Seq2[value.Value, error] {
	return v.d.Container.Keys(ctx)
}

// Contains reports whether key is in the mapping.
func (v KeysView) Contains(ctx context.Context, key any) (bool, error) {
	return v.d.Contains(ctx, key)
}

// Size returns the number of keys.
func (v KeysView) Size(ctx context.Context) (int, error) {
	return v.d.Size(ctx)
}

func (v KeysView) String() string {
	keys, err := ordered.Collect(v.All(context.Background()))
	if err != nil {
		return fmt.Sprintf("KeysView(<%v>)", err)
	}

	return fmt.Sprintf("KeysView([%s])", value.Join(keys))
}

// All lazily yields every value in ascending key order.
func (v ValuesView) All(ctx context.Context) iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		for row, err := range v.d.Rows(ctx, Schema.Key, Schema.Value) {
			if err != nil {
				yield(value.NullValue(), err)

				return
			}

			if !yield(row[1], nil) {
				return
			}
		}
	}
}

// Contains reports whether any key maps to val. Values aren't indexed, so
// this scans the table. A nil val matches entries whose value is nil.
func (v ValuesView) Contains(ctx context.Context, val any) (bool, error) {
	rows, err := v.d.Execute(ctx, "SELECT COUNT(*) FROM data WHERE value IS ?", val)
	if err != nil {
		return false, err
	}

	return countPositive(rows)
}

// Size returns the number of values, which is the number of keys.
func (v ValuesView) Size(ctx context.Context) (int, error) {
	return v.d.Size(ctx)
}

func (v ValuesView) String() string {
	values, err := ordered.Collect(v.All(context.Background()))
	if err != nil {
		return fmt.Sprintf("ValuesView(<%v>)", err)
	}

	return fmt.Sprintf("ValuesView([%s])", value.Join(values))
}

// All lazily yields every entry in ascending key order.
func (v ItemsView) All(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		for row, err := range v.d.Rows(ctx, Schema.Key, Schema.Value) {
			if err != nil {
				yield(Item{}, err)

				return
			}

			if !yield(Item{Key: row[0], Value: row[1]}, nil) {
				return
			}
		}
	}
}

// Contains reports whether the mapping holds p.Key mapped to p.Value.
func (v ItemsView) Contains(ctx context.Context, p Pair) (bool, error) {
	rows, err := v.d.Execute(ctx, "SELECT COUNT(*) FROM data WHERE key = ? AND value IS ?", p.Key, p.Value)
	if err != nil {
		return false, err
	}

	return countPositive(rows)
}

// Size returns the number of entries.
func (v ItemsView) Size(ctx context.Context) (int, error) {
	return v.d.Size(ctx)
}

func (v ItemsView) String() string {
	items, err := ordered.Collect(v.All(context.Background()))
	if err != nil {
		return fmt.Sprintf("ItemsView(<%v>)", err)
	}

	return fmt.Sprintf("ItemsView([%s])", joinItems(items))
}

func countPositive(rows storage.Rows) (bool, error) {
	count, err := rows.Scalar()
	if err != nil {
		return false, err
	}

	n, _ := count.AsInt()

	return n > 0, nil
}
