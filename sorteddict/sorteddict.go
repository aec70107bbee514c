// Package sorteddict provides SortedDict, a mapping from scalar keys to
// scalar values kept in ascending key order by an embedded SQLite table.
//
// Keys, Values and Items return live views: they hold no data of their own
// and every call on them reads the mapping's current contents.
package sorteddict

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/amp-labs/litecollections/errors"
	"github.com/amp-labs/litecollections/optional"
	"github.com/amp-labs/litecollections/ordered"
	"github.com/amp-labs/litecollections/selector"
	"github.com/amp-labs/litecollections/storage"
	"github.com/amp-labs/litecollections/using"
	"github.com/amp-labs/litecollections/value"
)

// Schema is the table layout of a mapping.
var Schema = storage.Schema{Table: "data", Key: "key", Value: "value"} //nolint:gochecknoglobals

// Pair is a key and value as supplied by the caller.
type Pair struct {
	Key   any
	Value any
}

// Item is a key and value as stored.
type Item struct {
	Key   value.Value
	Value value.Value
}

// String renders the item as (key, value).
func (i Item) String() string {
	return fmt.Sprintf("(%s, %s)", i.Key, i.Value)
}

// MissingFunc decides what Get returns for an absent key. It may return a
// substitute value or an error.
type MissingFunc func(ctx context.Context, key any) (value.Value, error)

// KeyNotFound is the default MissingFunc.
func KeyNotFound(_ context.Context, key any) (value.Value, error) {
	return value.NullValue(), &errors.KeyNotFoundError{Key: key}
}

type config struct {
	storage []storage.Option
	missing MissingFunc
}

// Option configures New.
type Option func(*config)

// WithStorage selects and configures the storage resource.
func WithStorage(opts ...storage.Option) Option {
	return func(c *config) {
		c.storage = append(c.storage, opts...)
	}
}

// WithMissing replaces the policy Get applies to absent keys.
func WithMissing(fn MissingFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.missing = fn
		}
	}
}

// SortedDict is an ordered mapping. A key appears at most once; setting an
// existing key replaces its value.
type SortedDict struct {
	*ordered.Container

	cfg config
}

// New opens the storage selected by opts and sets every pair in order, so a
// later pair wins over an earlier one with the same key. If any pair is
// rejected the storage is closed and the error returned.
func New(ctx context.Context, pairs []Pair, opts ...Option) (*SortedDict, error) {
	cfg := config{missing: KeyNotFound}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := ordered.Open(ctx, Schema, cfg.storage...)
	if err != nil {
		return nil, err
	}

	d := &SortedDict{Container: c, cfg: cfg}

	for _, p := range pairs {
		if err := d.Set(ctx, p.Key, p.Value); err != nil {
			_ = d.Close()

			return nil, err
		}
	}

	return d, nil
}

// Using returns a resource that opens a mapping with New for the duration
// of one Use call and closes it afterwards.
func Using(pairs []Pair, opts ...Option) *using.Resource[*SortedDict] {
	return using.Closing(func(ctx context.Context) (*SortedDict, error) {
		return New(ctx, pairs, opts...)
	})
}

// Set maps key to val, replacing any previous value. val may be nil.
func (d *SortedDict) Set(ctx context.Context, key, val any) error {
	if err := ordered.CheckKey(key, 0); err != nil {
		return err
	}

	_, err := d.Execute(ctx, "INSERT OR REPLACE INTO data (key, value) VALUES (?, ?)", key, val)

	return err
}

// Lookup returns the value stored under key, or None if there is none. The
// missing-key policy is not consulted.
func (d *SortedDict) Lookup(ctx context.Context, key any) (optional.Value[value.Value], error) {
	rows, err := d.Execute(ctx, "SELECT value FROM data WHERE key = ?", key)
	if err != nil {
		return optional.None[value.Value](), err
	}

	if len(rows) == 0 {
		return optional.None[value.Value](), nil
	}

	return optional.Some(rows[0][0]), nil
}

// Get returns the value stored under key. For an absent key it returns
// whatever the missing-key policy produces; by default a
// *errors.KeyNotFoundError.
func (d *SortedDict) Get(ctx context.Context, key any) (value.Value, error) {
	found, err := d.Lookup(ctx, key)
	if err != nil {
		return value.NullValue(), err
	}

	if v, ok := found.Get(); ok {
		return v, nil
	}

	return d.cfg.missing(ctx, key)
}

// GetOrElse returns the value stored under key, or fallback if absent.
func (d *SortedDict) GetOrElse(ctx context.Context, key, fallback any) (value.Value, error) {
	found, err := d.Lookup(ctx, key)
	if err != nil {
		return value.NullValue(), err
	}

	if v, ok := found.Get(); ok {
		return v, nil
	}

	return value.Of(fallback)
}

// DeleteRanges removes every entry whose key is in any of the ranges. It
// returns the receiver so calls can be chained; no copy is made.
func (d *SortedDict) DeleteRanges(ctx context.Context, ranges ...selector.Range) (*SortedDict, error) {
	if err := d.Container.DeleteRanges(ctx, ranges...); err != nil {
		return nil, err
	}

	return d, nil
}

// Select returns a new in-memory mapping holding the entries whose keys are
// in any of the ranges. The result keeps the receiver's missing-key policy.
// The caller must Close it.
func (d *SortedDict) Select(ctx context.Context, ranges ...selector.Range) (*SortedDict, error) {
	rows, err := d.Container.Select(ctx, []string{Schema.Key, Schema.Value}, ranges...)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, len(rows))
	for i, row := range rows {
		pairs[i] = Pair{Key: row[0], Value: row[1]}
	}

	storageOpts := make([]storage.Option, 0, len(d.cfg.storage)+1)
	storageOpts = append(storageOpts, d.cfg.storage...)
	storageOpts = append(storageOpts, storage.WithPath(storage.Memory))

	return New(ctx, pairs, WithStorage(storageOpts...), WithMissing(d.cfg.missing))
}

// All lazily yields every entry in ascending key order.
func (d *SortedDict) All(ctx context.Context) iter.Seq2[Item, error] {
	return d.Items().All(ctx)
}

// Equal reports whether the mapping holds exactly the entries of m.
func (d *SortedDict) Equal(ctx context.Context, m map[any]any) (bool, error) {
	size, err := d.Size(ctx)
	if err != nil {
		return false, err
	}

	if size != len(m) {
		return false, nil
	}

	for k, v := range m {
		want, err := value.Of(v)
		if err != nil {
			return false, err
		}

		got, err := d.Lookup(ctx, k)
		if err != nil {
			return false, err
		}

		if stored, ok := got.Get(); !ok || !stored.Equals(want) {
			return false, nil
		}
	}

	return true, nil
}

// EqualDict reports whether both mappings hold the same entries.
func (d *SortedDict) EqualDict(ctx context.Context, other *SortedDict) (bool, error) {
	size, err := d.Size(ctx)
	if err != nil {
		return false, err
	}

	otherSize, err := other.Size(ctx)
	if err != nil {
		return false, err
	}

	if size != otherSize {
		return false, nil
	}

	for item, err := range other.All(ctx) {
		if err != nil {
			return false, err
		}

		ok, err := d.Items().Contains(ctx, Pair{Key: item.Key, Value: item.Value})
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// String renders the mapping as SortedDict([(1, 9), (3, 4)]), adding the
// quoted file path when the mapping isn't in memory.
func (d *SortedDict) String() string {
	items, err := ordered.Collect(d.All(context.Background()))
	if err != nil {
		return fmt.Sprintf("SortedDict(<%v>)", err)
	}

	if d.IsMemory() {
		return fmt.Sprintf("SortedDict([%s])", joinItems(items))
	}

	return fmt.Sprintf("SortedDict([%s], %q)", joinItems(items), d.StorageName())
}

func joinItems(items []Item) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}

	return strings.Join(parts, ", ")
}
