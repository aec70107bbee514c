// Package ordered holds the behavior shared by the sorted containers: size,
// ascending traversal, membership, and single-key or range deletion over a
// table with a unique key index.
//
// All data access goes through Container.Execute, which turns the engine's
// generic "can't bind this argument" failure into an errors.TypeMismatchError
// that names the rejected value and its parameter position.
package ordered

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/amp-labs/litecollections/errors"
	"github.com/amp-labs/litecollections/logger"
	"github.com/amp-labs/litecollections/optional"
	"github.com/amp-labs/litecollections/selector"
	"github.com/amp-labs/litecollections/storage"
	"github.com/amp-labs/litecollections/value"
)

// Executor is the narrow view of a storage resource the containers need.
// *storage.DB implements it.
type Executor interface {
	Execute(ctx context.Context, query string, args ...any) (storage.Rows, error)
	Name() string
	IsMemory() bool
	PageSize() int
	Close() error
}

var _ Executor = (*storage.DB)(nil)

// bindFailure matches the message database/sql produces when a driver can't
// accept an argument, e.g. "sql: converting argument $1 type: unsupported type []int, a slice of int".
var bindFailure = regexp.MustCompile(`converting argument \$(\d+) type: (.*)$`)

// Container is an ordered, uniquely keyed table.
type Container struct {
	exec   Executor
	schema storage.Schema
}

// Open opens storage with opts, ensures the schema exists and returns a
// Container over it. On failure the storage is closed again.
func Open(ctx context.Context, schema storage.Schema, opts ...storage.Option) (*Container, error) {
	db, err := storage.Open(ctx, opts...)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureTable(ctx, schema); err != nil {
		errs := &errors.Collection{}
		errs.Add(err)
		errs.Add(db.Close())

		return nil, errs.GetError()
	}

	return New(db, schema), nil
}

// New wraps an already initialized executor.
func New(exec Executor, schema storage.Schema) *Container {
	return &Container{exec: exec, schema: schema}
}

// Schema returns the table layout.
func (c *Container) Schema() storage.Schema {
	return c.schema
}

// StorageName returns the name of the underlying resource.
func (c *Container) StorageName() string {
	return c.exec.Name()
}

// IsMemory reports whether the container lives in an ephemeral store.
func (c *Container) IsMemory() bool {
	return c.exec.IsMemory()
}

// Execute runs one statement. Every argument must be a scalar value.Of
// accepts; anything else is rejected before the statement is issued. Bind
// failures become *errors.TypeMismatchError; any other failure is returned
// unchanged.
func (c *Container) Execute(ctx context.Context, query string, args ...any) (storage.Rows, error) {
	bound, mismatch := bindArgs(args)
	if mismatch != nil {
		logger.Get(ctx).Debug("rejected parameter",
			"position", mismatch.Position, "reason", mismatch.Reason)

		return nil, mismatch
	}

	rows, err := c.exec.Execute(ctx, query, bound...)
	if err == nil {
		return rows, nil
	}

	if mismatch := classifyBindError(err, args); mismatch != nil {
		logger.Get(ctx).Debug("storage rejected parameter",
			"position", mismatch.Position, "reason", mismatch.Reason)

		return nil, mismatch
	}

	return nil, err
}

// bindArgs converts args to Values so the driver never applies its own
// coercions (time.Time to text, pointer dereferencing, named types).
func bindArgs(args []any) ([]any, *errors.TypeMismatchError) {
	bound := make([]any, len(args))

	for i, arg := range args {
		v, err := value.Of(arg)
		if err != nil {
			reason := strings.TrimPrefix(err.Error(), errors.ErrTypeMismatch.Error()+": ")

			return nil, &errors.TypeMismatchError{Position: i, Value: arg, Reason: reason}
		}

		bound[i] = v
	}

	return bound, nil
}

func classifyBindError(err error, args []any) *errors.TypeMismatchError {
	match := bindFailure.FindStringSubmatch(err.Error())
	if match == nil {
		return nil
	}

	pos, convErr := strconv.Atoi(match[1])
	if convErr != nil || pos < 1 || pos > len(args) {
		return nil
	}

	return &errors.TypeMismatchError{
		Position: pos - 1,
		Value:    args[pos-1],
		Reason:   match[2],
	}
}

// CheckKey rejects keys the index can't hold uniquely. NULLs never compare
// equal, so a null key could be inserted any number of times.
func CheckKey(key any, position int) error {
	if key == nil {
		return &errors.TypeMismatchError{Position: position, Value: key, Reason: "keys must not be null"}
	}

	if v, ok := key.(value.Value); ok && v.IsNull() {
		return &errors.TypeMismatchError{Position: position, Value: key, Reason: "keys must not be null"}
	}

	return nil
}

// Size returns the number of entries.
func (c *Container) Size(ctx context.Context) (int, error) {
	count, err := c.scalar(ctx, "SELECT COUNT(*) FROM "+c.schema.Table)
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// Contains reports whether an entry with key exists.
func (c *Container) Contains(ctx context.Context, key any) (bool, error) {
	count, err := c.scalar(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", c.schema.Table, c.schema.Key), key)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (c *Container) scalar(ctx context.Context, query string, args ...any) (int64, error) {
	rows, err := c.Execute(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	v, err := rows.Scalar()
	if err != nil {
		return 0, err
	}

	n, ok := v.AsInt()
	if !ok {
		return 0, fmt.Errorf("%w: expected an integer count, got %s", errors.ErrWrongType, v.Kind())
	}

	return n, nil
}

// Delete removes the entry with key, if any. Deleting an absent key is not
// an error.
func (c *Container) Delete(ctx context.Context, key any) error {
	_, err := c.Execute(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", c.schema.Table, c.schema.Key), key)

	return err
}

// DeleteRanges removes every entry whose key falls in any of the ranges.
func (c *Container) DeleteRanges(ctx context.Context, ranges ...selector.Range) error {
	pred, err := selector.Where(c.schema.Key, ranges...)
	if err != nil {
		return err
	}

	_, err = c.Execute(ctx, join("DELETE FROM "+c.schema.Table, pred.SQL()), pred.Args...)

	return err
}

// Select returns the given columns of every entry in the ranges, in
// ascending key order.
func (c *Container) Select(ctx context.Context, columns []string, ranges ...selector.Range) (storage.Rows, error) {
	pred, err := selector.Where(c.schema.Key, ranges...)
	if err != nil {
		return nil, err
	}

	query := join(
		fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), c.schema.Table),
		pred.SQL(),
		"ORDER BY "+c.schema.Key)

	return c.Execute(ctx, query, pred.Args...)
}

// Rows lazily yields the given columns of every entry in ascending key
// order. The first column must be the key. Rows are fetched a page at a
// time, each page one statement, so the container may be used (even
// mutated) while iterating. A failure is yielded once and ends the sequence.
func (c *Container) Rows(ctx context.Context, columns ...string) iter.Seq2[storage.Row, error] {
	cols := strings.Join(columns, ", ")
	first := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT ?",
		cols, c.schema.Table, c.schema.Key)
	next := fmt.Sprintf("SELECT %s FROM %s WHERE %s > ? ORDER BY %s LIMIT ?",
		cols, c.schema.Table, c.schema.Key, c.schema.Key)

	return func(yield func(storage.Row, error) bool) {
		page := c.exec.PageSize()
		last := optional.None[value.Value]()

		for {
			var (
				rows storage.Rows
				err  error
			)

			if key, ok := last.Get(); ok {
				rows, err = c.Execute(ctx, next, key, page)
			} else {
				rows, err = c.Execute(ctx, first, page)
			}

			if err != nil {
				yield(nil, err)

				return
			}

			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
			}

			if len(rows) < page {
				return
			}

			last = optional.Some(rows[len(rows)-1][0])
		}
	}
}

// Keys lazily yields every key in ascending order.
func (c *Container) Keys(ctx context.Context) iter.Seq2[value.Value, error] {
	return func(yield func(value.Value, error) bool) {
		for row, err := range c.Rows(ctx, c.schema.Key) {
			if err != nil {
				yield(value.NullValue(), err)

				return
			}

			if !yield(row[0], nil) {
				return
			}
		}
	}
}

// Collect drains a sequence produced by Keys or Rows.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T

	for item, err := range seq {
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// Close releases the storage resource.
func (c *Container) Close() error {
	return c.exec.Close()
}

func join(parts ...string) string {
	nonEmpty := parts[:0:0]

	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	return strings.Join(nonEmpty, " ")
}
