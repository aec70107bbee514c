// Package selector translates slice-like range selectors into a single SQL
// predicate over an ordered key column.
//
// A Range is a half-open interval [Start, Stop) where either end may be
// absent. Several ranges select their union:
//
//	pred, err := selector.Where("key", selector.To(2), selector.From(5))
//	// pred.Clause == "key < ? OR key >= ?", pred.Args == []any{2, 5}
//
// Ranges never carry a stride. The index can only walk contiguous key spans,
// so a Range with a Step is rejected with errors.ErrInvalidSelector.
package selector

import (
	"fmt"
	"strings"

	"github.com/amp-labs/litecollections/errors"
	"github.com/amp-labs/litecollections/optional"
)

// Range is a half-open key interval. An empty Start means "from the lowest
// key", an empty Stop means "through the highest key". Step only exists so
// that a stepped selector can be reported instead of silently ignored.
type Range struct {
	Start optional.Value[any]
	Stop  optional.Value[any]
	Step  optional.Value[any]
}

// All selects every key.
func All() Range {
	return Range{}
}

// From selects keys >= lo.
func From(lo any) Range {
	return Range{Start: optional.Some(lo)}
}

// To selects keys < hi.
func To(hi any) Range {
	return Range{Stop: optional.Some(hi)}
}

// Between selects lo <= key < hi.
func Between(lo, hi any) Range {
	return Range{Start: optional.Some(lo), Stop: optional.Some(hi)}
}

// WithStep returns a copy of r carrying a stride. Such a Range is always
// rejected by Where; it exists to model slice input faithfully.
func (r Range) WithStep(step any) Range {
	r.Step = optional.Some(step)

	return r
}

// Unbounded reports whether r has neither a lower nor an upper bound.
func (r Range) Unbounded() bool {
	return r.Start.Empty() && r.Stop.Empty()
}

// String renders r in slice notation, e.g. [2:4], [:2], [5:], [1:5:2].
func (r Range) String() string {
	bound := func(o optional.Value[any]) string {
		v, ok := o.Get()
		if !ok {
			return ""
		}

		return fmt.Sprintf("%v", v)
	}

	s := "[" + bound(r.Start) + ":" + bound(r.Stop)
	if r.Step.NonEmpty() {
		s += ":" + bound(r.Step)
	}

	return s + "]"
}

// Predicate is a boolean SQL fragment plus the positional arguments bound to
// its placeholders. An empty Clause matches every row.
type Predicate struct {
	Clause string
	Args   []any
}

// MatchesAll reports whether the predicate filters nothing.
func (p Predicate) MatchesAll() bool {
	return p.Clause == ""
}

// SQL renders the predicate as a WHERE clause, or "" if it matches all rows.
func (p Predicate) SQL() string {
	if p.MatchesAll() {
		return ""
	}

	return "WHERE " + p.Clause
}

// matchNothing is the clause for the union of zero ranges.
const matchNothing = "0"

// Where builds the predicate selecting rows whose column falls in any of
// the given ranges.
//
// Every range is checked for a step first, so a stepped range fails no matter
// where it appears. After that, any unbounded range short-circuits to the
// match-everything predicate. Arguments are returned in placeholder order.
func Where(column string, ranges ...Range) (Predicate, error) {
	for i, r := range ranges {
		if r.Step.NonEmpty() {
			return Predicate{}, &errors.InvalidSelectorError{Index: i, Selector: r}
		}
	}

	if len(ranges) == 0 {
		return Predicate{Clause: matchNothing}, nil
	}

	conditions := make([]string, 0, len(ranges))
	args := make([]any, 0, 2*len(ranges)) //nolint:mnd

	for _, r := range ranges {
		start, hasStart := r.Start.Get()
		stop, hasStop := r.Stop.Get()

		switch {
		case !hasStart && !hasStop:
			return Predicate{}, nil
		case !hasStart:
			conditions = append(conditions, column+" < ?")
			args = append(args, stop)
		case !hasStop:
			conditions = append(conditions, column+" >= ?")
			args = append(args, start)
		default:
			conditions = append(conditions, "(? <= "+column+" AND "+column+" < ?)")
			args = append(args, start, stop)
		}
	}

	return Predicate{
		Clause: strings.Join(conditions, " OR "),
		Args:   args,
	}, nil
}
