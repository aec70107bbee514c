// Package value defines the scalar types the storage engine can bind and
// return: integers, floats, text, blobs and null. Keys and values of the
// sorted containers travel through this package, so anything outside these
// kinds is rejected at the boundary instead of being coerced.
package value

import (
	"bytes"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"hash"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amp-labs/litecollections/errors"
)

// Kind identifies which member of the union a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// String returns the engine's name for the storage class.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	case KindText:
		return "TEXT"
	case KindBlob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// timestampFormat matches the layout the sqlite3 driver writes time.Time with.
const timestampFormat = "2006-01-02 15:04:05.999999999-07:00"

// Value is a tagged union over the bindable scalar kinds. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Int returns an INTEGER value.
func Int(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Float returns a REAL value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Text returns a TEXT value.
func Text(s string) Value {
	return Value{kind: KindText, s: s}
}

// Blob returns a BLOB value. The slice is copied.
func Blob(b []byte) Value {
	return Value{kind: KindBlob, b: bytes.Clone(b)}
}

// NullValue returns the NULL value.
func NullValue() Value {
	return Value{}
}

// Of converts a plain Go value into a Value. Signed and unsigned integers,
// floats, strings, byte slices, booleans (as 0/1) and nil are accepted.
// Everything else, including unsigned values above math.MaxInt64, fails
// with errors.ErrTypeMismatch.
func Of(x any) (Value, error) { //nolint:cyclop
	switch v := x.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return v, nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		return fromUint(v)
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case bool:
		if v {
			return Int(1), nil
		}

		return Int(0), nil
	case string:
		return Text(v), nil
	case []byte:
		return Blob(v), nil
	default:
		return NullValue(), fmt.Errorf("%w: unsupported type %T", errors.ErrTypeMismatch, x)
	}
}

// MustOf is Of for values known to be valid, such as literals in tests.
func MustOf(x any) Value {
	v, err := Of(x)
	if err != nil {
		panic(err)
	}

	return v
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return NullValue(), fmt.Errorf("%w: %d overflows a signed 64-bit integer", errors.ErrTypeMismatch, u)
	}

	return Int(int64(u)), nil
}

// Kind returns the storage class of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInteger
}

// AsFloat returns the numeric payload as a float, for both INTEGER and REAL.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// AsText returns the text payload.
func (v Value) AsText() (string, bool) {
	return v.s, v.kind == KindText
}

// AsBlob returns the blob payload. The returned slice must not be modified.
func (v Value) AsBlob() ([]byte, bool) {
	return v.b, v.kind == KindBlob
}

// Interface returns the natural Go representation: nil, int64, float64,
// string or []byte.
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	case KindBlob:
		return v.b
	default:
		return nil
	}
}

// Value implements driver.Valuer so a Value can be bound directly.
func (v Value) Value() (driver.Value, error) {
	return v.Interface(), nil
}

// Scan implements sql.Scanner for decoding result columns.
func (v *Value) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = NullValue()
	case int64:
		*v = Int(s)
	case float64:
		*v = Float(s)
	case bool:
		*v = MustOf(s)
	case string:
		*v = Text(s)
	case []byte:
		*v = Blob(s)
	case time.Time:
		*v = Text(s.Format(timestampFormat))
	default:
		return fmt.Errorf("%w: cannot scan %T", errors.ErrWrongType, src)
	}

	return nil
}

// class is the engine's cross-type ordering: NULL < numbers < text < blobs.
func (v Value) class() int {
	switch v.kind {
	case KindNull:
		return 0
	case KindInteger, KindFloat:
		return 1
	case KindText:
		return 2 //nolint:mnd
	default:
		return 3 //nolint:mnd
	}
}

// Compare orders two values the way the storage engine's index does.
// It returns -1, 0 or 1.
func Compare(a, b Value) int {
	if ca, cb := a.class(), b.class(); ca != cb {
		if ca < cb {
			return -1
		}

		return 1
	}

	switch a.kind {
	case KindNull:
		return 0
	case KindInteger, KindFloat:
		return compareNumeric(a, b)
	case KindText:
		return strings.Compare(a.s, b.s)
	default:
		return bytes.Compare(a.b, b.b)
	}
}

func compareNumeric(a, b Value) int {
	if a.kind == KindInteger && b.kind == KindInteger {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		default:
			return 0
		}
	}

	af, _ := a.AsFloat()
	bf, _ := b.AsFloat()

	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// Equals reports whether the index would treat a and b as the same key.
// Integers and integral floats are equal; NULL equals NULL.
func (v Value) Equals(other Value) bool {
	return Compare(v, other) == 0
}

// UpdateHash implements hashing.Hashable consistently with Equals.
func (v Value) UpdateHash(h hash.Hash) error {
	var buf [9]byte

	switch v.kind {
	case KindNull:
		buf[0] = 'n'

		_, err := h.Write(buf[:1])

		return err
	case KindInteger:
		return writeInt(h, buf[:], v.i)
	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return writeInt(h, buf[:], int64(v.f))
		}

		buf[0] = 'f'
		binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v.f))

		_, err := h.Write(buf[:])

		return err
	case KindText:
		_, err := h.Write(append([]byte{'t'}, v.s...))

		return err
	default:
		_, err := h.Write(append([]byte{'b'}, v.b...))

		return err
	}
}

func writeInt(h hash.Hash, buf []byte, i int64) error {
	buf[0] = 'i'
	binary.BigEndian.PutUint64(buf[1:], uint64(i)) //nolint:gosec

	_, err := h.Write(buf)

	return err
}

// String renders v as a literal: 1, 1.5, "foo", x'00ff' or NULL.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}

		return s
	case KindText:
		return strconv.Quote(v.s)
	case KindBlob:
		return fmt.Sprintf("x'%x'", v.b)
	default:
		return "NULL"
	}
}

// Join renders a list of values separated by ", ".
func Join(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}

	return strings.Join(parts, ", ")
}
