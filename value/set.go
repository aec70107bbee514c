package value

import (
	"github.com/amp-labs/litecollections/hashing"
)

// Set is an unordered collection of distinct Values. Values are bucketed by
// hash, and collisions within a bucket are resolved with Equals, so 1 and 1.0
// land on the same element just as they would in the storage index.
type Set struct {
	hash    hashing.HashFunc
	buckets map[string][]Value
	size    int
}

// NewSet returns an empty Set hashed with xxh3.
func NewSet() *Set {
	return &Set{
		hash:    hashing.XXH3,
		buckets: make(map[string][]Value),
	}
}

// SetOf builds a Set from plain Go values, rejecting unsupported types.
func SetOf(items ...any) (*Set, error) {
	s := NewSet()

	for _, item := range items {
		v, err := Of(item)
		if err != nil {
			return nil, err
		}

		if _, err := s.Add(v); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add inserts v and reports whether it was not already present.
func (s *Set) Add(v Value) (bool, error) {
	key, err := s.hash(v)
	if err != nil {
		return false, err
	}

	for _, prev := range s.buckets[key] {
		if prev.Equals(v) {
			return false, nil
		}
	}

	s.buckets[key] = append(s.buckets[key], v)
	s.size++

	return true, nil
}

// Contains reports whether an element equal to v is present.
func (s *Set) Contains(v Value) (bool, error) {
	key, err := s.hash(v)
	if err != nil {
		return false, err
	}

	for _, prev := range s.buckets[key] {
		if prev.Equals(v) {
			return true, nil
		}
	}

	return false, nil
}

// Size returns the number of distinct elements.
func (s *Set) Size() int {
	return s.size
}

// Equal reports whether both sets hold the same elements.
func (s *Set) Equal(other *Set) (bool, error) {
	if s.size != other.size {
		return false, nil
	}

	for _, bucket := range s.buckets {
		for _, v := range bucket {
			ok, err := other.Contains(v)
			if err != nil || !ok {
				return false, err
			}
		}
	}

	return true, nil
}
