// Package hashing lets values describe their contents to a hash.Hash so they
// can be bucketed in hash-keyed collections.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"

	"github.com/zeebo/xxh3"
)

// HashFunc turns a Hashable into a string key. Sha256 and XXH3 are HashFuncs.
type HashFunc func(hashable Hashable) (string, error)

// Hashable is an interface that allows an object to update
// a hash.Hash with its contents.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

// Sha256 returns the hex-encoded SHA256 of the given Hashable.
func Sha256(hashable Hashable) (string, error) {
	h := sha256.New()

	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXH3 returns the 64-bit xxh3 digest of the given Hashable, formatted in hex.
// It is much cheaper than Sha256 and is the default for in-process buckets.
func XXH3(hashable Hashable) (string, error) {
	sum, err := Sum64(hashable)
	if err != nil {
		return "", err
	}

	return strconv.FormatUint(sum, 16), nil
}

// Sum64 returns the raw 64-bit xxh3 digest of the given Hashable.
func Sum64(hashable Hashable) (uint64, error) {
	h := xxh3.New()

	if err := hashable.UpdateHash(h); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

// HashableString is a string that implements Hashable.
type HashableString string

func (s HashableString) UpdateHash(h hash.Hash) error {
	_, err := h.Write([]byte(s))

	return err
}
