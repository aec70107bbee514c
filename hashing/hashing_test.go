package hashing

import (
	"errors"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken")

type brokenHashable struct{}

func (brokenHashable) UpdateHash(hash.Hash) error {
	return errBroken
}

func TestSha256(t *testing.T) {
	t.Parallel()

	sum, err := Sha256(HashableString("hello"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	_, err = Sha256(brokenHashable{})
	require.ErrorIs(t, err, errBroken)
}

func TestXXH3(t *testing.T) {
	t.Parallel()

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		a, err := XXH3(HashableString("hello"))
		require.NoError(t, err)

		b, err := XXH3(HashableString("hello"))
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("distinguishes inputs", func(t *testing.T) {
		t.Parallel()

		a, err := Sum64(HashableString("hello"))
		require.NoError(t, err)

		b, err := Sum64(HashableString("world"))
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("propagates errors", func(t *testing.T) {
		t.Parallel()

		_, err := XXH3(brokenHashable{})
		require.ErrorIs(t, err, errBroken)
	})
}
