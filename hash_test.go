// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashes(t *testing.T) {
	names := Hashes()
	for _, want := range []string{"aes", "city", "highway", "m3", "metro", "xxh", "xxh3"} {
		require.Contains(t, names, want)
	}
	require.IsIncreasing(t, names)

	for _, name := range names {
		if name == constHash || name == evictHash {
			continue
		}
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig(101)
			cfg.HashName = name
			cfg.Seed = 1
			c, err := NewWithConfig(cfg)
			require.NoError(t, err)
			for i := 0; i < 50; i++ {
				ok, err := c.Set(fmt.Sprintf("key%d", i), i)
				require.NoError(t, err)
				require.True(t, ok)
			}
			for i := 0; i < 50; i++ {
				v, ok := c.Get(fmt.Sprintf("key%d", i))
				require.True(t, ok)
				require.Equal(t, i, v)
			}
			checkInvariants(t, c)
		})
	}

	_, err := getHash("nope")
	require.ErrorIs(t, err, ErrUnknownHash)
	f, err := getHash("")
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Panics(t, func() { RegisterHash("nil", nil) })
}

func TestKeyHasher(t *testing.T) {
	kh := newKeyHasher(hashes["m3"])
	a := kh.sum(1, "key")
	require.Equal(t, a, kh.sum(1, "key"))
	require.NotEqual(t, a, kh.sum(2, "key"))
	require.NotEqual(t, a, kh.sum(1, "yek"))

	// keys longer than the base buffer
	long := string(make([]byte, 4096))
	require.Equal(t, kh.sum(5, long), kh.sum(5, long))
	require.NotEqual(t, kh.sum(5, long), kh.sum(5, long[1:]))

	idx := kh.candidates(nil, []int64{1, 2, 3}, "key", 7)
	require.Len(t, idx, 3)
	for _, i := range idx {
		require.True(t, i >= 0 && i < 7)
	}
}
