// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	cfg := DefaultConfig(200)
	cfg.Seed = 1
	cfg.Filter = true
	c, err := NewWithConfig(cfg)
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		ok, err := c.Set(fmt.Sprintf("key%d", i), i)
		require.NoError(t, err)
		require.True(t, ok)
	}
	for i := 0; i < 100; i++ {
		_, ok := c.Get(fmt.Sprintf("absent%d", i))
		require.False(t, ok)
	}
	require.Greater(t, c.Counters().Filtered, 50)

	// enough deletes to rebuild the filter once
	for i := 0; i < 150; i += 2 {
		v, ok := c.Delete(fmt.Sprintf("key%d", i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	require.Less(t, c.fdeletes, 200/filterRebuildDeletes)
	for i := 0; i < 150; i++ {
		v, ok := c.Get(fmt.Sprintf("key%d", i))
		require.Equal(t, i%2 == 1, ok, "key%d", i)
		if ok {
			require.Equal(t, i, v)
		}
	}
	checkInvariants(t, c)
}

func TestFilterZeroCapacity(t *testing.T) {
	cfg := DefaultConfig(0)
	cfg.Filter = true
	c, err := NewWithConfig(cfg)
	require.NoError(t, err)
	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 1, c.Counters().Filtered)
}

// Full tables place most keys through eviction chains.
func TestFilterFull(t *testing.T) {
	bumps := 0
	for seed := int64(1); seed <= 20; seed++ {
		cfg := DefaultConfig(20)
		cfg.Seed = seed
		cfg.Filter = true
		c, err := NewWithConfig(cfg)
		require.NoError(t, err)

		for i, ok := range bulkSet(t, c, 20) {
			require.True(t, ok, "seed %d, key%d", seed, i)
		}
		for i := 0; i < 20; i++ {
			v, ok := c.Get(fmt.Sprintf("key%d", i))
			require.True(t, ok, "seed %d, key%d", seed, i)
			require.Equal(t, i, v)
		}
		require.Equal(t, 0, c.Counters().Filtered, "seed %d", seed)
		bumps += c.Counters().Bumps

		for i := 0; i < 20; i++ {
			v, ok := c.Delete(fmt.Sprintf("key%d", i))
			require.True(t, ok, "seed %d, key%d", seed, i)
			require.Equal(t, i, v)
		}
		require.Equal(t, 0, c.Len())
	}
	require.Greater(t, bumps, 0)
}

const evictHash = "evict"

func TestFilterEvictedInsert(t *testing.T) {
	// "b" has the single candidate 0, "a" has 0 under salt 0 and 1 otherwise
	var a0 []byte
	newKeyHasher(func(b []byte) uint64 {
		a0 = append([]byte(nil), b...)
		return 0
	}).sum(0, "a")
	RegisterHash(evictHash, func(b []byte) uint64 {
		if bytes.Equal(b, a0) || b[len(b)-1] != 'a' {
			return 0
		}
		return 1
	})

	cfg := DefaultConfig(3)
	cfg.Seed = 1
	cfg.HashName = evictHash
	cfg.Filter = true
	c, err := NewWithConfig(cfg)
	require.NoError(t, err)
	for i := range c.salts {
		c.salts[i] = int64(i)
	}

	c.put(0, Bucket{key: "a", val: 1})
	c.count++
	u, ok := c.displace(Bucket{key: "b", val: 2})
	require.True(t, ok)
	require.Equal(t, Bucket{}, u)
	c.count++
	require.Equal(t, 1, c.Counters().Bumps)
	checkInvariants(t, c)

	for k, want := range map[string]int{"a": 1, "b": 2} {
		v, ok := c.Get(k)
		require.True(t, ok, k)
		require.Equal(t, want, v)
	}
	require.Equal(t, 0, c.Counters().Filtered)
}
