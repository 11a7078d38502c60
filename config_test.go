// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
		cap  int
	}{
		{"empty", "", nil, 0},
		{"int", "capacity = 20", nil, 20},
		{"integral float", "capacity = 3.0", nil, 3},
		{"fraction", "capacity = 2.2", ErrInvalidSize, 0},
		{"string", `capacity = "20"`, ErrInvalidSize, 0},
		{"negative", "capacity = -1", ErrInvalidSize, 0},
		{"hashes", "capacity = 10\nhashes = -1", ErrBadConfig, 0},
		{"salts", "salt_min = 10\nsalt_max = 1", ErrBadConfig, 0},
		{"filter_fp", "filter_fp = 1.5", ErrBadConfig, 0},
		{"syntax", "capacity = ", ErrBadConfig, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DecodeConfig(tt.doc)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.cap, cfg.Capacity)
			require.Equal(t, DefaultConfig(tt.cap), cfg)
		})
	}
}

func TestDecodeConfigFields(t *testing.T) {
	cfg, err := DecodeConfig(`
capacity = 100
hashes = 4
max_path_len = 10
max_rehashes = 3
salt_min = 1
salt_max = 99
hash = "xxh"
seed = 7
prime = true
filter = true
filter_fp = 0.001
`)
	require.NoError(t, err)
	require.Equal(t, Config{
		Capacity:    100,
		NumHashes:   4,
		MaxPathLen:  10,
		MaxRehashes: 3,
		SaltMin:     1,
		SaltMax:     99,
		HashName:    "xxh",
		Seed:        7,
		Prime:       true,
		Filter:      true,
		FilterFP:    0.001,
	}, cfg)

	c, err := NewWithConfig(cfg)
	require.NoError(t, err)
	require.Equal(t, 101, c.Cap())
	require.Len(t, c.salts, 4)
	require.Equal(t, 10, c.maxSteps)
	for _, s := range c.salts {
		require.True(t, s >= 1 && s <= 99)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dcuckoo.toml")
	require.NoError(t, os.WriteFile(path, []byte("capacity = 50\nhash = \"city\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 50, cfg.Capacity)
	require.Equal(t, "city", cfg.HashName)
	require.Equal(t, DefaultNumHashes, cfg.NumHashes)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, ErrBadConfig)
}

func TestNewWithConfig(t *testing.T) {
	c, err := NewWithConfig(Config{Capacity: 10, Seed: 3})
	require.NoError(t, err)
	cfg := c.Config()
	require.Equal(t, DefaultNumHashes, cfg.NumHashes)
	require.Equal(t, DefaultHash, cfg.HashName)
	require.Equal(t, int64(3), cfg.Seed)
	require.Equal(t, 10, c.maxSteps)

	c, err = NewWithConfig(Config{Capacity: 10})
	require.NoError(t, err)
	require.NotZero(t, c.Config().Seed)

	_, err = NewWithConfig(Config{Capacity: 10, HashName: "nope"})
	require.ErrorIs(t, err, ErrUnknownHash)
	_, err = NewWithConfig(Config{Capacity: -5})
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = NewWithConfig(Config{Capacity: 5, MaxPathLen: -1})
	require.ErrorIs(t, err, ErrBadConfig)
}
