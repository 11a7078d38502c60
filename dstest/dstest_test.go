// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dstest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"leb.io/dcuckoo"
)

func TestFillVerifyDelete(t *testing.T) {
	cfg := dcuckoo.DefaultConfig(1000)
	cfg.Seed = 1
	c, err := dcuckoo.NewWithConfig(cfg)
	require.NoError(t, err)

	d := NewTester(c, 7)
	fs := d.Fill(1, 0.5, false)
	require.False(t, fs.Failed)
	require.False(t, fs.Limited)
	require.Equal(t, 500, fs.Used)
	require.Equal(t, 0, fs.Remaining)
	require.InDelta(t, 0.5, fs.Load, 1e-9)

	require.NoError(t, d.Verify(fs.Base, fs.Used))
	require.NoError(t, d.Delete(fs.Base, fs.Used))
	require.NoError(t, d.Absent(fs.Base, fs.Used))
	require.Equal(t, 0, c.Len())
}

func TestFillPastCapacity(t *testing.T) {
	cfg := dcuckoo.DefaultConfig(20)
	cfg.Seed = 3
	c, err := dcuckoo.NewWithConfig(cfg)
	require.NoError(t, err)

	d := NewTester(dcuckoo.NewLocked(c), 3)
	fs := d.Fill(0, 1.5, true)
	require.True(t, fs.Limited || fs.Failed)
	require.Less(t, fs.Used, fs.Thresh)
	require.Equal(t, fs.Thresh-fs.Used, fs.Remaining)
	require.Equal(t, fs.Remaining, d.Mr)
	require.NoError(t, d.Verify(fs.Base, fs.Used))
}
