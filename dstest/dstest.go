// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

// small step towards creating a package that can test data structures
package dstest

import (
	"fmt"
	"math/rand"

	"github.com/go-logr/logr"

	"leb.io/dcuckoo"
)

// basic data structures methods and a method to get stats
type DSTester interface {
	dcuckoo.Container
	GetCounter(stat string) int
}

// return information about what happened during a fill
type FillStats struct {
	Load      float64
	Base      int
	Total     int // capacity of the table
	Thresh    int // number of inserts requested
	Used      int // number of inserts that succeeded
	Remaining int
	Failed    bool // an insert was dropped
	Limited   bool // the table was full
}

type DSTest struct {
	Seed      int64      // seed used to control fill stream
	Mr        int        // Max remaining
	FillStats            // stats
	I         DSTester   // functions
	R         *rand.Rand // random number generator with no lock
	Log       logr.Logger
}

func NewTester(i DSTester, seed int64) *DSTest {
	d := DSTest{Seed: seed, I: i, Log: logr.Discard()}
	d.R = rand.New(rand.NewSource(seed)) // no lock
	return &d
}

// Key is the key used for the i-th element of a fill.
func Key(i int) string {
	return fmt.Sprintf("key%d", i)
}

func (d *DSTest) rbetween(a int, b int) int {
	return a + d.R.Intn(b-a+1)
}

// Fill inserts flf * Cap keys starting at key ibase, the value of each key is
// its position in the fill starting at 1. If r is set the base is random.
// Fill stops at the first insert that fails.
func (d *DSTest) Fill(ibase int, flf float64, r bool) *FillStats {
	var fs FillStats
	base := ibase
	if r {
		base = d.rbetween(1, 1<<29)
	}
	fs.Base = base
	fs.Total = d.I.Cap()
	fs.Thresh = int(float64(fs.Total) * flf)
	fs.Used = fs.Thresh
	amax := base + fs.Thresh
	svi := amax
	d.Log.V(1).Info("fill", "base", base, "n", fs.Thresh)

	cnt := 1
	for i := base; i < amax; i++ {
		ok, err := d.I.Set(Key(i), cnt)
		if err != nil {
			panic(err)
		}
		if !ok {
			// Two reasons we fail, table full (fs.Limited) or dropped (fs.Failed)
			if d.I.Len() >= d.I.Cap() {
				fs.Limited = true
			} else {
				fs.Failed = true
			}
			d.Log.V(1).Info("fill failed", "at", i, "remain", amax-i, "bumps", d.I.GetCounter("bumps"),
				"elements", d.I.GetCounter("elements"), "size", d.I.GetCounter("size"))
			fs.Used = i - base
			svi = i
			break
		}
		cnt++
	}
	fs.Load = d.I.Load()
	fs.Remaining = amax - svi
	if fs.Remaining > d.Mr {
		d.Mr = fs.Remaining
	}
	d.FillStats = fs
	return &fs
}

// test lookup by looking for a sequence of keys and making sure the values match the keys
func (d *DSTest) Verify(base, n int) error {
	cnt := 0
	for i := base; i < base+n; i++ {
		cnt++
		v, ok := d.I.Get(Key(i))
		if !ok {
			return fmt.Errorf("verify: lookup FAILED i=%d, cnt=%d", i, cnt)
		}
		if v != cnt {
			return fmt.Errorf("verify: FAIL i=%d, cnt=%d != v=%v", i, cnt, v)
		}
	}
	return nil
}

// Delete removes n keys starting at base and checks the removed values.
func (d *DSTest) Delete(base, n int) error {
	cnt := 0
	for i := base; i < base+n; i++ {
		cnt++
		v, ok := d.I.Delete(Key(i))
		if !ok {
			return fmt.Errorf("delete: key %q not found", Key(i))
		}
		if v != cnt {
			return fmt.Errorf("delete: key %q had %v, want %d", Key(i), v, cnt)
		}
	}
	return nil
}

// Absent checks that none of the n keys starting at base can be found.
func (d *DSTest) Absent(base, n int) error {
	for i := base; i < base+n; i++ {
		if _, ok := d.I.Get(Key(i)); ok {
			return fmt.Errorf("absent: key %q still present", Key(i))
		}
	}
	return nil
}
