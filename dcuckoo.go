// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// Package dcuckoo implements a fixed capacity d-ary cuckoo hash table with string keys.
//
// Every key has NumHashes candidate slots, one per salt. An insert that finds
// all of its candidates occupied evicts the occupant of the first candidate
// and re-places it, and so on, for at most MaxPathLen bumps. If that chain
// does not end in a free slot the salts are regenerated and the table is
// rehashed in place. The capacity never changes.
//
// A Cuckoo is not safe for concurrent use, see Locked.
package dcuckoo

import (
	"math/rand"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/willf/bitset"

	"leb.io/dcuckoo/internal/primes"
)

// For historical reasons this is called a Bucket but it is a single slot.
type Bucket struct {
	key string
	val Value
}

// one eviction, enough to undo it
type move struct {
	slot int
	prev Bucket
}

var errLost = errors.New("dcuckoo: key lost during rehash")

// The main data structure for cuckoo hash.
// Occupancy of a slot is tracked in occ, never by a reserved key.
type Cuckoo struct {
	slots    []Bucket
	occ      *bitset.BitSet
	capacity int
	count    int
	maxSteps int
	salts    []int64
	cfg      Config
	kh       *keyHasher
	rnd      *rand.Rand
	idx      []int  // scratch for candidates
	path     []move // evictions of the current chain
	filter   *bloom.BloomFilter
	fdeletes int // deletes since the filter was rebuilt
	log      logr.Logger
	counters Counters
}

// New creates a table with capacity slots and the default configuration.
func New(capacity int) (*Cuckoo, error) {
	return NewWithConfig(DefaultConfig(capacity))
}

// NewWithConfig creates a table from cfg. Zero fields take their defaults.
func NewWithConfig(cfg Config) (*Cuckoo, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	if cfg.Prime && cfg.Capacity > 0 {
		cfg.Capacity = primes.NextPrime(cfg.Capacity)
	}
	hf, err := getHash(cfg.HashName)
	if err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}

	c := &Cuckoo{
		slots:    make([]Bucket, cfg.Capacity),
		occ:      bitset.New(uint(cfg.Capacity)),
		capacity: cfg.Capacity,
		maxSteps: cfg.MaxPathLen,
		salts:    make([]int64, cfg.NumHashes),
		cfg:      cfg,
		kh:       newKeyHasher(hf),
		rnd:      rand.New(rand.NewSource(cfg.Seed)),
		idx:      make([]int, 0, cfg.NumHashes),
		log:      logr.Discard(),
	}
	if c.maxSteps == 0 {
		c.maxSteps = cfg.Capacity
	}
	if cfg.Filter {
		n := cfg.Capacity
		if n == 0 {
			n = 1
		}
		c.filter = bloom.NewWithEstimates(uint(n), cfg.FilterFP)
	}
	c.newSalts()
	return c, nil
}

// SetLogger sets the logger used to report rehashes and lost keys.
func (c *Cuckoo) SetLogger(l logr.Logger) {
	c.log = l.WithName("dcuckoo")
}

// Config returns the configuration the table was built with, defaults and seed filled in.
func (c *Cuckoo) Config() Config {
	return c.cfg
}

// Cap returns the fixed number of slots.
func (c *Cuckoo) Cap() int {
	return c.capacity
}

// Len returns the number of keys in the table.
func (c *Cuckoo) Len() int {
	return c.count
}

// Load returns Len/Cap. A table with no slots reports 0 even though it is full.
func (c *Cuckoo) Load() float64 {
	if c.capacity == 0 {
		return 0
	}
	return float64(c.count) / float64(c.capacity)
}

// replace every salt
func (c *Cuckoo) newSalts() {
	span := c.cfg.SaltMax - c.cfg.SaltMin + 1
	for i := range c.salts {
		c.salts[i] = int64(c.cfg.SaltMin + c.rnd.Intn(span))
	}
}

// candidates returns the candidate slots of key in salt order. The slice is
// reused by the next call.
func (c *Cuckoo) candidates(key string) []int {
	c.idx = c.kh.candidates(c.idx, c.salts, key, c.capacity)
	return c.idx
}

// find returns the slot holding key or -1.
func (c *Cuckoo) find(key string) int {
	if c.capacity == 0 {
		return -1
	}
	for _, i := range c.candidates(key) {
		if c.occ.Test(uint(i)) && c.slots[i].key == key {
			return i
		}
	}
	return -1
}

// consistent reports whether slot i is a candidate of key under the current salts.
func (c *Cuckoo) consistent(i int, key string) bool {
	for _, j := range c.candidates(key) {
		if i == j {
			return true
		}
	}
	return false
}

func (c *Cuckoo) put(i int, b Bucket) {
	c.slots[i] = b
	c.occ.Set(uint(i))
	if c.filter != nil {
		c.filter.AddString(b.key)
	}
}

func (c *Cuckoo) clear(i int) {
	c.slots[i] = Bucket{}
	c.occ.Clear(uint(i))
}

// Get returns the value stored under key.
func (c *Cuckoo) Get(key string) (Value, bool) {
	c.counters.Lookups++
	if c.filtered(key) {
		return nil, false
	}
	i := c.find(key)
	if i < 0 {
		return nil, false
	}
	return c.slots[i].val, true
}

// Set stores val under key and reports whether the pair is in the table.
// An existing key is overwritten in place. A new key is refused when the
// table is full, and dropped when neither displacement nor rehashing can
// place it. A nil val is an error.
func (c *Cuckoo) Set(key string, val Value) (bool, error) {
	if val == nil {
		return false, errors.Wrapf(ErrInvalidValue, "key %q", shortKey(key))
	}
	if i := c.find(key); i >= 0 {
		c.slots[i].val = val
		c.counters.Updates++
		return true, nil
	}
	if c.count >= c.capacity {
		c.counters.Fails++
		return false, nil
	}
	if !c.place(Bucket{key: key, val: val}) {
		c.counters.Fails++
		return false, nil
	}
	c.count++
	c.counters.Inserts++
	return true, nil
}

// Delete removes key and returns the value it had.
func (c *Cuckoo) Delete(key string) (Value, bool) {
	if c.filtered(key) {
		return nil, false
	}
	i := c.find(key)
	if i < 0 {
		return nil, false
	}
	v := c.slots[i].val
	c.clear(i)
	c.count--
	c.counters.Deletes++
	c.fdeletes++
	if c.filter != nil && c.fdeletes > c.capacity/filterRebuildDeletes {
		c.rebuildFilter()
	}
	return v, true
}

// Map calls iter for each key in slot order until iter returns true.
func (c *Cuckoo) Map(iter func(key string, val Value) (stop bool)) {
	for i, ok := c.occ.NextSet(0); ok; i, ok = c.occ.NextSet(i + 1) {
		if iter(c.slots[i].key, c.slots[i].val) {
			return
		}
	}
}

// place inserts a key that is not in the table, rehashing if needed.
func (c *Cuckoo) place(b Bucket) bool {
	u, ok := c.displace(b)
	if ok {
		return true
	}
	return c.rehash(u)
}

// displace runs one displacement chain for b. Each step puts the pending pair
// in a free candidate or one that already holds its key, otherwise it evicts
// the occupant of candidate 0 and continues with the evicted pair. After
// maxSteps bumps the chain is undone and b is returned unplaced.
func (c *Cuckoo) displace(b Bucket) (Bucket, bool) {
	orig := b
	c.path = c.path[:0]
	for steps := 0; ; {
		idx := c.candidates(b.key)
		for _, i := range idx {
			if !c.occ.Test(uint(i)) || c.slots[i].key == b.key {
				c.put(i, b)
				// orig went in by eviction, put only saw the last pair
				if steps > 0 && c.filter != nil {
					c.filter.AddString(orig.key)
				}
				if steps > c.counters.MaxPathLen {
					c.counters.MaxPathLen = steps
				}
				return Bucket{}, true
			}
		}
		i := idx[0]
		c.path = append(c.path, move{slot: i, prev: c.slots[i]})
		c.slots[i], b = b, c.slots[i]
		c.counters.Bumps++
		steps++
		if steps > c.maxSteps {
			c.counters.Aborts++
			c.log.V(2).Info("displacement aborted", "key", shortKey(orig.key), "steps", steps)
			// Handing rehash the current pending pair instead would give the
			// same Get results, but then a failed insert could drop some
			// other key rather than orig.
			c.unwind()
			return orig, false
		}
	}
}

// unwind undoes the evictions of the current chain, newest first.
func (c *Cuckoo) unwind() {
	for j := len(c.path) - 1; j >= 0; j-- {
		m := c.path[j]
		c.slots[m.slot] = m.prev
	}
	c.path = c.path[:0]
}

// rehash draws new salts, lifts out every key whose slot is no longer one of
// its candidates and places pending followed by the lifted keys. Pairs whose
// chain fails are held aside and the pass is repeated with fresh salts, at
// most MaxRehashes times. Whatever is still held aside after that is dropped:
// pending means the insert failed, any other pair was already counted and is lost.
func (c *Cuckoo) rehash(pending Bucket) bool {
	homeless := []Bucket{pending}
	for pass := 1; pass <= c.cfg.MaxRehashes && len(homeless) > 0; pass++ {
		c.counters.Rehashes++
		c.newSalts()
		for i, ok := c.occ.NextSet(0); ok; i, ok = c.occ.NextSet(i + 1) {
			b := c.slots[i]
			if !c.consistent(int(i), b.key) {
				c.clear(int(i))
				homeless = append(homeless, b)
			}
		}
		c.log.V(1).Info("rehash", "pass", pass, "homeless", len(homeless), "elements", c.count, "size", c.capacity)

		var still []Bucket
		for _, b := range homeless {
			if u, ok := c.displace(b); !ok {
				still = append(still, u)
			}
		}
		homeless = still
		c.rebuildFilter()
	}

	placed := true
	for _, b := range homeless {
		if b.key == pending.key {
			placed = false
			continue
		}
		c.count--
		c.counters.Lost++
		c.log.Error(errLost, "rehash gave up", "key", shortKey(b.key), "passes", c.cfg.MaxRehashes)
	}
	return placed
}

// keys can be whole files, keep log lines and errors short
func shortKey(key string) string {
	const max = 32
	if len(key) <= max {
		return key
	}
	return key[:max] + "..."
}
