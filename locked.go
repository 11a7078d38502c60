// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import "sync"

// Locked serializes every operation on a Cuckoo with a mutex. Get is not a
// read-only operation, it updates counters, so there is no RWMutex.
type Locked struct {
	mu sync.Mutex
	c  *Cuckoo
}

// NewLocked wraps c. c must not be used directly afterwards.
func NewLocked(c *Cuckoo) *Locked {
	return &Locked{c: c}
}

func (l *Locked) Get(key string) (Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Get(key)
}

func (l *Locked) Set(key string, val Value) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Set(key, val)
}

func (l *Locked) Delete(key string) (Value, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Delete(key)
}

func (l *Locked) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Len()
}

// Cap doesn't change, no lock needed.
func (l *Locked) Cap() int {
	return l.c.Cap()
}

func (l *Locked) Load() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Load()
}

// Counters returns a consistent snapshot of the counters.
func (l *Locked) Counters() Counters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Counters()
}

// With runs f with the lock held, for batches and Map.
func (l *Locked) With(f func(c *Cuckoo)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(l.c)
}

func (l *Locked) GetCounter(s string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.GetCounter(s)
}
