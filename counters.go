// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dcuckoo

// Counters. All public but there is an API to access them.
type Counters struct {
	Elements   int // number of elements currently residing in the table
	Inserts    int // number of new keys placed by Set
	Updates    int // number of times Set overwrote an existing key
	Lookups    int // number of lookups
	Deletes    int // number of keys removed by Delete
	Bumps      int // number of evicted slots
	Aborts     int // number of displacement chains that hit the step bound
	Rehashes   int // number of rehash passes
	Fails      int // number of times Set returned false
	Lost       int // previously present keys no rehash pass could place
	Filtered   int // lookups and deletes answered by the bloom filter
	MaxPathLen int // longest chain of bumps that ended in a placement
}

// Counters returns a copy of the current counters.
func (c *Cuckoo) Counters() Counters {
	cs := c.counters
	cs.Elements = c.count
	return cs
}

// GetCounter returns the value of a counter by name. The names match the
// lower case field names, "size" is the capacity.
func (c *Cuckoo) GetCounter(s string) int {
	switch s {
	case "elements":
		return c.count
	case "size":
		return c.capacity
	case "inserts":
		return c.counters.Inserts
	case "updates":
		return c.counters.Updates
	case "lookups":
		return c.counters.Lookups
	case "deletes":
		return c.counters.Deletes
	case "bumps":
		return c.counters.Bumps
	case "aborts":
		return c.counters.Aborts
	case "rehashes":
		return c.counters.Rehashes
	case "fails":
		return c.counters.Fails
	case "lost":
		return c.counters.Lost
	case "filtered":
		return c.counters.Filtered
	case "MaxPathLen":
		return c.counters.MaxPathLen
	default:
		panic("GetCounter: " + s)
	}
}
