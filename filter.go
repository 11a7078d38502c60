// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dcuckoo

// A bloom filter can't forget, so after Cap/filterRebuildDeletes deletes it
// is rebuilt from the slots.
const filterRebuildDeletes = 4

// filtered reports whether the bloom filter rules key out.
func (c *Cuckoo) filtered(key string) bool {
	if c.filter == nil || c.filter.TestString(key) {
		return false
	}
	c.counters.Filtered++
	return true
}

func (c *Cuckoo) rebuildFilter() {
	if c.filter == nil {
		return
	}
	c.filter.ClearAll()
	c.Map(func(key string, _ Value) bool {
		c.filter.AddString(key)
		return false
	})
	c.fdeletes = 0
}
