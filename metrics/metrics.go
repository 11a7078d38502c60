// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

// Package metrics exports the counters of a locked table to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"leb.io/dcuckoo"
)

const namespace = "dcuckoo"

type counterDesc struct {
	desc *prometheus.Desc
	kind prometheus.ValueType
	get  func(cs *dcuckoo.Counters) int
}

// Collector implements prometheus.Collector for one table.
type Collector struct {
	t     *dcuckoo.Locked
	size  *prometheus.Desc
	load  *prometheus.Desc
	descs []counterDesc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for t. labels are attached to every
// metric, use them to tell tables apart.
func NewCollector(t *dcuckoo.Locked, labels prometheus.Labels) *Collector {
	d := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, labels)
	}
	counter := func(name, help string, get func(cs *dcuckoo.Counters) int) counterDesc {
		return counterDesc{desc: d(name, help), kind: prometheus.CounterValue, get: get}
	}
	return &Collector{
		t:    t,
		size: d("slots", "Fixed number of slots."),
		load: d("load_factor", "Occupied slots over slots."),
		descs: []counterDesc{
			{desc: d("elements", "Keys in the table."), kind: prometheus.GaugeValue,
				get: func(cs *dcuckoo.Counters) int { return cs.Elements }},
			{desc: d("max_path_len", "Longest displacement chain that ended in a placement."), kind: prometheus.GaugeValue,
				get: func(cs *dcuckoo.Counters) int { return cs.MaxPathLen }},
			counter("inserts_total", "New keys placed.", func(cs *dcuckoo.Counters) int { return cs.Inserts }),
			counter("updates_total", "Existing keys overwritten.", func(cs *dcuckoo.Counters) int { return cs.Updates }),
			counter("lookups_total", "Lookups.", func(cs *dcuckoo.Counters) int { return cs.Lookups }),
			counter("deletes_total", "Keys deleted.", func(cs *dcuckoo.Counters) int { return cs.Deletes }),
			counter("bumps_total", "Evictions.", func(cs *dcuckoo.Counters) int { return cs.Bumps }),
			counter("aborts_total", "Displacement chains that hit the step bound.", func(cs *dcuckoo.Counters) int { return cs.Aborts }),
			counter("rehashes_total", "Rehash passes.", func(cs *dcuckoo.Counters) int { return cs.Rehashes }),
			counter("fails_total", "Inserts that were refused or dropped.", func(cs *dcuckoo.Counters) int { return cs.Fails }),
			counter("lost_total", "Keys lost by a rehash that gave up.", func(cs *dcuckoo.Counters) int { return cs.Lost }),
			counter("filtered_total", "Operations answered by the bloom filter.", func(cs *dcuckoo.Counters) int { return cs.Filtered }),
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.load
	for _, d := range c.descs {
		ch <- d.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var cs dcuckoo.Counters
	var load float64
	c.t.With(func(t *dcuckoo.Cuckoo) {
		cs = t.Counters()
		load = t.Load()
	})
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(c.t.Cap()))
	ch <- prometheus.MustNewConstMetric(c.load, prometheus.GaugeValue, load)
	for _, d := range c.descs {
		ch <- prometheus.MustNewConstMetric(d.desc, d.kind, float64(d.get(&cs)))
	}
}
