// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

// This program provides a test interface to the cuckoo hash tables.
// The only test it currently knows how to do is create the table,
// fill it with values, verify the values are in the table, and
// then verify they are not in the table
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"leb.io/hrff"

	"leb.io/dcuckoo"
	"leb.io/dcuckoo/dstest"
	"leb.io/dcuckoo/internal/log"
	"leb.io/dcuckoo/internal/siginfo"
	"leb.io/dcuckoo/metrics"
)

var ranb = flag.Bool("rb", false, "ignore base, use random base value")
var ranr = flag.Bool("rr", false, "random run, seeds are time based")
var seedb = flag.Int64("sb", 1, "seed for base values")
var seeds = flag.Int64("ss", 1, "seed for salts")

var config = flag.String("config", "", "TOML file with the table configuration, flags override it")
var hash = flag.String("h", "", "name of hash function {aes, city, highway, m3, metro, xxh, xxh3}")
var capacity = flag.Int("n", 1000, "capacity, slots in the table")
var prime = flag.Bool("p", false, "round capacity up to a prime")
var filter = flag.Bool("f", false, "use a bloom filter for negative lookups")
var ntrials = flag.Int("nt", 5, "number of trials")
var workers = flag.Int("j", 1, "trials run in parallel")
var ibase = flag.Int("base", 1, "base of fill series")
var flf = flag.Float64("flf", 0.95, "fill load factor")
var fo = flag.Bool("fo", false, "fill only")

var pt = flag.Bool("pt", false, "print summary for each trial")
var ps = flag.Bool("ps", false, "print counters at the end of all trials")
var verbose = flag.Int("v", 0, "log verbosity 0-2")
var maddr = flag.String("metrics", "", "serve prometheus metrics on this address and wait")
var cp = flag.String("cp", "", "write cpu profile to file")

var logger logr.Logger

func tdiff(begin, end time.Time) time.Duration {
	return end.Sub(begin)
}

func rate(n int, d time.Duration) hrff.Float64 {
	return hrff.Float64{V: float64(n) * (float64(time.Second) / float64(d)), U: "ops/sec"}
}

func statAdd(tot, add *dcuckoo.Counters) {
	tot.Elements += add.Elements
	tot.Inserts += add.Inserts
	tot.Updates += add.Updates
	tot.Lookups += add.Lookups
	tot.Deletes += add.Deletes
	tot.Bumps += add.Bumps
	tot.Aborts += add.Aborts
	tot.Rehashes += add.Rehashes
	tot.Fails += add.Fails
	tot.Lost += add.Lost
	tot.Filtered += add.Filtered
	if add.MaxPathLen > tot.MaxPathLen {
		tot.MaxPathLen = add.MaxPathLen
	}
}

type result struct {
	trial     int
	fs        dstest.FillStats
	cs        dcuckoo.Counters
	durations [3]time.Duration
	err       error
}

// results are shared between the trials and the SIGINFO handler
type results struct {
	mu   sync.Mutex
	done []result
	tot  dcuckoo.Counters
}

func (r *results) add(res result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, res)
	statAdd(&r.tot, &res.cs)
}

func (r *results) print() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Printf("trials: %d/%d done, bumps=%d, rehashes=%d, fails=%d, lost=%d\n",
		len(r.done), *ntrials, r.tot.Bumps, r.tot.Rehashes, r.tot.Fails, r.tot.Lost)
}

func baseConfig() dcuckoo.Config {
	cfg := dcuckoo.DefaultConfig(*capacity)
	if *config != "" {
		var err error
		cfg, err = dcuckoo.LoadConfig(*config)
		if err != nil {
			logger.Error(err, "config")
			os.Exit(1)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["n"] || *config == "" {
		cfg.Capacity = *capacity
	}
	if *hash != "" {
		cfg.HashName = *hash
	}
	if *prime {
		cfg.Prime = true
	}
	if *filter {
		cfg.Filter = true
	}
	return cfg
}

func trial(t int, cfg dcuckoo.Config, bseed int64, reg *prometheus.Registry) (res result) {
	res.trial = t
	c, err := dcuckoo.NewWithConfig(cfg)
	if err != nil {
		res.err = err
		return
	}
	c.SetLogger(logger.WithValues("trial", t))
	l := dcuckoo.NewLocked(c)
	if reg != nil {
		if err := reg.Register(metrics.NewCollector(l, prometheus.Labels{"trial": strconv.Itoa(t)})); err != nil {
			res.err = err
			return
		}
	}
	d := dstest.NewTester(l, bseed)
	d.Log = logger.WithValues("trial", t)

	start := time.Now()
	fs := d.Fill(*ibase, *flf, *ranb)
	res.durations[0] = tdiff(start, time.Now())
	res.fs = *fs
	if !*fo {
		start = time.Now()
		if err := d.Verify(fs.Base, fs.Used); err != nil {
			res.err = err
		}
		res.durations[1] = tdiff(start, time.Now())

		start = time.Now()
		if err := d.Delete(fs.Base, fs.Used); err != nil && res.err == nil {
			res.err = err
		}
		res.durations[2] = tdiff(start, time.Now())
		if n := l.Len(); n != 0 && res.err == nil {
			res.err = fmt.Errorf("delete left %d elements", n)
		}
	}
	res.cs = l.Counters()
	return
}

func runTrials() int {
	cfg := baseConfig()
	bseed := *seedb
	if *ranr {
		bseed = time.Now().UTC().UnixNano()
		cfg.Seed = 0
	} else {
		cfg.Seed = *seeds
	}

	var reg *prometheus.Registry
	if *maddr != "" {
		reg = prometheus.NewRegistry()
	}

	var rs results
	stop := siginfo.SetHandler(rs.print)
	defer stop()

	pool, err := ants.NewPool(*workers)
	if err != nil {
		logger.Error(err, "worker pool")
		return 1
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for t := 0; t < *ntrials; t++ {
		t := t
		tcfg := cfg
		if tcfg.Seed != 0 {
			tcfg.Seed += int64(t)
		}
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			rs.add(trial(t, tcfg, bseed+int64(t), reg))
		})
		if err != nil {
			wg.Done()
			logger.Error(err, "submit", "trial", t)
		}
	}
	wg.Wait()

	var labels = []string{"fill", "verify", "delete"}
	avg, fails, errs := 0.0, 0, 0
	for _, res := range rs.done {
		avg += res.fs.Load
		if res.fs.Failed {
			fails++
		}
		if res.err != nil {
			errs++
			logger.Error(res.err, "trial failed", "trial", res.trial)
		}
		if *pt {
			fmt.Printf("trial %d: used=%d/%d, lf=%0.4f, failed=%v, limited=%v, bumps=%d, rehashes=%d, maxpath=%d\n",
				res.trial, res.fs.Used, res.fs.Total, res.fs.Load, res.fs.Failed, res.fs.Limited,
				res.cs.Bumps, res.cs.Rehashes, res.cs.MaxPathLen)
			for k, v := range labels {
				if res.durations[k] > 0 {
					fmt.Printf("    %s: %v %h\n", v, res.durations[k], rate(res.fs.Used, res.durations[k]))
				}
			}
		}
	}
	if n := len(rs.done); n > 0 {
		avg /= float64(n)
	}

	sz := hrff.Int64{V: int64(cfg.Capacity), U: "slots"}
	fmt.Printf("trials: size=%h, hash=%s, trials=%d, fails=%d, errors=%d, avg lf=%0.4f\n",
		sz, cfg.HashName, *ntrials, fails, errs, avg)
	tot := rs.tot
	if tot.Inserts > 0 {
		fmt.Printf("trials: bumps/insert=%0.2f, rehashes=%d, lost=%d, MaxPathLen=%d\n",
			float64(tot.Bumps)/float64(tot.Inserts), tot.Rehashes, tot.Lost, tot.MaxPathLen)
	}
	if *ps {
		fmt.Printf("trials: counters=%#v\n", tot)
	}

	if reg != nil {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		logger.Info("serving metrics", "addr", *maddr)
		if err := http.ListenAndServe(*maddr, nil); err != nil {
			logger.Error(err, "metrics")
			return 1
		}
	}
	if errs > 0 {
		return 1
	}
	return 0
}

func main() {
	flag.Parse()
	logger = log.GetLogger(*verbose)

	if *cp != "" {
		f, err := os.Create(*cp)
		if err != nil {
			logger.Error(err, "cpu profile")
			os.Exit(1)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error(err, "cpu profile")
			os.Exit(1)
		}
		code := runTrials()
		pprof.StopCPUProfile()
		f.Close()
		os.Exit(code)
	}
	os.Exit(runTrials())
}
