// Copyright © 2014-2017 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"math"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Defaults used by New and filled in by NewWithConfig for zero fields.
const (
	DefaultNumHashes   = 8
	DefaultMaxRehashes = 64
	DefaultSaltMin     = -1000
	DefaultSaltMax     = 1000
	DefaultFilterFP    = 0.01
)

// Configuration info for the cuckoo hash is collected in this structure.
// All fields are exported/public. Zero values select the defaults.
type Config struct {
	Capacity    int     `toml:"-"`            // number of slots, fixed for the life of the table
	NumHashes   int     `toml:"hashes"`       // candidate slots per key
	MaxPathLen  int     `toml:"max_path_len"` // longest displacement chain, 0 means Capacity
	MaxRehashes int     `toml:"max_rehashes"` // rehash passes per insert before giving up
	SaltMin     int     `toml:"salt_min"`     // salts are drawn uniformly from [SaltMin, SaltMax]
	SaltMax     int     `toml:"salt_max"`
	HashName    string  `toml:"hash"`   // name of hashing function used, see Hashes
	Seed        int64   `toml:"seed"`   // seed for salts, 0 means time based
	Prime       bool    `toml:"prime"`  // round Capacity up to the next prime
	Filter      bool    `toml:"filter"` // keep a bloom filter for negative lookups
	FilterFP    float64 `toml:"filter_fp"`
}

// DefaultConfig returns the configuration New uses for capacity.
func DefaultConfig(capacity int) Config {
	return Config{
		Capacity:    capacity,
		NumHashes:   DefaultNumHashes,
		MaxRehashes: DefaultMaxRehashes,
		SaltMin:     DefaultSaltMin,
		SaltMax:     DefaultSaltMax,
		HashName:    DefaultHash,
		FilterFP:    DefaultFilterFP,
	}
}

// withDefaults fills zero fields and checks the result.
func (cfg Config) withDefaults() (Config, error) {
	if cfg.Capacity < 0 {
		return cfg, errors.Wrapf(ErrInvalidSize, "capacity %d", cfg.Capacity)
	}
	if cfg.NumHashes == 0 {
		cfg.NumHashes = DefaultNumHashes
	}
	if cfg.MaxRehashes == 0 {
		cfg.MaxRehashes = DefaultMaxRehashes
	}
	if cfg.SaltMin == 0 && cfg.SaltMax == 0 {
		cfg.SaltMin, cfg.SaltMax = DefaultSaltMin, DefaultSaltMax
	}
	if cfg.HashName == "" {
		cfg.HashName = DefaultHash
	}
	if cfg.FilterFP == 0 {
		cfg.FilterFP = DefaultFilterFP
	}
	switch {
	case cfg.NumHashes < 1:
		return cfg, errors.Wrapf(ErrBadConfig, "hashes=%d", cfg.NumHashes)
	case cfg.MaxPathLen < 0:
		return cfg, errors.Wrapf(ErrBadConfig, "max_path_len=%d", cfg.MaxPathLen)
	case cfg.MaxRehashes < 0:
		return cfg, errors.Wrapf(ErrBadConfig, "max_rehashes=%d", cfg.MaxRehashes)
	case cfg.SaltMin > cfg.SaltMax:
		return cfg, errors.Wrapf(ErrBadConfig, "salt range [%d, %d]", cfg.SaltMin, cfg.SaltMax)
	case cfg.FilterFP <= 0 || cfg.FilterFP >= 1:
		return cfg, errors.Wrapf(ErrBadConfig, "filter_fp=%f", cfg.FilterFP)
	}
	return cfg, nil
}

// ValidSize converts a dynamically typed size to a capacity.
// Integers must be non-negative, floats must also be integral and finite.
// Anything else, strings included, is not a size.
func ValidSize(size interface{}) (int, error) {
	if size == nil {
		return 0, errors.Wrap(ErrInvalidSize, "nil")
	}
	v := reflect.ValueOf(size)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 || n > math.MaxInt32 {
			return 0, errors.Wrapf(ErrInvalidSize, "%d", n)
		}
		return int(n), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt32 {
			return 0, errors.Wrapf(ErrInvalidSize, "%d", n)
		}
		return int(n), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
			return 0, errors.Wrapf(ErrInvalidSize, "%v", f)
		}
		return int(f), nil
	default:
		return 0, errors.Wrapf(ErrInvalidSize, "%T is not a number", size)
	}
}

// fileConfig mirrors Config for decoding. Capacity is left untyped so that
// "capacity = 3.0" and "capacity = 2.2" both reach ValidSize.
type fileConfig struct {
	Capacity interface{} `toml:"capacity"`
	Config
}

// DecodeConfig parses a TOML document into a Config.
func DecodeConfig(data string) (Config, error) {
	var fc fileConfig
	if _, err := toml.Decode(data, &fc); err != nil {
		return Config{}, errors.Wrap(ErrBadConfig, err.Error())
	}
	return fc.finish()
}

// LoadConfig reads a TOML file into a Config.
func LoadConfig(path string) (Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, errors.Wrapf(ErrBadConfig, "%s: %v", path, err)
	}
	return fc.finish()
}

func (fc *fileConfig) finish() (Config, error) {
	cfg := fc.Config
	if fc.Capacity != nil {
		n, err := ValidSize(fc.Capacity)
		if err != nil {
			return Config{}, err
		}
		cfg.Capacity = n
	}
	return cfg.withDefaults()
}
