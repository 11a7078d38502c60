// Copyright © 2014 Lawrence E. Bakst. All rights reserved.

package dcuckoo

import (
	"sort"

	"github.com/alecthomas/binary"
	"github.com/cespare/xxhash/v2"
	"github.com/dataence/cityhash"
	"github.com/minio/highwayhash"
	"github.com/pkg/errors"
	"github.com/shivakar/metrohash"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
	"leb.io/aeshash"
)

// HashFunc hashes the serialized (salt, key) pair. The table reduces the
// result modulo its capacity.
type HashFunc func(b []byte) uint64

// DefaultHash is the name of the hash function used when none is configured.
const DefaultHash = "m3"

// highwayhash wants a 256 bit key; the salt is already part of the data.
var highwayKey = make([]byte, 32)

var hashes = map[string]HashFunc{
	"m3": murmur3.Sum64,
	"city": func(b []byte) uint64 {
		return cityhash.CityHash64(b, uint32(len(b)))
	},
	"aes": func(b []byte) uint64 {
		return aeshash.Hash(b, 0)
	},
	"xxh":  xxhash.Sum64,
	"xxh3": xxh3.Hash,
	"metro": func(b []byte) uint64 {
		h := metrohash.NewMetroHash64()
		h.Write(b)
		return h.Sum64()
	},
	"highway": func(b []byte) uint64 {
		return highwayhash.Sum64(b, highwayKey)
	},
}

// RegisterHash makes f available under name. Registering an existing name replaces it.
// Not safe to call concurrently with New.
func RegisterHash(name string, f HashFunc) {
	if f == nil {
		panic("RegisterHash: nil HashFunc")
	}
	hashes[name] = f
}

// Hashes returns the names of all registered hash functions, sorted.
func Hashes() []string {
	names := make([]string, 0, len(hashes))
	for k := range hashes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Select a hash function.
func getHash(hashName string) (HashFunc, error) {
	if hashName == "" {
		hashName = DefaultHash
	}
	f, ok := hashes[hashName]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHash, "%q", hashName)
	}
	return f, nil
}

// Simple struct and a couple of methods that satisfy the io.Writer interface.
// buf saves the data in a slice that can be accessed without a copy.
// Used to serialize the salt and the key. Grows for large keys.
type buf struct {
	b    []byte
	base [256]byte
}

func newBuf() *buf {
	b := &buf{}
	b.b = b.base[:0]
	return b
}

func (b *buf) Reset() {
	b.b = b.b[:0]
}

// capture io.Writer data in a slice
func (b *buf) Write(p []byte) (n int, err error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// keyHasher computes candidate slots. It owns the serialization buffer so
// it must not be shared between tables.
type keyHasher struct {
	hf      HashFunc
	buf     *buf
	encoder *binary.Encoder
}

func newKeyHasher(hf HashFunc) *keyHasher {
	b := newBuf()
	return &keyHasher{hf: hf, buf: b, encoder: binary.NewEncoder(b)}
}

// sum hashes key bound with salt.
func (h *keyHasher) sum(salt int64, key string) uint64 {
	h.buf.Reset()
	if err := h.encoder.Encode(salt); err != nil {
		panic("keyHasher: binary.Encode salt")
	}
	if err := h.encoder.Encode(key); err != nil {
		panic("keyHasher: binary.Encode key")
	}
	return h.hf(h.buf.b)
}

// candidates fills idx with one slot index per salt, in salt order.
func (h *keyHasher) candidates(idx []int, salts []int64, key string, n int) []int {
	idx = idx[:0]
	for _, s := range salts {
		idx = append(idx, int(h.sum(s, key)%uint64(n)))
	}
	return idx
}
