// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compiler holds small data structures used by the router's
// static-path fast lookup to avoid probing a map for paths that are
// definitely not registered.
package compiler

import "hash/fnv"

// BloomFilter is a probabilistic set membership test: it can say
// "definitely not present" with certainty, or "maybe present" with a
// tunable false-positive rate. The router tests it before every probe of
// the static-route map.
//
// Implementation uses FNV-1a with seeded variants instead of independent
// hash functions: the base hash is computed once per Add/Test and each
// seed is XORed in to derive a distinct bit position.
type BloomFilter struct {
	bits  []uint64
	size  uint64
	seeds []uint64
}

// NewBloomFilter creates a filter with size bits and numHashFuncs seeded
// hash functions. The backing storage is rounded up to a whole number of
// 64-bit words, but bit positions range over [0, size) only. A size of 0
// is treated as 1, and numHashFuncs below 1 is treated as 1.
func NewBloomFilter(size uint64, numHashFuncs int) *BloomFilter {
	if size == 0 {
		size = 1
	}
	if numHashFuncs < 1 {
		numHashFuncs = 1
	}

	bf := &BloomFilter{
		bits:  make([]uint64, (size+63)/64),
		size:  size,
		seeds: make([]uint64, numHashFuncs),
	}
	for i := range numHashFuncs {
		bf.seeds[i] = uint64(i + 1)
	}

	return bf
}

func (bf *BloomFilter) hashWithSeed(baseHash, seed uint64) uint64 {
	return (baseHash ^ seed) % bf.size
}

// Add records data as present in the filter.
func (bf *BloomFilter) Add(data []byte) {
	h := fnv.New64a()
	h.Write(data)
	baseHash := h.Sum64()

	for _, seed := range bf.seeds {
		pos := bf.hashWithSeed(baseHash, seed)
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Test reports whether data might be present. false is a definite answer;
// true may be a false positive.
func (bf *BloomFilter) Test(data []byte) bool {
	h := fnv.New64a()
	h.Write(data)
	baseHash := h.Sum64()

	for _, seed := range bf.seeds {
		pos := bf.hashWithSeed(baseHash, seed)
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}

	return true
}
