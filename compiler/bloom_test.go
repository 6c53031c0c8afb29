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

package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBloomFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		size         uint64
		numHashFuncs int
	}{
		{"standard size", 1000, 3},
		{"small size", 10, 2},
		{"large size", 100000, 5},
		{"single hash function", 100, 1},
		{"zero hash functions clamps to one", 100, 0},
		{"zero size clamps to one", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bf := NewBloomFilter(tt.size, tt.numHashFuncs)
			require.NotNil(t, bf)
			assert.NotEmpty(t, bf.bits)
			assert.NotEmpty(t, bf.seeds)
		})
	}
}

func TestBloomFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(1000, 3)

	bf.Add([]byte("/users/:id"))
	bf.Add([]byte("/posts"))

	assert.True(t, bf.Test([]byte("/users/:id")), "added element must test present")
	assert.True(t, bf.Test([]byte("/posts")), "added element must test present")
	assert.False(t, bf.Test([]byte("/never/added")), "unrelated element should test absent")
}

func TestBloomFilter_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	bf := NewBloomFilter(5000, 4)

	paths := make([]string, 0, 200)
	for i := range 200 {
		p := "/route/" + string(rune('a'+i%26)) + "/" + string(rune('0'+i%10))
		paths = append(paths, p)
		bf.Add([]byte(p))
	}

	for _, p := range paths {
		assert.True(t, bf.Test([]byte(p)), "bloom filter must never produce a false negative: %s", p)
	}
}
