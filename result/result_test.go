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

package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOkAndErrOf(t *testing.T) {
	t.Parallel()

	ok := Ok(42)
	assert.True(t, ok.IsOk())
	assert.False(t, ok.IsErr())

	sentinel := errors.New("boom")
	failed := ErrOf[int](sentinel)
	assert.False(t, failed.IsOk())
	assert.True(t, failed.IsErr())
	assert.Equal(t, 0, failed.Value)
	assert.ErrorIs(t, failed.Err, sentinel)
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	v, err := Ok("hello").Unwrap()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestMust(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", Ok("hello").Must())
	assert.Panics(t, func() { ErrOf[string](errors.New("x")).Must() })
}

func TestUnwrapOr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, Ok(5).UnwrapOr(9))
	assert.Equal(t, 9, ErrOf[int](errors.New("x")).UnwrapOr(9))
}

func TestMap(t *testing.T) {
	t.Parallel()

	doubled := Map(Ok(21), func(v int) int { return v * 2 })
	assert.Equal(t, 42, doubled.Must())

	sentinel := errors.New("boom")
	failed := Map(ErrOf[int](sentinel), func(v int) int { return v * 2 })
	assert.ErrorIs(t, failed.Err, sentinel)
}
