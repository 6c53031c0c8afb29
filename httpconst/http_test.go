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

package httpconst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()

	cases := map[string]Method{
		"GET":     MethodGet,
		"POST":    MethodPost,
		"PUT":     MethodPut,
		"PATCH":   MethodPatch,
		"DELETE":  MethodDelete,
		"OPTIONS": MethodOptions,
		"HEAD":    MethodHead,
		"*":       MethodAny,
	}

	for name, want := range cases {
		got, ok := ParseMethod(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got)
	}

	_, ok := ParseMethod("TRACE")
	assert.False(t, ok)
}

func TestMethodString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GET", MethodGet.String())
	assert.Equal(t, "HEAD", MethodHead.String())
	assert.Equal(t, "*", MethodAny.String())
}

func TestAllMethods_OrderMatchesCodeTable(t *testing.T) {
	t.Parallel()

	all := AllMethods()
	require.Len(t, all, 7)
	for i, m := range all {
		assert.Equal(t, Method(i), m)
	}
}
