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

package triex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPath_Basic(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/users/42", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "42"}, pp.segments)
	assert.Equal(t, "/users/42", pp.normalized)
}

func TestProcessPath_StripsQueryString(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/search?q=go+routers", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"search"}, pp.segments)
}

func TestProcessPath_TrailingSlashIgnoredByDefault(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/a/", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, pp.segments)
}

func TestProcessPath_CollapsesRepeatedSlashes(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/a//b///c", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, pp.segments)
}

func TestProcessPath_DotSegmentsResolved(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/a/b/../c/./d", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, pp.segments)
}

func TestProcessPath_DotSegmentsEncodedForm(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/a/%2e%2e/b", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, pp.segments)
}

func TestProcessPath_DotSegmentUnderflowIgnored(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.resolve()

	pp, err := processPath("/../../etc", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"etc"}, pp.segments)
}

func TestProcessPath_CaseFolding(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.CaseSensitive = false
	cfg.resolve()

	pp, err := processPath("/Users/ADMIN", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"users", "admin"}, pp.segments)
}

func TestProcessPath_SegmentTooLong(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.MaxSegmentLength = 4
	cfg.resolve()

	_, err := processPath("/abcdefgh", &cfg)
	require.Error(t, err)
	var merr *MatchError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, MatchErrSegmentTooLong, merr.Kind)
}

func TestProcessPath_FailFastOnBadEncoding(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.FailFastOnBadEncoding = true
	cfg.resolve()

	_, err := processPath("/bad%2", &cfg)
	require.Error(t, err)
	var merr *MatchError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, MatchErrBadEncoding, merr.Kind)
}

func TestPercentDecode_Decode(t *testing.T) {
	t.Parallel()

	out, ok := percentDecode("hello%20world", EncodedSlashDecode)
	require.True(t, ok)
	assert.Equal(t, "hello world", out)

	out, ok = percentDecode("a%2Fb", EncodedSlashDecode)
	require.True(t, ok)
	assert.Equal(t, "a/b", out)
}

func TestPercentDecode_Preserve(t *testing.T) {
	t.Parallel()

	out, ok := percentDecode("a%2Fb", EncodedSlashPreserve)
	require.True(t, ok)
	assert.Equal(t, "a%2Fb", out)
}

func TestPercentDecode_Reject(t *testing.T) {
	t.Parallel()

	_, ok := percentDecode("a%2Fb", EncodedSlashReject)
	assert.False(t, ok)

	_, ok = percentDecode("a%2fb", EncodedSlashReject)
	assert.False(t, ok)
}

func TestPercentDecode_MalformedEscape(t *testing.T) {
	t.Parallel()

	_, ok := percentDecode("bad%2", EncodedSlashDecode)
	assert.False(t, ok)

	_, ok = percentDecode("bad%zz", EncodedSlashDecode)
	assert.False(t, ok)
}

func TestProcessPath_CollapseSlashesDisabledKeepsTrailingSlashTrim(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.IgnoreTrailingSlash = true
	cfg.CollapseSlashes = false
	cfg.collapseSlashesSet = true
	cfg.resolve()

	pp, err := processPath("/a/", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, pp.segments)
}
