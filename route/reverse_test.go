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

package route

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReversePattern(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/users/:id/posts/:postId")
	require.Len(t, p.Segments, 4)
	assert.Equal(t, Segment{Static: true, Value: "users"}, p.Segments[0])
	assert.Equal(t, Segment{Static: false, Value: "id"}, p.Segments[1])
	assert.Equal(t, Segment{Static: true, Value: "posts"}, p.Segments[2])
	assert.Equal(t, Segment{Static: false, Value: "postId"}, p.Segments[3])
}

func TestParseReversePattern_ConstrainedAndOptionalAndWildcard(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/users/:id(\\d+)?/files/**path")
	require.Len(t, p.Segments, 4)
	assert.Equal(t, Segment{Static: false, Value: "id"}, p.Segments[1])
	assert.Equal(t, Segment{Static: false, Value: "path"}, p.Segments[3])
}

func TestReversePattern_BuildURL(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/users/:id/posts/:postId")

	url_, err := p.BuildURL(map[string]string{"id": "42", "postId": "7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/users/42/posts/7", url_)
}

func TestReversePattern_BuildURL_MissingParam(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/users/:id")
	_, err := p.BuildURL(map[string]string{}, nil)
	assert.ErrorContains(t, err, "id")
}

func TestReversePattern_BuildURL_WithQuery(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/search")
	q := url.Values{"q": []string{"go"}}
	got, err := p.BuildURL(map[string]string{}, q)
	require.NoError(t, err)
	assert.Equal(t, "/search?q=go", got)
}

func TestReversePattern_BuildURL_EscapesPathSegment(t *testing.T) {
	t.Parallel()

	p := ParseReversePattern("/files/:name")
	got, err := p.BuildURL(map[string]string{"name": "a b/c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/files/a%20b%2Fc", got)
}
