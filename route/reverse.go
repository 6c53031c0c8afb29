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
	"fmt"
	"net/url"
	"strings"
)

// Segment is one slash-delimited piece of a route pattern, as seen by
// reverse routing: either a static literal or a named parameter.
type Segment struct {
	Static bool
	Value  string // literal text, or parameter name without ':'
}

// ReversePattern is a route pattern pre-split into segments so that
// building a URL from it never re-parses the pattern string.
type ReversePattern struct {
	Segments []Segment
}

// ParseReversePattern splits a route pattern into static/param segments.
// Wildcard segments (*, **name) are kept as a single trailing param segment
// whose Value is the wildcard's capture name.
func ParseReversePattern(path string) *ReversePattern {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return &ReversePattern{}
	}

	parts := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}
		switch {
		case strings.HasPrefix(part, "**"):
			segments = append(segments, Segment{Static: false, Value: part[2:]})
		case strings.HasPrefix(part, "*"):
			segments = append(segments, Segment{Static: false, Value: part[1:]})
		case strings.HasPrefix(part, ":"):
			name := strings.TrimSuffix(part[1:], "?")
			if idx := strings.IndexByte(name, '('); idx >= 0 {
				name = name[:idx]
			}
			segments = append(segments, Segment{Static: false, Value: name})
		default:
			segments = append(segments, Segment{Static: true, Value: part})
		}
	}

	return &ReversePattern{Segments: segments}
}

// BuildURL renders a concrete path from the pattern, substituting params
// for each named segment and appending query if non-empty. Returns an
// error naming the first missing required parameter.
func (p *ReversePattern) BuildURL(params map[string]string, query url.Values) (string, error) {
	var buf strings.Builder
	buf.WriteByte('/')

	for i, seg := range p.Segments {
		if i > 0 {
			buf.WriteByte('/')
		}
		if seg.Static {
			buf.WriteString(seg.Value)
			continue
		}
		val, ok := params[seg.Value]
		if !ok {
			return "", fmt.Errorf("missing required parameter: %s", seg.Value)
		}
		buf.WriteString(url.PathEscape(val))
	}

	if len(query) > 0 {
		buf.WriteByte('?')
		buf.WriteString(query.Encode())
	}

	return buf.String(), nil
}
