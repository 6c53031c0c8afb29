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

import "strings"

// processedPath is the output of the path-processing pipeline: a
// normalized path string plus its segments and a per-segment decode hint
// bitmap (true when the segment contains a '%' that may need percent
// decoding later, at param/wildcard bind time).
type processedPath struct {
	normalized  string
	segments    []string
	decodeHints []bool
}

// processPath runs the configured pipeline over raw and returns the
// normalized result, or a *MatchError for a configuration-triggered
// failure (oversized segment, malformed encoding under failFast).
//
// Steps, in order: stripQuery, removeLeadingSlash, splitPath,
// resolveDotSegments (if BlockTraversal), collapseSlashes or a single
// trailing-slash trim, toLowerCase (if !CaseSensitive), validateSegments.
func processPath(raw string, cfg *Config) (processedPath, error) {
	s := stripQuery(raw)
	s = removeLeadingSlash(s)
	segments := splitPath(s)

	if cfg.BlockTraversal {
		segments = resolveDotSegments(segments)
	}

	if cfg.CollapseSlashes {
		segments = collapseEmptySegments(segments)
	} else if cfg.IgnoreTrailingSlash {
		segments = trimTrailingEmptySegment(segments)
	}

	if !cfg.CaseSensitive {
		for i, seg := range segments {
			segments[i] = strings.ToLower(seg)
		}
	}

	decodeHints, err := validateSegments(segments, cfg)
	if err != nil {
		return processedPath{}, err
	}

	return processedPath{
		normalized:  "/" + strings.Join(segments, "/"),
		segments:    segments,
		decodeHints: decodeHints,
	}, nil
}

func stripQuery(s string) string {
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func removeLeadingSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// dotForm replaces %2e/%2E runs with '.' so "..", "%2e.", ".%2E" and
// "%2e%2e" are all recognized as the same dot-segment.
func dotForm(seg string) string {
	if !strings.Contains(seg, "%") {
		return strings.ToLower(seg)
	}
	lower := strings.ToLower(seg)
	return strings.ReplaceAll(lower, "%2e", ".")
}

func resolveDotSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch dotForm(seg) {
		case ".":
			// current directory; drop.
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			// underflow past the root is silently ignored.
		default:
			out = append(out, seg)
		}
	}
	return out
}

func collapseEmptySegments(segments []string) []string {
	out := segments[:0:0]
	for _, seg := range segments {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// trimTrailingEmptySegment drops a single trailing empty segment, the
// artifact of a single trailing slash (e.g. "a/" -> ["a", ""]).
func trimTrailingEmptySegment(segments []string) []string {
	if n := len(segments); n > 0 && segments[n-1] == "" {
		return segments[:n-1]
	}
	return segments
}

func validateSegments(segments []string, cfg *Config) ([]bool, error) {
	hints := make([]bool, len(segments))
	for i, seg := range segments {
		if len(seg) > cfg.MaxSegmentLength {
			return nil, &MatchError{Kind: MatchErrSegmentTooLong, Segment: seg}
		}
		if strings.IndexByte(seg, '%') < 0 {
			continue
		}
		hints[i] = true
		if cfg.FailFastOnBadEncoding {
			if _, ok := percentDecode(seg, EncodedSlashPreserve); !ok {
				return nil, &MatchError{Kind: MatchErrBadEncoding, Segment: seg}
			}
		}
	}
	return hints, nil
}

// percentDecode decodes a single path segment. slashPolicy controls what
// happens when a %2F/%2f escape is encountered: Decode turns it into '/',
// Preserve leaves the three-byte escape intact, Reject fails the decode
// entirely (ok=false) so the caller can surface MatchError::EncodedSlashRejected.
func percentDecode(s string, slashPolicy EncodedSlashBehavior) (string, bool) {
	if strings.IndexByte(s, '%') < 0 {
		return s, true
	}

	var buf strings.Builder
	buf.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			buf.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", false
		}
		hi, ok1 := hexDigit(s[i+1])
		lo, ok2 := hexDigit(s[i+2])
		if !ok1 || !ok2 {
			return "", false
		}
		b := hi<<4 | lo
		if b == '/' {
			switch slashPolicy {
			case EncodedSlashReject:
				return "", false
			case EncodedSlashPreserve:
				buf.WriteByte('%')
				buf.WriteByte(s[i+1])
				buf.WriteByte(s[i+2])
				i += 2
				continue
			}
		}
		buf.WriteByte(b)
		i += 2
	}
	return buf.String(), true
}

func hexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}
