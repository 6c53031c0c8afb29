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
	"regexp"
	"time"
)

// patternTester is a predicate over a captured segment associated with one
// regex source. Well-known sources bypass the regex engine entirely in
// favor of a hand-coded character-class scan.
type patternTester struct {
	source         string
	test           func(string) bool
	maxExecutionMs float64
	onTimeout      func(pattern string, elapsedMs float64) bool
}

// compilePatternTester builds a tester for source. Recognized sources get
// a hand-coded byte scan; anything else falls back to a compiled, anchored
// regexp, optionally wrapped with an execution-time ceiling.
func compilePatternTester(source string, cfg RegexSafetyConfig) (*patternTester, error) {
	switch source {
	case `\d+`:
		return &patternTester{source: source, test: isAllDigits}, nil
	case `[A-Za-z]+`:
		return &patternTester{source: source, test: isAllAlpha}, nil
	case `[A-Za-z0-9_\-]+`:
		return &patternTester{source: source, test: isAllWordDash}, nil
	case `[^/]+`:
		return &patternTester{source: source, test: isNoSlash}, nil
	}

	anchored := source
	if !isAnchored(anchored) {
		if anchored == "" || anchored[0] != '^' {
			anchored = "^" + anchored
		}
		if anchored == "" || anchored[len(anchored)-1] != '$' {
			anchored = anchored + "$"
		}
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, err
	}

	t := &patternTester{source: source, test: re.MatchString}
	if cfg.MaxExecutionMs > 0 {
		t.maxExecutionMs = cfg.MaxExecutionMs
		t.onTimeout = cfg.OnTimeout
	}
	return t, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAllAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

func isAllWordDash(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') && !(c >= '0' && c <= '9') && c != '_' && c != '-' {
			return false
		}
	}
	return true
}

func isNoSlash(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return false
		}
	}
	return true
}

// Test runs the tester against s. timedOut is true only when the
// execution-time ceiling was exceeded and no OnTimeout callback resolved
// it; the caller surfaces that as MatchError::RegexTimeout.
func (t *patternTester) Test(s string) (matched bool, timedOut bool, elapsedMs float64) {
	if t.maxExecutionMs <= 0 {
		return t.test(s), false, 0
	}

	start := time.Now()
	matched = t.test(s)
	elapsedMs = float64(time.Since(start)) / float64(time.Millisecond)

	if elapsedMs <= t.maxExecutionMs {
		return matched, false, elapsedMs
	}
	if t.onTimeout != nil {
		return t.onTimeout(t.source, elapsedMs), false, elapsedMs
	}
	return matched, true, elapsedMs
}
