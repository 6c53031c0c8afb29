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
	"errors"
	"fmt"
)

// ErrNotBuilt is returned by Match when no route has been registered,
// whether or not Build was called.
var ErrNotBuilt = errors.New("triex: router has no routes")

// RegistrationErrorKind identifies the reason an Add/Build call failed.
type RegistrationErrorKind uint8

const (
	RegErrDuplicateRoute RegistrationErrorKind = iota
	RegErrUnsafeRegex
	RegErrReservedParamName
	RegErrTooManyParams
	RegErrInvalidPattern
)

// RegistrationError reports a failure to register a route.
type RegistrationError struct {
	Kind    RegistrationErrorKind
	Method  string
	Pattern string
	Reason  string
}

func (e *RegistrationError) Error() string {
	switch e.Kind {
	case RegErrDuplicateRoute:
		return fmt.Sprintf("triex: duplicate route %s %s", e.Method, e.Pattern)
	case RegErrUnsafeRegex:
		return fmt.Sprintf("triex: unsafe regex in %s %s: %s", e.Method, e.Pattern, e.Reason)
	case RegErrReservedParamName:
		return fmt.Sprintf("triex: reserved parameter name %q in %s %s", e.Reason, e.Method, e.Pattern)
	case RegErrTooManyParams:
		return fmt.Sprintf("triex: %s %s exceeds the maximum of %d parameters", e.Method, e.Pattern, MaxParams)
	default:
		return fmt.Sprintf("triex: invalid pattern %s %s: %s", e.Method, e.Pattern, e.Reason)
	}
}

// MatchErrorKind identifies the reason a Match call failed outright, as
// opposed to simply finding no route.
type MatchErrorKind uint8

const (
	MatchErrBadEncoding MatchErrorKind = iota
	MatchErrEncodedSlashRejected
	MatchErrRegexTimeout
	MatchErrSegmentTooLong
)

// MatchError reports a failed match distinct from "no route found": a
// malformed request the router refused to route, rather than a 404.
type MatchError struct {
	Kind       MatchErrorKind
	Pattern    string  // set for RegexTimeout
	DurationMs float64 // set for RegexTimeout
	Segment    string  // set for BadEncoding, EncodedSlashRejected, SegmentTooLong
}

func (e *MatchError) Error() string {
	switch e.Kind {
	case MatchErrBadEncoding:
		return fmt.Sprintf("triex: malformed percent-encoding in segment %q", e.Segment)
	case MatchErrEncodedSlashRejected:
		return fmt.Sprintf("triex: encoded slash rejected in segment %q", e.Segment)
	case MatchErrRegexTimeout:
		return fmt.Sprintf("triex: regex %q exceeded execution budget after %.3fms", e.Pattern, e.DurationMs)
	case MatchErrSegmentTooLong:
		return fmt.Sprintf("triex: segment %q exceeds the configured maximum length", e.Segment)
	default:
		return "triex: match error"
	}
}
