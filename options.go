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

import "fmt"

// MaxStackDepth bounds the matcher's explicit frame stack. A pattern chain
// deeper than this is an implementation fault, not a registration error,
// since depth is driven by segment count rather than anything a caller
// configures directly.
const MaxStackDepth = 64

// MaxParams bounds the number of param/wildcard bindings a single pattern
// may declare, and sizes the matcher's preallocated paramNames/paramValues
// arrays.
const MaxParams = 32

// OptionalParamBehavior controls how a missing optional parameter is
// reported to the caller once a "without" path variant has matched.
type OptionalParamBehavior uint8

const (
	OptionalSetUndefined OptionalParamBehavior = iota
	OptionalOmit
	OptionalSetEmptyString
)

// EncodedSlashBehavior controls how a literal %2F inside a captured
// segment is treated.
type EncodedSlashBehavior uint8

const (
	EncodedSlashDecode EncodedSlashBehavior = iota
	EncodedSlashPreserve
	EncodedSlashReject
)

// RegexSafetyMode controls whether an unsafe regex source fails
// registration or is merely logged.
type RegexSafetyMode uint8

const (
	RegexSafetyError RegexSafetyMode = iota
	RegexSafetyWarn
)

// AnchorPolicy controls the response to a param regex that lacks ^/$
// anchors.
type AnchorPolicy uint8

const (
	AnchorSilent AnchorPolicy = iota
	AnchorWarn
	AnchorError
)

// RegexSafetyConfig holds the knobs for the regex safety validator and the
// optional execution-time ceiling applied by the pattern tester.
type RegexSafetyConfig struct {
	MaxLength                int
	ForbidBacktrackingTokens bool
	ForbidBackreferences     bool
	Mode                     RegexSafetyMode
	AnchorPolicy             AnchorPolicy

	// MaxExecutionMs, when > 0, wraps every compiled-regex tester (never
	// the hand-coded fast-path testers) with a monotonic timing check.
	MaxExecutionMs float64

	// OnTimeout, if set, is consulted when a tester exceeds
	// MaxExecutionMs; it returns the match outcome to use instead of
	// raising MatchError::RegexTimeout.
	OnTimeout func(pattern string, elapsedMs float64) bool
}

func defaultRegexSafetyConfig() RegexSafetyConfig {
	return RegexSafetyConfig{
		MaxLength:                200,
		ForbidBacktrackingTokens: true,
		ForbidBackreferences:     true,
		Mode:                     RegexSafetyError,
		AnchorPolicy:             AnchorSilent,
	}
}

// Config holds every resolved option. It is copied into the Router at New
// and never mutated afterward.
type Config struct {
	IgnoreTrailingSlash  bool
	CollapseSlashes      bool
	collapseSlashesSet   bool
	CaseSensitive        bool
	DecodeParams         bool
	EncodedSlashBehavior EncodedSlashBehavior
	BlockTraversal       bool
	EnableCache          bool
	CacheSize            int
	MaxSegmentLength     int
	FailFastOnBadEncoding bool
	StrictParamNames     bool
	OptionalParamBehavior OptionalParamBehavior
	RegexSafety          RegexSafetyConfig
	Diagnostics          DiagnosticHandler
}

func defaultConfig() Config {
	return Config{
		IgnoreTrailingSlash:   true,
		CaseSensitive:         true,
		DecodeParams:          true,
		EncodedSlashBehavior:  EncodedSlashDecode,
		BlockTraversal:        true,
		EnableCache:           false,
		CacheSize:             1000,
		MaxSegmentLength:      256,
		FailFastOnBadEncoding: false,
		StrictParamNames:      false,
		OptionalParamBehavior: OptionalSetUndefined,
		RegexSafety:           defaultRegexSafetyConfig(),
	}
}

func (c *Config) resolve() {
	if !c.collapseSlashesSet {
		c.CollapseSlashes = c.IgnoreTrailingSlash
	}
}

func (c *Config) validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("triex: cacheSize must be >= 0, got %d", c.CacheSize)
	}
	if c.MaxSegmentLength <= 0 {
		return fmt.Errorf("triex: maxSegmentLength must be > 0, got %d", c.MaxSegmentLength)
	}
	if c.RegexSafety.MaxLength <= 0 {
		return fmt.Errorf("triex: regexSafety.maxLength must be > 0, got %d", c.RegexSafety.MaxLength)
	}
	if c.RegexSafety.MaxExecutionMs < 0 {
		return fmt.Errorf("triex: regexSafety.maxExecutionMs must be >= 0, got %f", c.RegexSafety.MaxExecutionMs)
	}
	return nil
}

func (c *Config) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if c.Diagnostics == nil {
		return
	}
	c.Diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
}

// Option configures a Router at construction time.
type Option func(*Config)

func WithIgnoreTrailingSlash(v bool) Option {
	return func(c *Config) { c.IgnoreTrailingSlash = v }
}

func WithCollapseSlashes(v bool) Option {
	return func(c *Config) { c.CollapseSlashes = v; c.collapseSlashesSet = true }
}

func WithCaseSensitive(v bool) Option {
	return func(c *Config) { c.CaseSensitive = v }
}

func WithDecodeParams(v bool) Option {
	return func(c *Config) { c.DecodeParams = v }
}

func WithEncodedSlashBehavior(v EncodedSlashBehavior) Option {
	return func(c *Config) { c.EncodedSlashBehavior = v }
}

func WithBlockTraversal(v bool) Option {
	return func(c *Config) { c.BlockTraversal = v }
}

func WithCache(enabled bool, size int) Option {
	return func(c *Config) {
		c.EnableCache = enabled
		if size > 0 {
			c.CacheSize = size
		}
	}
}

func WithMaxSegmentLength(n int) Option {
	return func(c *Config) { c.MaxSegmentLength = n }
}

func WithFailFastOnBadEncoding(v bool) Option {
	return func(c *Config) { c.FailFastOnBadEncoding = v }
}

func WithStrictParamNames(v bool) Option {
	return func(c *Config) { c.StrictParamNames = v }
}

func WithOptionalParamBehavior(v OptionalParamBehavior) Option {
	return func(c *Config) { c.OptionalParamBehavior = v }
}

func WithRegexSafety(v RegexSafetyConfig) Option {
	return func(c *Config) { c.RegexSafety = v }
}

func WithDiagnostics(h DiagnosticHandler) Option {
	return func(c *Config) { c.Diagnostics = h }
}
