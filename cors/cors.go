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

// Package cors computes the response headers a CORS policy requires for a
// given request, without performing any I/O itself. It is a pure
// header-building state machine: callers own the request/response objects
// and are responsible for writing the headers this package returns.
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// Policy holds a CORS configuration compiled once at startup.
type Policy struct {
	allowedOrigins    []string
	allowedMethods    string // pre-joined
	allowedHeaders    string // pre-joined
	exposedHeaders    string // pre-joined, empty if none
	allowCredentials  bool
	maxAge            string // pre-formatted
	allowAllOrigins   bool
	allowOriginFunc   func(origin string) bool
}

// Option configures a Policy.
type Option func(*config)

type config struct {
	allowedOrigins    []string
	allowedMethods    []string
	allowedHeaders    []string
	exposedHeaders    []string
	allowCredentials  bool
	maxAge            int
	allowAllOrigins   bool
	allowOriginFunc   func(origin string) bool
}

func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins sets the exact origins that are allowed.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *config) { c.allowedOrigins = origins }
}

// WithAllowAllOrigins allows any origin (sets Access-Control-Allow-Origin: *
// unless credentials are enabled, in which case the request origin is
// reflected instead, per the Fetch spec's wildcard+credentials prohibition).
func WithAllowAllOrigins(allow bool) Option {
	return func(c *config) { c.allowAllOrigins = allow }
}

// WithAllowOriginFunc installs a custom origin predicate, checked when
// neither WithAllowedOrigins nor WithAllowAllOrigins decides the request.
func WithAllowOriginFunc(f func(origin string) bool) Option {
	return func(c *config) { c.allowOriginFunc = f }
}

// WithAllowedMethods overrides the methods advertised on preflight.
func WithAllowedMethods(methods ...string) Option {
	return func(c *config) { c.allowedMethods = methods }
}

// WithAllowedHeaders overrides the headers advertised on preflight.
func WithAllowedHeaders(headers ...string) Option {
	return func(c *config) { c.allowedHeaders = headers }
}

// WithExposedHeaders sets Access-Control-Expose-Headers for actual requests.
func WithExposedHeaders(headers ...string) Option {
	return func(c *config) { c.exposedHeaders = headers }
}

// WithAllowCredentials sets Access-Control-Allow-Credentials: true.
func WithAllowCredentials(allow bool) Option {
	return func(c *config) { c.allowCredentials = allow }
}

// WithMaxAge sets the preflight cache duration in seconds.
func WithMaxAge(seconds int) Option {
	return func(c *config) { c.maxAge = seconds }
}

// New compiles a Policy from the given options.
func New(opts ...Option) *Policy {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Policy{
		allowedOrigins:   cfg.allowedOrigins,
		allowedMethods:   strings.Join(cfg.allowedMethods, ", "),
		allowedHeaders:   strings.Join(cfg.allowedHeaders, ", "),
		allowCredentials: cfg.allowCredentials,
		maxAge:           strconv.Itoa(cfg.maxAge),
		allowAllOrigins:  cfg.allowAllOrigins,
		allowOriginFunc:  cfg.allowOriginFunc,
	}
	if len(cfg.exposedHeaders) > 0 {
		p.exposedHeaders = strings.Join(cfg.exposedHeaders, ", ")
	}

	return p
}

// Decision is the set of headers a policy evaluation produced, plus whether
// the request should be short-circuited with a 204 (a preflight response).
type Decision struct {
	Headers        http.Header
	Preflight      bool
	OriginAllowed  bool
}

// Evaluate computes the CORS headers for one request. origin is the value
// of the Origin request header (empty means this isn't a CORS request at
// all, and Evaluate returns a zero Decision). method is the request method;
// when it is OPTIONS the result is treated as a preflight.
func (p *Policy) Evaluate(origin, method string) Decision {
	if origin == "" {
		return Decision{}
	}

	allowedOrigin := ""
	switch {
	case p.allowAllOrigins:
		allowedOrigin = "*"
	case slices.Contains(p.allowedOrigins, origin):
		allowedOrigin = origin
	case p.allowOriginFunc != nil:
		if p.allowOriginFunc(origin) {
			allowedOrigin = origin
		}
	}

	if allowedOrigin == "" {
		return Decision{}
	}

	h := make(http.Header, 4)

	if p.allowCredentials && allowedOrigin == "*" {
		// Cannot combine a wildcard origin with credentials; reflect the
		// concrete origin instead.
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
	} else {
		h.Set("Access-Control-Allow-Origin", allowedOrigin)
		if p.allowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	if p.exposedHeaders != "" {
		h.Set("Access-Control-Expose-Headers", p.exposedHeaders)
	}

	d := Decision{Headers: h, OriginAllowed: true}

	if method == http.MethodOptions {
		h.Set("Access-Control-Allow-Methods", p.allowedMethods)
		h.Set("Access-Control-Allow-Headers", p.allowedHeaders)
		h.Set("Access-Control-Max-Age", p.maxAge)
		d.Preflight = true
	}

	return d
}
