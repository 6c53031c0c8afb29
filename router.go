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
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rivaas-dev/triex/compiler"
	"github.com/rivaas-dev/triex/httpconst"
	"github.com/rivaas-dev/triex/route"
)

// Match source labels, reported to handlers via MatchMeta and exercised by
// the cache-transparency and static-fast-path tests.
const (
	SourceStaticFast = "static-fast"
	SourceCache      = "cache"
	SourceDynamic    = "dynamic"
)

// Param is one captured path parameter. Present is false only for an
// optional parameter filled under OptionalSetUndefined after a "without"
// path variant matched.
type Param struct {
	Name    string
	Value   string
	Present bool
}

// Params is the ordered set of parameters bound during a match. Order
// matches node-visit order, not registration order.
type Params []Param

// Get returns the value bound to name and whether it was present.
func (p Params) Get(name string) (string, bool) {
	for _, prm := range p {
		if prm.Name == name {
			return prm.Value, prm.Present
		}
	}
	return "", false
}

// Map collapses Params into a plain map, dropping any entry marked absent.
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, prm := range p {
		if prm.Present {
			out[prm.Name] = prm.Value
		}
	}
	return out
}

// MatchMeta describes which stage produced a match.
type MatchMeta struct {
	Source  string
	Matched bool
}

// HandlerFunc is an opaque, parameterized-return route handler. The
// router stores these in a slice and invokes by index; it never inspects
// the return value.
type HandlerFunc[T any] func(Params, MatchMeta) T

// Entry is one (method, pattern, handler) registration, for AddAll.
type Entry[T any] struct {
	Method  string
	Pattern string
	Handler HandlerFunc[T]
}

// Router is the façade over the path processor, trie builder, flattener,
// matcher, and LRU cache. Registrations accumulate under Add/AddAll until
// the first Match (or an explicit Build), which compiles the immutable
// binary layout; any further Add invalidates it and forces a rebuild on
// the next Match.
type Router[T any] struct {
	mu sync.Mutex

	cfg  Config
	root *trieNode

	handlers []HandlerFunc[T]
	seen     map[string]struct{} // dedup key: method + "|" + pattern

	staticFast  map[string]map[httpconst.Method]int
	staticBloom *compiler.BloomFilter

	reverse map[string]*route.ReversePattern

	layout atomic.Pointer[layout]
	dirty  bool

	cache     *lruCache
	matchPool sync.Pool
}

// New builds a Router with the given options applied over the defaults.
func New[T any](opts ...Option) (*Router[T], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.resolve()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Router[T]{
		cfg:         cfg,
		root:        newTrieNode(kindStatic),
		seen:        make(map[string]struct{}),
		staticFast:  make(map[string]map[httpconst.Method]int),
		staticBloom: compiler.NewBloomFilter(4096, 4),
		reverse:     make(map[string]*route.ReversePattern),
	}
	r.matchPool.New = func() any { return &matchState{} }
	if cfg.EnableCache {
		r.cache = newLRUCache(cfg.CacheSize)
	}
	return r, nil
}

// MustNew is New, panicking on a configuration error.
func MustNew[T any](opts ...Option) *Router[T] {
	r, err := New[T](opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Add registers a single handler for method (a concrete verb or "*" for
// every method) and pattern.
func (r *Router[T]) Add(method, pattern string, handler HandlerFunc[T]) error {
	return r.addOne(method, pattern, handler)
}

// AddAll registers every entry in order, stopping at the first failure.
func (r *Router[T]) AddAll(entries []Entry[T]) error {
	for _, e := range entries {
		if err := r.addOne(e.Method, e.Pattern, e.Handler); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router[T]) addOne(method, pattern string, handler HandlerFunc[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	methods, err := resolveMethods(method)
	if err != nil {
		return err
	}

	specs, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	if n := countBindings(specs); n > MaxParams {
		return &RegistrationError{Kind: RegErrTooManyParams, Method: method, Pattern: pattern}
	}

	dedupKey := method + "|" + pattern
	if _, exists := r.seen[dedupKey]; exists {
		return &RegistrationError{Kind: RegErrDuplicateRoute, Method: method, Pattern: pattern}
	}

	b := &builder{cfg: &r.cfg, curMethod: method, curPattern: pattern}
	variants := expandOptionals(specs)

	handlerIdx := len(r.handlers)

	for _, m := range methods {
		for _, v := range variants {
			node, err := b.insert(r.root, v.specs)
			if err != nil {
				return err
			}
			if _, exists := node.methods[m]; exists {
				return &RegistrationError{Kind: RegErrDuplicateRoute, Method: method, Pattern: pattern}
			}
			node.methods[m] = terminal{handlerIdx: handlerIdx, missingOptionals: v.missing}
		}
	}

	r.seen[dedupKey] = struct{}{}
	r.handlers = append(r.handlers, handler)
	if _, exists := r.reverse[pattern]; !exists {
		r.reverse[pattern] = route.ParseReversePattern(pattern)
	}

	if allStatic(specs) && len(variants) == 1 {
		r.registerStaticFast(pattern, methods, handlerIdx)
	}

	r.dirty = true
	r.cfg.emit(DiagRouteRegistered, "route registered", map[string]any{"method": method, "pattern": pattern})
	return nil
}

// AddConstrained registers a route the way Add does, but expands each bare
// ":name" token named in constraints into the ":name(regex)" form its typed
// constraint lowers to, per route.ParamConstraint.ToRegexConstraint. A name
// with an explicit inline "(...)" already in pattern is left untouched.
func (r *Router[T]) AddConstrained(method, pattern string, constraints map[string]*route.ParamConstraint, handler HandlerFunc[T]) error {
	expanded, err := applyConstraints(pattern, constraints)
	if err != nil {
		return &RegistrationError{Kind: RegErrInvalidPattern, Method: method, Pattern: pattern, Reason: err.Error()}
	}
	return r.addOne(method, expanded, handler)
}

func applyConstraints(pattern string, constraints map[string]*route.ParamConstraint) (string, error) {
	if len(constraints) == 0 {
		return pattern, nil
	}
	parts := strings.Split(pattern, "/")
	for i, part := range parts {
		if part == "" || part[0] != ':' {
			continue
		}
		body := part[1:]
		optional := strings.HasSuffix(body, "?")
		body = strings.TrimSuffix(body, "?")
		if strings.ContainsRune(body, '(') {
			continue // explicit inline constraint wins
		}
		pc, ok := constraints[body]
		if !ok {
			continue
		}
		rc := pc.ToRegexConstraint(body)
		if rc == nil {
			return "", &RegistrationError{Kind: RegErrInvalidPattern, Reason: "unresolvable constraint for parameter " + body}
		}
		source := strings.TrimSuffix(strings.TrimPrefix(rc.Pattern.String(), "^"), "$")
		part = ":" + body + "(" + source + ")"
		if optional {
			part += "?"
		}
		parts[i] = part
	}
	return strings.Join(parts, "/"), nil
}

// URLFor builds a concrete URL for a previously registered pattern,
// substituting params for its named/wildcard segments. pattern must match
// a pattern string passed to Add/AddAll/AddConstrained exactly.
func (r *Router[T]) URLFor(pattern string, params map[string]string, query url.Values) (string, error) {
	r.mu.Lock()
	rp, ok := r.reverse[pattern]
	r.mu.Unlock()
	if !ok {
		rp = route.ParseReversePattern(pattern)
	}
	return rp.BuildURL(params, query)
}

func resolveMethods(method string) ([]httpconst.Method, error) {
	if method == "*" {
		return httpconst.AllMethods(), nil
	}
	m, ok := httpconst.ParseMethod(method)
	if !ok {
		return nil, &RegistrationError{Kind: RegErrInvalidPattern, Method: method, Reason: "unrecognized method"}
	}
	return []httpconst.Method{m}, nil
}

func allStatic(specs []segmentSpec) bool {
	for _, s := range specs {
		if s.kind != segStatic {
			return false
		}
	}
	return true
}

func (r *Router[T]) registerStaticFast(pattern string, methods []httpconst.Method, handlerIdx int) {
	pp, err := processPath(pattern, &r.cfg)
	if err != nil {
		return
	}
	key := pp.normalized
	m, ok := r.staticFast[key]
	if !ok {
		m = make(map[httpconst.Method]int)
		r.staticFast[key] = m
	}
	for _, method := range methods {
		m[method] = handlerIdx
	}
	r.staticBloom.Add([]byte(key))
}

// Build compiles the current trie into an immutable binary layout. Match
// calls it automatically when needed; calling it explicitly lets a caller
// pay the compilation cost up front.
func (r *Router[T]) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buildLocked()
}

func (r *Router[T]) buildLocked() error {
	lay, err := flatten(r.root, &r.cfg)
	if err != nil {
		return err
	}
	r.layout.Store(lay)
	r.dirty = false
	return nil
}

func (r *Router[T]) staticLookup(key string, method httpconst.Method) (int, bool) {
	m, ok := r.staticFast[key]
	if !ok {
		return 0, false
	}
	idx, ok := m[method]
	return idx, ok
}

// Match runs the nine-step façade algorithm: a quick trailing-slash/case
// fold of the raw path, the LRU cache, the static-route map (behind a
// bloom prefilter), full path processing, a second static probe on the normalized
// path, the trie matcher, optional-param defaults, a cache write, and
// finally the handler invocation. It returns the zero value of T with
// Matched=false for "no route", and a non-nil error for a malformed
// request the router refused to route (distinct from a 404). Match
// returns ErrNotBuilt if no route has ever been registered.
func (r *Router[T]) Match(method, path string) (T, MatchMeta, error) {
	var zero T

	r.mu.Lock()
	if len(r.handlers) == 0 {
		r.mu.Unlock()
		return zero, MatchMeta{}, ErrNotBuilt
	}
	if r.dirty || r.layout.Load() == nil {
		if err := r.buildLocked(); err != nil {
			r.mu.Unlock()
			return zero, MatchMeta{}, err
		}
	}
	r.mu.Unlock()

	mcode, ok := httpconst.ParseMethod(method)
	if !ok || mcode == httpconst.MethodAny {
		return zero, MatchMeta{}, nil
	}

	fastKey := path
	if r.cfg.IgnoreTrailingSlash && len(fastKey) > 1 && strings.HasSuffix(fastKey, "/") {
		fastKey = fastKey[:len(fastKey)-1]
	}
	if !r.cfg.CaseSensitive {
		fastKey = strings.ToLower(fastKey)
	}

	// The cache is consulted ahead of the primary static-fast probe: once
	// any path (static or dynamic) has been resolved once under this exact
	// raw (method, path), a byte-identical repeat is reported as
	// source=cache rather than re-walking the static-fast path every time.
	cacheKey := method + ":" + path
	if r.cache != nil {
		if v, ok := r.cache.get(cacheKey); ok {
			if v.negative {
				return zero, MatchMeta{Source: SourceCache, Matched: false}, nil
			}
			return r.invoke(v.handlerIdx, v.params, SourceCache), MatchMeta{Source: SourceCache, Matched: true}, nil
		}
	}

	if r.staticBloom.Test([]byte(fastKey)) {
		if handlerIdx, ok := r.staticLookup(fastKey, mcode); ok {
			if r.cache != nil {
				r.cache.set(cacheKey, &cacheValue{handlerIdx: handlerIdx})
			}
			return r.invoke(handlerIdx, nil, SourceStaticFast), MatchMeta{Source: SourceStaticFast, Matched: true}, nil
		}
	}

	pp, err := processPath(path, &r.cfg)
	if err != nil {
		return zero, MatchMeta{}, err
	}

	if pp.normalized != fastKey && r.staticBloom.Test([]byte(pp.normalized)) {
		if handlerIdx, ok := r.staticLookup(pp.normalized, mcode); ok {
			if r.cache != nil {
				r.cache.set(cacheKey, &cacheValue{handlerIdx: handlerIdx})
			}
			return r.invoke(handlerIdx, nil, SourceStaticFast), MatchMeta{Source: SourceStaticFast, Matched: true}, nil
		}
	}

	lay := r.layout.Load()
	ms, _ := r.matchPool.Get().(*matchState)
	handlerIdx, params, matched, err := lay.walk(ms, mcode, pp.segments, pp.decodeHints, &r.cfg)
	r.matchPool.Put(ms)
	if err != nil {
		return zero, MatchMeta{}, err
	}

	if r.cache != nil {
		if matched {
			r.cache.set(cacheKey, &cacheValue{handlerIdx: handlerIdx, params: cloneParams(params)})
		} else {
			r.cache.set(cacheKey, &cacheValue{negative: true})
		}
	}

	if !matched {
		return zero, MatchMeta{Source: SourceDynamic, Matched: false}, nil
	}
	return r.invoke(handlerIdx, params, SourceDynamic), MatchMeta{Source: SourceDynamic, Matched: true}, nil
}

func (r *Router[T]) invoke(handlerIdx int, params Params, source string) T {
	h := r.handlers[handlerIdx]
	return h(params, MatchMeta{Source: source, Matched: true})
}

func cloneParams(p Params) Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}
