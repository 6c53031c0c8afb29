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
	"strings"

	"github.com/rivaas-dev/triex/httpconst"
)

// errParamBoundsExceeded signals a matcher implementation fault (stack or
// param-count bound exceeded), distinct from the named MatchError
// taxonomy: it reflects a pattern that should never have been accepted by
// the builder, not a malformed request.
var errParamBoundsExceeded = errors.New("triex: param bounds exceeded")
var errStackDepthExceeded = errors.New("triex: matcher stack depth exceeded")

type matchStage uint8

const (
	stageEnter matchStage = iota
	stageStatic
	stageParam
	stageWildcard
)

// frame is one explicit-stack entry: which node, how many segments have
// been consumed, which stage of that node's exploration we're in, the
// paramCount to roll back to on failure, and (for stageParam) how far
// through the sorted param-child list we've iterated.
type frame struct {
	nodeIdx       uint32
	segIdx        int
	stage         matchStage
	paramSnapshot int
	iter          int
}

// matchState is the matcher's preallocated working storage, reused across
// Match calls via a pool. Nothing here escapes to the heap on a cache hit
// for the stack/param arrays; the decode cache grows only when a longer
// path than previously seen is matched.
type matchState struct {
	stack [MaxStackDepth]frame
	sp    int

	paramNames   [MaxParams]string
	paramValues  [MaxParams]string
	paramPresent [MaxParams]bool
	paramCount   int

	decodeCache    []string
	decodeCacheSet []bool
	decodeErr      []error
}

func (ms *matchState) reset(segmentCount int) {
	ms.sp = 0
	ms.paramCount = 0
	if cap(ms.decodeCache) < segmentCount {
		ms.decodeCache = make([]string, segmentCount)
		ms.decodeCacheSet = make([]bool, segmentCount)
		ms.decodeErr = make([]error, segmentCount)
		return
	}
	ms.decodeCache = ms.decodeCache[:segmentCount]
	ms.decodeCacheSet = ms.decodeCacheSet[:segmentCount]
	ms.decodeErr = ms.decodeErr[:segmentCount]
	for i := 0; i < segmentCount; i++ {
		ms.decodeCacheSet[i] = false
		ms.decodeErr[i] = nil
	}
}

func (ms *matchState) push(f frame) bool {
	if ms.sp >= MaxStackDepth {
		return false
	}
	ms.stack[ms.sp] = f
	ms.sp++
	return true
}

// decodedSegment percent-decodes segments[idx] at most once per Match
// call, caching either the result or the resulting error so multiple
// param/wildcard children probing the same segment share the work.
func (ms *matchState) decodedSegment(segments []string, decodeHints []bool, idx int, cfg *Config) (string, error) {
	if ms.decodeCacheSet[idx] {
		return ms.decodeCache[idx], ms.decodeErr[idx]
	}
	raw := segments[idx]
	if !decodeHints[idx] {
		ms.decodeCache[idx] = raw
		ms.decodeCacheSet[idx] = true
		return raw, nil
	}

	decoded, ok := percentDecode(raw, cfg.EncodedSlashBehavior)
	ms.decodeCacheSet[idx] = true
	if ok {
		ms.decodeCache[idx] = decoded
		return decoded, nil
	}

	var err error
	if cfg.EncodedSlashBehavior == EncodedSlashReject && strings.Contains(strings.ToLower(raw), "%2f") {
		err = &MatchError{Kind: MatchErrEncodedSlashRejected, Segment: raw}
	} else {
		err = &MatchError{Kind: MatchErrBadEncoding, Segment: raw}
	}
	ms.decodeErr[idx] = err
	return "", err
}

func (ms *matchState) snapshotParams(missing []string, cfg *Config) Params {
	params := make(Params, 0, ms.paramCount+len(missing))
	for i := 0; i < ms.paramCount; i++ {
		params = append(params, Param{Name: ms.paramNames[i], Value: ms.paramValues[i], Present: ms.paramPresent[i]})
	}
	for _, name := range missing {
		switch cfg.OptionalParamBehavior {
		case OptionalOmit:
			// caller never sees this name at all.
		case OptionalSetEmptyString:
			params = append(params, Param{Name: name, Value: "", Present: true})
		default: // OptionalSetUndefined
			params = append(params, Param{Name: name, Value: "", Present: false})
		}
	}
	return params
}

// findStaticChild probes a node's static children for label: binary
// search when the node has staticChildInlineThreshold or more children,
// linear scan otherwise.
func (l *layout) findStaticChild(nodeIdx uint32, label string) (uint32, bool) {
	start := l.nodeStaticPtr[nodeIdx]
	count := l.nodeStaticCount[nodeIdx]

	if count < staticChildInlineThreshold {
		for i := uint32(0); i < count; i++ {
			ref := l.staticChildren[start+i]
			if l.staticLabel(ref) == label {
				return ref.childIdx, true
			}
		}
		return 0, false
	}

	lo, hi := uint32(0), count
	for lo < hi {
		mid := (lo + hi) / 2
		ref := l.staticChildren[start+mid]
		if l.staticLabel(ref) < label {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < count {
		ref := l.staticChildren[start+lo]
		if l.staticLabel(ref) == label {
			return ref.childIdx, true
		}
	}
	return 0, false
}

func (l *layout) terminalMethod(nodeIdx uint32, method httpconst.Method) (handlerIdx int, missing []string, ok bool) {
	mcode := uint8(method)
	if mcode < 31 && l.nodeMethodMask[nodeIdx]&(1<<mcode) == 0 {
		return 0, nil, false
	}
	start := l.nodeMethodsPtr[nodeIdx]
	count := l.nodeMethodsCount[nodeIdx]
	for i := uint32(0); i < count; i++ {
		e := l.methods[start+i]
		if e.method == mcode {
			if e.missingOptionalsIdx != noIndex {
				missing = l.missingOptionals[e.missingOptionalsIdx]
			}
			return int(e.handlerIdx), missing, true
		}
	}
	return 0, nil, false
}

// tryParam tests segments[segIdx] against childIdx's constraint (if any)
// and, on success, writes the binding at ms.paramCount. timedOut signals a
// regex execution-time overrun with no resolving callback.
func (l *layout) tryParam(ms *matchState, childIdx uint32, segments []string, decodeHints []bool, segIdx int, cfg *Config) (matched, timedOut bool, elapsedMs float64, err error) {
	pe := l.params[l.nodeMatchFunc[childIdx]]
	value := segments[segIdx]

	if cfg.DecodeParams && decodeHints[segIdx] {
		decoded, derr := ms.decodedSegment(segments, decodeHints, segIdx, cfg)
		if derr != nil {
			return false, false, 0, derr
		}
		value = decoded
	}

	if pe.patternID != noIndex {
		tester := l.testers[pe.patternID]
		ok, to, elapsed := tester.Test(value)
		if to {
			return false, true, elapsed, nil
		}
		if !ok {
			return false, false, elapsed, nil
		}
	}

	if !pe.suppressBinding {
		if ms.paramCount >= MaxParams {
			return false, false, 0, errParamBoundsExceeded
		}
		ms.paramNames[ms.paramCount] = l.str(pe.nameID)
		ms.paramValues[ms.paramCount] = value
		ms.paramPresent[ms.paramCount] = true
		ms.paramCount++
	}
	return true, false, 0, nil
}

// tryWildcard binds the remaining segments from segIdx to the end, joined
// by '/', to the wildcard child's capture name. An empty suffix is only
// accepted for originMulti ("**"); "*"/"*name" require at least one
// segment.
func (l *layout) tryWildcard(ms *matchState, wildcardIdx uint32, segments []string, decodeHints []bool, segIdx int, cfg *Config) (string, bool, error) {
	origin := wildcardOrigin((l.nodeMeta[wildcardIdx] >> 8) & 0xFF)

	var parts []string
	if segIdx < len(segments) {
		parts = make([]string, 0, len(segments)-segIdx)
		for i := segIdx; i < len(segments); i++ {
			v := segments[i]
			if cfg.DecodeParams && decodeHints[i] {
				d, err := ms.decodedSegment(segments, decodeHints, i, cfg)
				if err != nil {
					return "", false, err
				}
				v = d
			}
			parts = append(parts, v)
		}
	}
	suffix := strings.Join(parts, "/")

	if suffix == "" && origin != originMulti {
		return "", false, nil
	}
	return suffix, true, nil
}

// walk performs the non-recursive depth-first match described in §4.6:
// an explicit stack of frames, no recursion, bounded work. It returns on
// the first terminal match, on stack exhaustion (no match), or on a
// MatchError that aborts the search outright (bad encoding, rejected
// encoded slash, regex timeout, or an internal bounds fault).
func (l *layout) walk(ms *matchState, method httpconst.Method, segments []string, decodeHints []bool, cfg *Config) (int, Params, bool, error) {
	ms.reset(len(segments))
	if !ms.push(frame{nodeIdx: l.rootIndex, segIdx: 0, stage: stageEnter}) {
		return 0, nil, false, errStackDepthExceeded
	}

	for ms.sp > 0 {
		f := &ms.stack[ms.sp-1]

		switch f.stage {
		case stageEnter:
			if f.segIdx == len(segments) {
				if handlerIdx, missing, ok := l.terminalMethod(f.nodeIdx, method); ok {
					return handlerIdx, ms.snapshotParams(missing, cfg), true, nil
				}
				f.stage = stageWildcard
				continue
			}
			f.stage = stageStatic

		case stageStatic:
			f.stage = stageParam
			if child, ok := l.findStaticChild(f.nodeIdx, segments[f.segIdx]); ok {
				if !ms.push(frame{nodeIdx: child, segIdx: f.segIdx + 1, stage: stageEnter, paramSnapshot: ms.paramCount}) {
					return 0, nil, false, errStackDepthExceeded
				}
			}

		case stageParam:
			nodeIdx, segIdx := f.nodeIdx, f.segIdx
			start := l.nodeParamPtr[nodeIdx]
			count := int(l.nodeParamCount[nodeIdx])

			advanced := false
			for f.iter < count {
				childIdx := l.paramChildren[int(start)+f.iter]
				f.iter++

				snapshot := ms.paramCount
				matched, timedOut, elapsedMs, err := l.tryParam(ms, childIdx, segments, decodeHints, segIdx, cfg)
				if err != nil {
					return 0, nil, false, err
				}
				if timedOut {
					pattern := l.patterns[l.params[l.nodeMatchFunc[childIdx]].patternID].source
					cfg.emit(DiagRegexTimeout, "regex execution exceeded budget", map[string]any{
						"pattern":     pattern,
						"duration_ms": elapsedMs,
					})
					return 0, nil, false, &MatchError{
						Kind:       MatchErrRegexTimeout,
						Pattern:    pattern,
						DurationMs: elapsedMs,
					}
				}
				if matched {
					if !ms.push(frame{nodeIdx: childIdx, segIdx: segIdx + 1, stage: stageEnter, paramSnapshot: snapshot}) {
						return 0, nil, false, errStackDepthExceeded
					}
					advanced = true
					break
				}
			}
			if advanced {
				continue
			}
			f.stage = stageWildcard

		case stageWildcard:
			if wIdx := l.nodeWildcardPtr[f.nodeIdx]; wIdx != noIndex {
				suffix, ok, err := l.tryWildcard(ms, wIdx, segments, decodeHints, f.segIdx, cfg)
				if err != nil {
					return 0, nil, false, err
				}
				if ok {
					if handlerIdx, missing, mok := l.terminalMethod(wIdx, method); mok {
						if !l.nodeWildcardSuppressed[wIdx] {
							ms.paramNames[ms.paramCount] = l.str(l.nodeMatchFunc[wIdx])
							ms.paramValues[ms.paramCount] = suffix
							ms.paramPresent[ms.paramCount] = true
							ms.paramCount++
						}
						return handlerIdx, ms.snapshotParams(missing, cfg), true, nil
					}
				}
			}
			ms.paramCount = f.paramSnapshot
			ms.sp--
		}
	}

	return 0, nil, false, nil
}
