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
	"sort"

	"github.com/rivaas-dev/triex/httpconst"
)

const noIndex = 0xFFFFFFFF

// methodEntry pairs a method code with its handler index, stored sorted
// by method code within each node's slice of methodsBuffer.
type methodEntry struct {
	method              uint8
	handlerIdx          uint32
	missingOptionalsIdx uint32 // noIndex if the registration had no optional params to fill
}

// paramEntry is one Param node's metadata: its interned capture name and,
// if constrained, the pattern id into the deduplicated pattern list.
type paramEntry struct {
	nameID          uint32
	patternID       uint32 // noIndex if unconstrained
	suppressBinding bool   // reserved name kept under non-strict policy
}

// staticChildRef is one entry of a node's static-children slice: the
// interned segment id plus the child's node index. Slices are sorted by
// the underlying segment bytes so the matcher can binary search them.
type staticChildRef struct {
	segID    uint32
	childIdx uint32
}

type patternEntry struct {
	source string
}

// layout is the immutable binary representation produced by flatten. Every
// field is a parallel array or a flat buffer sliced by per-node
// ptr/count pairs; nothing here is mutated after flatten returns.
type layout struct {
	nodeMeta          []uint32 // kind(8b) | origin(8b) | paramChildCount(8b) | methodCount(8b)
	nodeMethodMask    []uint32
	nodeMatchFunc     []uint32 // Static/Wildcard: interned string id. Param: index into params.
	nodeStaticPtr     []uint32
	nodeStaticCount   []uint32
	nodeParamPtr      []uint32
	nodeParamCount    []uint32
	nodeWildcardPtr   []uint32 // noIndex if no wildcard child
	nodeMethodsPtr    []uint32
	nodeMethodsCount  []uint32
	nodeWildcardSuppressed []bool // true when a wildcard node's reserved name was kept under non-strict policy

	staticChildren []staticChildRef
	paramChildren  []uint32 // child node indices, specificity order preserved
	params         []paramEntry
	methods        []methodEntry

	stringTable   []byte
	stringOffsets []uint32

	patterns []patternEntry
	testers  []*patternTester

	missingOptionals [][]string

	rootIndex uint32
}

func (l *layout) str(id uint32) string {
	if id == noIndex {
		return ""
	}
	return string(l.stringTable[l.stringOffsets[id]:l.stringOffsets[id+1]])
}

func (l *layout) staticLabel(ref staticChildRef) string { return l.str(ref.segID) }

// stringInterner assigns each distinct string a stable index as it's
// first seen, then flattens every interned string into one contiguous
// byte buffer with an offsets index.
type stringInterner struct {
	ids   map[string]uint32
	order []string
}

func newStringInterner() *stringInterner {
	return &stringInterner{ids: make(map[string]uint32)}
}

func (si *stringInterner) intern(s string) uint32 {
	if id, ok := si.ids[s]; ok {
		return id
	}
	id := uint32(len(si.order))
	si.ids[s] = id
	si.order = append(si.order, s)
	return id
}

func (si *stringInterner) finish() ([]byte, []uint32) {
	offsets := make([]uint32, len(si.order)+1)
	var buf []byte
	for i, s := range si.order {
		offsets[i] = uint32(len(buf))
		buf = append(buf, s...)
	}
	offsets[len(si.order)] = uint32(len(buf))
	return buf, offsets
}

// flatten serializes the mutable builder trie rooted at root into an
// immutable layout via a BFS over node indices (root = 0). Children are
// visited in declared order: sorted static, specificity-sorted param,
// then wildcard, matching §4.5's deterministic ordering.
func flatten(root *trieNode, cfg *Config) (*layout, error) {
	l := &layout{rootIndex: 0}
	interner := newStringInterner()
	patternIDs := make(map[string]uint32)

	order := []*trieNode{root}
	index := map[*trieNode]int{root: 0}
	for i := 0; i < len(order); i++ {
		n := order[i]
		if n.staticChildren != nil {
			entries := append([]staticChildEntry(nil), n.staticChildren.entries...)
			sort.Slice(entries, func(a, b int) bool { return entries[a].label < entries[b].label })
			for _, e := range entries {
				if _, ok := index[e.child]; !ok {
					index[e.child] = len(order)
					order = append(order, e.child)
				}
			}
		}
		for _, c := range n.paramChildren {
			if _, ok := index[c]; !ok {
				index[c] = len(order)
				order = append(order, c)
			}
		}
		if n.wildcardChild != nil {
			if _, ok := index[n.wildcardChild]; !ok {
				index[n.wildcardChild] = len(order)
				order = append(order, n.wildcardChild)
			}
		}
	}

	count := len(order)
	l.nodeMeta = make([]uint32, count)
	l.nodeMethodMask = make([]uint32, count)
	l.nodeMatchFunc = make([]uint32, count)
	l.nodeStaticPtr = make([]uint32, count)
	l.nodeStaticCount = make([]uint32, count)
	l.nodeParamPtr = make([]uint32, count)
	l.nodeParamCount = make([]uint32, count)
	l.nodeWildcardPtr = make([]uint32, count)
	l.nodeMethodsPtr = make([]uint32, count)
	l.nodeMethodsCount = make([]uint32, count)
	l.nodeWildcardSuppressed = make([]bool, count)

	for i, n := range order {
		var staticEntries []staticChildEntry
		if n.staticChildren != nil {
			staticEntries = append(staticEntries, n.staticChildren.entries...)
			sort.Slice(staticEntries, func(a, b int) bool { return staticEntries[a].label < staticEntries[b].label })
		}
		l.nodeStaticPtr[i] = uint32(len(l.staticChildren))
		l.nodeStaticCount[i] = uint32(len(staticEntries))
		for _, e := range staticEntries {
			l.staticChildren = append(l.staticChildren, staticChildRef{
				segID:    interner.intern(e.label),
				childIdx: uint32(index[e.child]),
			})
		}

		l.nodeParamPtr[i] = uint32(len(l.paramChildren))
		l.nodeParamCount[i] = uint32(len(n.paramChildren))
		for _, c := range n.paramChildren {
			l.paramChildren = append(l.paramChildren, uint32(index[c]))
		}

		if n.wildcardChild != nil {
			l.nodeWildcardPtr[i] = uint32(index[n.wildcardChild])
		} else {
			l.nodeWildcardPtr[i] = noIndex
		}

		methodCodes := make([]httpconst.Method, 0, len(n.methods))
		for m := range n.methods {
			methodCodes = append(methodCodes, m)
		}
		sort.Slice(methodCodes, func(a, b int) bool { return methodCodes[a] < methodCodes[b] })

		l.nodeMethodsPtr[i] = uint32(len(l.methods))
		l.nodeMethodsCount[i] = uint32(len(methodCodes))
		var mask uint32
		for _, m := range methodCodes {
			t := n.methods[m]
			missingIdx := uint32(noIndex)
			if len(t.missingOptionals) > 0 {
				missingIdx = uint32(len(l.missingOptionals))
				l.missingOptionals = append(l.missingOptionals, t.missingOptionals)
			}
			l.methods = append(l.methods, methodEntry{
				method:              uint8(m),
				handlerIdx:          uint32(t.handlerIdx),
				missingOptionalsIdx: missingIdx,
			})
			if m < 31 {
				mask |= 1 << uint(m)
			}
		}
		l.nodeMethodMask[i] = mask

		var kindBits uint32
		switch n.kind {
		case kindStatic:
			kindBits = 0
		case kindParam:
			kindBits = 1
		case kindWildcard:
			kindBits = 2
		}
		l.nodeMeta[i] = kindBits |
			uint32(n.origin)<<8 |
			uint32(len(n.paramChildren))<<16 |
			uint32(len(methodCodes))<<24

		switch n.kind {
		case kindStatic:
			l.nodeMatchFunc[i] = interner.intern(n.literal)
		case kindWildcard:
			l.nodeMatchFunc[i] = interner.intern(n.paramName)
			l.nodeWildcardSuppressed[i] = n.unsafeName
		case kindParam:
			patID := uint32(noIndex)
			if n.pattern != "" {
				id, ok := patternIDs[n.pattern]
				if !ok {
					id = uint32(len(l.patterns))
					patternIDs[n.pattern] = id
					l.patterns = append(l.patterns, patternEntry{source: n.pattern})
					tester, err := compilePatternTester(n.pattern, cfg.RegexSafety)
					if err != nil {
						return nil, &RegistrationError{Kind: RegErrInvalidPattern, Reason: err.Error()}
					}
					l.testers = append(l.testers, tester)
				}
				patID = id
			}
			paramIdx := uint32(len(l.params))
			l.params = append(l.params, paramEntry{
				nameID:          interner.intern(n.paramName),
				patternID:       patID,
				suppressBinding: n.unsafeName,
			})
			l.nodeMatchFunc[i] = paramIdx
		}
	}

	l.stringTable, l.stringOffsets = interner.finish()
	return l, nil
}
