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

// Package triex implements a radix-trie HTTP router: a two-phase compiler
// (trie builder, then flattener) that turns a set of (method, pattern,
// handler) registrations into an immutable binary layout, and a
// stack-based matcher that walks it without recursion, using a pooled,
// preallocated frame stack and param arrays.
//
// # Pipeline
//
//  1. Add/AddAll parse and validate a pattern into a mutable trie.
//  2. Build flattens the trie into a binary layout: typed uint32 index
//     arrays plus an interned string table, swapped in atomically.
//  3. Match walks the layout with a fixed-size, non-recursive stack,
//     consulting an LRU cache and a Bloom-filtered static fast path
//     ahead of the general trie walk.
package triex
