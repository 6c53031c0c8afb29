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

// DiagnosticKind labels a non-fatal event the router reports through an
// injected sink rather than a global logger.
type DiagnosticKind string

const (
	DiagUnsafeRegexWarning DiagnosticKind = "unsafe_regex_warning"
	DiagUnanchoredRegex    DiagnosticKind = "unanchored_regex"
	DiagRegexTimeout       DiagnosticKind = "regex_timeout"
	DiagRouteRegistered    DiagnosticKind = "route_registered"
)

// DiagnosticEvent is one occurrence of a DiagnosticKind, with free-form
// fields for context (pattern source, elapsed time, and so on).
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any
}

// DiagnosticHandler receives non-fatal events from a Router. Implementations
// must not block the caller for long; the router invokes it synchronously
// on the registration or match path that produced the event.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc adapts a plain function to DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) { f(e) }
