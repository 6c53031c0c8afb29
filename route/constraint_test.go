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

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamConstraint_ToRegexConstraint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pc      ParamConstraint
		matches []string
		rejects []string
	}{
		{
			name:    "int",
			pc:      ParamConstraint{Kind: ConstraintInt},
			matches: []string{"0", "42", "999999"},
			rejects: []string{"abc", "4.2", ""},
		},
		{
			name:    "float",
			pc:      ParamConstraint{Kind: ConstraintFloat},
			matches: []string{"4.2", "-1.5", "3", ".5"},
			rejects: []string{"abc", ""},
		},
		{
			name:    "uuid",
			pc:      ParamConstraint{Kind: ConstraintUUID},
			matches: []string{"123e4567-e89b-12d3-a456-426614174000"},
			rejects: []string{"not-a-uuid", "123"},
		},
		{
			name:    "enum",
			pc:      ParamConstraint{Kind: ConstraintEnum, Enum: []string{"active", "pending"}},
			matches: []string{"active", "pending"},
			rejects: []string{"deleted", ""},
		},
		{
			name:    "regex",
			pc:      ParamConstraint{Kind: ConstraintRegex, Pattern: `[a-z]+`},
			matches: []string{"abc"},
			rejects: []string{"ABC", "123"},
		},
		{
			name:    "date",
			pc:      ParamConstraint{Kind: ConstraintDate},
			matches: []string{"2024-01-15"},
			rejects: []string{"2024/01/15"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			constraint := tt.pc.ToRegexConstraint("p")
			require.NotNil(t, constraint)
			assert.Equal(t, "p", constraint.Param)

			for _, m := range tt.matches {
				assert.True(t, constraint.Pattern.MatchString(m), "expected %q to match", m)
			}
			for _, r := range tt.rejects {
				assert.False(t, constraint.Pattern.MatchString(r), "expected %q to be rejected", r)
			}
		})
	}
}

func TestParamConstraint_UnknownKindReturnsNil(t *testing.T) {
	t.Parallel()

	pc := ParamConstraint{Kind: ConstraintNone}
	assert.Nil(t, pc.ToRegexConstraint("p"))
}

func TestParamConstraint_Compile(t *testing.T) {
	t.Parallel()

	pc := ParamConstraint{Kind: ConstraintRegex, Pattern: `\d+`}
	pc.Compile()
	require.NotNil(t, pc.re)
	assert.True(t, pc.re.MatchString("123"))
}
