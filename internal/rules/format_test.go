// internal/rules/format_test.go
package rules

import (
	"math"
	"testing"

	"github.com/wpblocks/ruleparser/internal/types"
)

func TestFormatRule(t *testing.T) {
	tests := []struct {
		name string
		rule types.Rule
		want string
	}{
		{
			name: "scalars",
			rule: types.Rule{Source: 75.0, Operator: "less than", Target: 100},
			want: "[ 75 less than 100 ]",
		},
		{
			name: "arrays",
			rule: types.Rule{Source: []any{1.0, 2.5, 3.0}, Operator: "in", Target: []string{"a", "b"}},
			want: "[ [ 1, 2.5, 3 ] in [ a, b ] ]",
		},
		{
			name: "undefined and bool",
			rule: types.Rule{Source: nil, Operator: "is", Target: true},
			want: "[ undefined is true ]",
		},
		{
			name: "empty array",
			rule: types.Rule{Source: []any{}, Operator: "is", Target: "x"},
			want: "[ [  ] is x ]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRule(tt.rule); got != tt.want {
				t.Errorf("FormatRule() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValue_Numbers(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{v: 0.1, want: "0.1"},
		{v: -0.0, want: "0"},
		{v: int64(-12), want: "-12"},
		{v: math.NaN(), want: "NaN"},
		{v: math.Inf(-1), want: "-Infinity"},
		{v: 1e21, want: "1e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatValue(tt.v); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}
