package rules

import (
	"errors"
	"testing"
)

func TestCombine(t *testing.T) {
	tests := []struct {
		name       string
		mask       string
		values     []bool
		wantPass   bool
		wantLowest int
	}{
		{"single pass", "#", []bool{true}, true, -1},
		{"single fail", "#", []bool{false}, false, 0},
		{"and", "#A#", []bool{true, false}, false, 1},
		{"or", "#O#", []bool{false, true}, true, 0},
		{"and binds tighter", "#O#A#", []bool{true, false, false}, true, 1},
		{"parentheses", "(#O#)A#", []bool{true, false, false}, false, 1},
		{"spaces ignored", " # A # ", []bool{true, true}, true, -1},
		{"nested", "((#))", []bool{true}, true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []int
			pass, lowest, err := Combine(tt.mask, func(i int) bool {
				calls = append(calls, i)
				return tt.values[i]
			})
			if err != nil {
				t.Fatalf("Combine(%q) error: %v", tt.mask, err)
			}
			if pass != tt.wantPass || lowest != tt.wantLowest {
				t.Errorf("Combine(%q) = %v, %d, want %v, %d", tt.mask, pass, lowest, tt.wantPass, tt.wantLowest)
			}
			if len(calls) != len(tt.values) {
				t.Errorf("evaluated %d restrictions, want %d", len(calls), len(tt.values))
			}
		})
	}
}

func TestCombine_Malformed(t *testing.T) {
	for _, mask := range []string{"", "#A", "(#", "#)", "#X#", "##"} {
		t.Run(mask, func(t *testing.T) {
			_, _, err := Combine(mask, func(int) bool { return true })
			if !errors.Is(err, ErrMaskSyntax) {
				t.Errorf("Combine(%q) error = %v, want ErrMaskSyntax", mask, err)
			}
		})
	}
}
