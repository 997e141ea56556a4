// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{"start returns y1", 0, 1, 2, 3, 0, 1, 1e-6},
		{"end returns y2", 0, 1, 2, 3, 1, 2, 1e-5},
		{"linear ramp midpoint", 0, 1, 2, 3, 0.5, 1.5, 1e-5},
		{"linear ramp quarter", 1, 2, 3, 4, 0.25, 2.25, 1e-5},
		{"zero crossing", -1, -0.5, 0.5, 1, 0.5, 0, 1e-5},
		{"flat signal", 0.3, 0.3, 0.3, 0.3, 0.7, 0.3, 1e-6},
		{"near a peak", 0.5, 0.9, 0.7, 0.3, 0.3, 0.85, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if diff := float32(math.Abs(float64(got - tt.want))); diff > tt.tolerance {
				t.Errorf("CubicInterpolate() = %v, want %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestCubicInterpolate_Endpoints(t *testing.T) {
	t.Parallel()

	for i := range 100 {
		y0, y1, y2, y3 := float32(i), float32(i+1), float32(i+2), float32(i+3)

		if got := CubicInterpolate(y0, y1, y2, y3, 0); got != y1 {
			t.Errorf("x=0: got %v, want %v", got, y1)
		}
		if got := CubicInterpolate(y0, y1, y2, y3, 1); math.Abs(float64(got-y2)) > 1e-3 {
			t.Errorf("x=1: got %v, want %v", got, y2)
		}
	}
}

func TestLerp(t *testing.T) {
	t.Parallel()

	if got := Lerp(-1, 1, 0.25); got != -0.5 {
		t.Errorf("Lerp(-1, 1, 0.25) = %v, want -0.5", got)
	}
}

func TestCubicInterpolate_ZeroAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = CubicInterpolate(0.1, 0.5, 0.3, -0.2, 0.4)
	})

	if allocs != 0 {
		t.Errorf("CubicInterpolate allocated %v times, want 0", allocs)
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	out := make([]float32, 8000)

	b.ReportAllocs()

	for b.Loop() {
		for j := range out {
			out[j] = CubicInterpolate(0.1, 0.5, 0.3, -0.2, float32(j%100)/100)
		}
	}
}
