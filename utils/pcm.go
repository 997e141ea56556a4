// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// ClampUnit limits x to [-1,1].
func ClampUnit(x float32) float32 {
	return min(max(x, -1), 1)
}

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM, rounding to
// the nearest step and clipping out-of-range input. It inverts
// Int16ToFloat32 exactly. NaN becomes silence.
func Float32ToInt16(x float32) int16 {
	v := math.Round(float64(x) * 32768)
	if math.IsNaN(v) {
		return 0
	}

	return int16(min(max(v, math.MinInt16), math.MaxInt16))
}

// Int16ToFloat32 converts 16-bit PCM to a sample in [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// PCMScale is the divisor that maps signed integer PCM of the given bit
// depth into [-1,1). Unknown depths fall back to 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

// IntToFloat32 converts signed integer PCM of bitDepth bits to [-1,1).
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(v) / PCMScale(bitDepth)
}
