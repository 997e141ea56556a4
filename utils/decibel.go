// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DBToGain converts a level change in decibels to a linear amplitude factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

// GainToDB converts a linear amplitude factor to decibels.
// A zero or negative gain yields -Inf.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(gain)
}
