// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrInvalidFormat  = errors.New("sample rate and channel count must be positive")
	ErrInvalidSpeed   = errors.New("speed factor must be a positive finite number")
)
